package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/models"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

// ColumnLayoutStore is the durable key-value slot holding serialised layouts.
type ColumnLayoutStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, raw string) error
}

// ColumnService loads, saves and rehydrates column layouts.
type ColumnService struct {
	store   ColumnLayoutStore
	catalog *i18n.Catalog
	metrics *MetricsService
	logger  *zap.Logger
}

// NewColumnService constructs the service.
func NewColumnService(store ColumnLayoutStore, catalog *i18n.Catalog, metrics *MetricsService, logger *zap.Logger) *ColumnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ColumnService{store: store, catalog: catalog, metrics: metrics, logger: logger}
}

// LayoutKey names the storage slot of one table for one user.
func LayoutKey(table, userID string) string {
	return fmt.Sprintf("columns:%s:%s", table, userID)
}

// Defaults returns the built-in layout labelled for lang.
func (s *ColumnService) Defaults(lang string) []models.Column {
	return DefaultColumns(s.catalog.T(lang))
}

// Load returns the saved layout rehydrated against the current defaults, or
// the defaults when nothing usable is stored. It never fails.
func (s *ColumnService) Load(ctx context.Context, slot, lang string) []models.Column {
	defaults := s.Defaults(lang)
	if s.store == nil {
		return defaults
	}

	raw, err := s.store.Get(ctx, slot)
	if err != nil {
		if !errors.Is(err, appErrors.ErrLayoutNotFound) {
			s.logger.Warn("column layout unavailable, using defaults", zap.String("slot", slot), zap.Error(err))
			s.metrics.RecordLayoutFallback("store_error")
		}
		return defaults
	}

	var saved []models.Column
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		s.logger.Warn("malformed column layout, using defaults", zap.String("slot", slot), zap.Error(err))
		s.metrics.RecordLayoutFallback("malformed")
		return defaults
	}
	if err := ValidateLayout(saved); err != nil {
		s.logger.Warn("invalid column layout, using defaults", zap.String("slot", slot), zap.Error(err))
		s.metrics.RecordLayoutFallback("invalid")
		return defaults
	}

	return Rehydrate(saved, defaults)
}

// Save persists columns verbatim; render functions drop out of the encoding.
func (s *ColumnService) Save(ctx context.Context, slot string, columns []models.Column) error {
	if err := ValidateLayout(columns); err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	raw, err := json.Marshal(columns)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode column layout")
	}
	if err := s.store.Set(ctx, slot, string(raw)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save column layout")
	}
	return nil
}

// Relabel refreshes labels and renderers for lang without touching visibility,
// width or order.
func (s *ColumnService) Relabel(columns []models.Column, lang string) []models.Column {
	return Rehydrate(columns, s.Defaults(lang))
}

// Rehydrate reattaches renderers and current labels onto saved columns.
// Saved columns keep their visibility, width and order; saved keys unknown to
// the defaults pass through unchanged; default keys the saved layout lacks are
// appended with their default settings.
func Rehydrate(saved, defaults []models.Column) []models.Column {
	byKey := make(map[string]models.Column, len(defaults))
	for _, col := range defaults {
		byKey[col.Key] = col
	}

	out := make([]models.Column, 0, len(saved)+len(defaults))
	seen := make(map[string]struct{}, len(saved))
	for _, col := range saved {
		if def, ok := byKey[col.Key]; ok {
			col.Render = def.Render
			col.Label = def.Label
		}
		seen[col.Key] = struct{}{}
		out = append(out, col)
	}
	for _, def := range defaults {
		if _, ok := seen[def.Key]; ok {
			continue
		}
		out = append(out, def)
	}
	return out
}

// ValidateLayout enforces non-empty, unique column keys.
func ValidateLayout(columns []models.Column) error {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		key := strings.TrimSpace(col.Key)
		if key == "" {
			return appErrors.Clone(appErrors.ErrValidation, "column key is required")
		}
		if _, dup := seen[key]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate column key %q", key))
		}
		seen[key] = struct{}{}
	}
	return nil
}
