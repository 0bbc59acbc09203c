package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/models"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

// RegistrationAPI is the full remote collaborator a session needs.
type RegistrationAPI interface {
	RegistrationLister
	RegistrationDetailClient
}

// SessionConfig tunes console sessions.
type SessionConfig struct {
	TableKey        string
	DefaultLanguage string
	BulkConcurrency int
	IdleTTL         time.Duration
}

// RowView pairs a row with its rendered cells.
type RowView struct {
	Row     models.RegistrationRequest `json:"row"`
	Display map[string]string          `json:"display"`
	Status  models.StatusInfo          `json:"status"`
}

// ListSnapshot is the list view returned to the browser.
type ListSnapshot struct {
	Language   string              `json:"language"`
	Query      string              `json:"query,omitempty"`
	Rows       []RowView           `json:"rows"`
	Columns    []models.Column     `json:"columns"`
	Categories map[string]string   `json:"categories"`
	Statuses   []models.StatusInfo `json:"statuses"`
	State      ListState           `json:"state"`
}

// DetailSnapshot is the detail view returned to the browser.
type DetailSnapshot struct {
	DetailState
	Status    models.StatusInfo  `json:"status"`
	StepIndex int                `json:"stepIndex"`
	Steps     []string           `json:"steps"`
	Contact   *models.ParentInfo `json:"contact,omitempty"`
}

// ConsoleSession is the review state of one administrator.
type ConsoleSession struct {
	UserID string
	List   *RegistrationListService
	Detail *RegistrationDetailService

	owner *ConsoleSessionService
	slot  string

	mu       sync.Mutex
	lang     string
	columns  []models.Column
	lastSeen time.Time
}

// ConsoleSessionService keeps one session per administrator in memory.
type ConsoleSessionService struct {
	api     RegistrationAPI
	columns *ColumnService
	catalog *i18n.Catalog
	metrics *MetricsService
	logger  *zap.Logger
	cfg     SessionConfig
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*ConsoleSession
}

// NewConsoleSessionService constructs the session registry.
func NewConsoleSessionService(api RegistrationAPI, columns *ColumnService, catalog *i18n.Catalog, metrics *MetricsService, logger *zap.Logger, cfg SessionConfig) *ConsoleSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TableKey == "" {
		cfg.TableKey = "registration-requests"
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	return &ConsoleSessionService{
		api:      api,
		columns:  columns,
		catalog:  catalog,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*ConsoleSession),
	}
}

// Session returns the session of userID, creating it on first use. A new
// session loads its column layout and fetches the list once.
func (s *ConsoleSessionService) Session(ctx context.Context, userID, lang string) (*ConsoleSession, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok {
		s.mu.Unlock()
		existing.touch(s.now())
		return existing, nil
	}
	s.mu.Unlock()

	session := s.newSession(ctx, userID, lang)

	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok {
		s.mu.Unlock()
		existing.touch(s.now())
		return existing, nil
	}
	s.sessions[userID] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(count)
	s.logger.Info("console session opened", zap.String("user_id", userID), zap.String("language", session.Language()))
	return session, nil
}

func (s *ConsoleSessionService) newSession(ctx context.Context, userID, lang string) *ConsoleSession {
	resolved := s.resolveLanguage(lang)
	t := s.catalog.T(resolved)

	list := NewRegistrationListService(s.api, t, s.logger.With(zap.String("user_id", userID)))
	detail := NewRegistrationDetailService(s.api, list, t, s.metrics, s.logger.With(zap.String("user_id", userID)), DetailOptions{
		BulkConcurrency: s.cfg.BulkConcurrency,
	})

	session := &ConsoleSession{
		UserID:   userID,
		List:     list,
		Detail:   detail,
		owner:    s,
		slot:     LayoutKey(s.cfg.TableKey, userID),
		lang:     resolved,
		lastSeen: s.now(),
	}
	session.columns = s.columns.Load(ctx, session.slot, resolved)

	_ = list.FetchAll(ctx)
	return session
}

func (s *ConsoleSessionService) resolveLanguage(lang string) string {
	if lang != "" && s.catalog.Supports(lang) {
		return s.catalog.Resolve(lang)
	}
	return s.catalog.Resolve(s.cfg.DefaultLanguage)
}

// Close drops the session of userID.
func (s *ConsoleSessionService) Close(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	count := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)
}

// Count returns the number of live sessions.
func (s *ConsoleSessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle drops sessions unused for longer than the idle TTL.
func (s *ConsoleSessionService) EvictIdle() int {
	cutoff := s.now().Add(-s.cfg.IdleTTL)
	s.mu.Lock()
	evicted := 0
	for id, session := range s.sessions {
		if session.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 {
		s.metrics.SetActiveSessions(count)
		s.logger.Info("evicted idle console sessions", zap.Int("evicted", evicted), zap.Int("remaining", count))
	}
	return evicted
}

// Run evicts idle sessions periodically until ctx is done.
func (s *ConsoleSessionService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle()
		}
	}
}

func (cs *ConsoleSession) touch(now time.Time) {
	cs.mu.Lock()
	cs.lastSeen = now
	cs.mu.Unlock()
}

func (cs *ConsoleSession) idleSince() time.Time {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lastSeen
}

// Language returns the active language.
func (cs *ConsoleSession) Language() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lang
}

// Translator returns the translation function of the active language.
func (cs *ConsoleSession) Translator() i18n.Func {
	return cs.owner.catalog.T(cs.Language())
}

// Columns returns a copy of the current column layout.
func (cs *ConsoleSession) Columns() []models.Column {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]models.Column(nil), cs.columns...)
}

// SetLanguage switches the language and relabels columns, keeping their
// order, visibility and width.
func (cs *ConsoleSession) SetLanguage(lang string) (string, error) {
	if !cs.owner.catalog.Supports(lang) {
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported language")
	}
	resolved := cs.owner.catalog.Resolve(lang)
	t := cs.owner.catalog.T(resolved)

	cs.mu.Lock()
	cs.lang = resolved
	cs.columns = cs.owner.columns.Relabel(cs.columns, resolved)
	cs.mu.Unlock()

	cs.List.SetTranslator(t)
	cs.Detail.SetTranslator(t)
	return resolved, nil
}

// SaveColumns persists a new layout and keeps it rehydrated in memory.
func (cs *ConsoleSession) SaveColumns(ctx context.Context, columns []models.Column) ([]models.Column, error) {
	if err := cs.owner.columns.Save(ctx, cs.slot, columns); err != nil {
		return nil, err
	}
	lang := cs.Language()
	rehydrated := Rehydrate(columns, cs.owner.columns.Defaults(lang))

	cs.mu.Lock()
	cs.columns = rehydrated
	cs.mu.Unlock()
	return append([]models.Column(nil), rehydrated...), nil
}

// Rows returns the filtered rows matching query.
func (cs *ConsoleSession) Rows(query string) []models.RegistrationRequest {
	return cs.List.Search(query)
}

// Snapshot renders the list view for query.
func (cs *ConsoleSession) Snapshot(query string) ListSnapshot {
	t := cs.Translator()
	columns := cs.Columns()
	rows := cs.Rows(query)

	views := make([]RowView, 0, len(rows))
	for _, row := range rows {
		display := make(map[string]string, len(columns))
		for _, col := range columns {
			display[col.Key] = col.Display(row.Field(col.Key))
		}
		views = append(views, RowView{
			Row:     row,
			Display: display,
			Status:  models.DescribeStatus(row.Status, t),
		})
	}

	return ListSnapshot{
		Language:   cs.Language(),
		Query:      query,
		Rows:       views,
		Columns:    columns,
		Categories: ColumnCategories(t),
		Statuses:   models.StatusVocabulary(t),
		State:      cs.List.State(),
	}
}

// DetailSnapshot renders the detail view with its progress step.
func (cs *ConsoleSession) DetailSnapshot() DetailSnapshot {
	t := cs.Translator()
	state := cs.Detail.State()
	snapshot := DetailSnapshot{DetailState: state, Steps: Steps(t)}
	if state.Request != nil {
		snapshot.Status = models.DescribeStatus(state.Request.Status, t)
		snapshot.StepIndex = StepIndexFor(state.Request.Status)
		snapshot.Contact = state.Request.PrimaryContact()
	}
	return snapshot
}
