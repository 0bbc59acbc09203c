package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/client"
	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

// placeholderSlots backfills rows the API returns without a meeting slot.
var placeholderSlots = []string{
	"2026-02-15 09:00",
	"2026-02-15 10:30",
	"2026-02-16 14:00",
	"2026-02-17 11:00",
	"2026-02-18 15:30",
}

// RegistrationLister fetches list rows from the remote API.
type RegistrationLister interface {
	ListRequests(ctx context.Context) ([]models.RegistrationRequest, error)
}

// Prompter asks the operator for confirmation and shows blocking alerts.
type Prompter interface {
	Confirm(ctx context.Context, message string) bool
	Alert(ctx context.Context, message string)
}

// ListState is a point-in-time copy of the list controller flags.
type ListState struct {
	Loading          bool        `json:"loading"`
	Error            string      `json:"error,omitempty"`
	DateFilter       string      `json:"dateFilter"`
	SelectionEnabled bool        `json:"selectionEnabled"`
	SelectedRows     []models.ID `json:"selectedRows"`
	Total            int         `json:"total"`
}

// RegistrationListService mirrors the remote registration list for one admin.
type RegistrationListService struct {
	mu     sync.Mutex
	client RegistrationLister
	logger *zap.Logger
	t      i18n.Func

	requests         []models.RegistrationRequest
	loading          bool
	errMsg           string
	dateFilter       string
	selected         map[models.ID]struct{}
	selectionEnabled bool
}

// NewRegistrationListService constructs an empty list controller.
func NewRegistrationListService(lister RegistrationLister, t i18n.Func, logger *zap.Logger) *RegistrationListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if t == nil {
		t = func(key string) string { return key }
	}
	return &RegistrationListService{
		client:   lister,
		logger:   logger,
		t:        t,
		requests: []models.RegistrationRequest{},
		selected: make(map[models.ID]struct{}),
	}
}

// SetTranslator swaps the translation function used for operator messages.
func (s *RegistrationListService) SetTranslator(t i18n.Func) {
	if t == nil {
		return
	}
	s.mu.Lock()
	s.t = t
	s.mu.Unlock()
}

// FetchAll replaces the rows with the remote list. Failures land in the error
// state and are returned for logging; nothing is retried.
func (s *RegistrationListService) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	rows, err := s.client.ListRequests(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		msg, ok := client.ServerMessage(err)
		if !ok {
			msg = s.t("messages.list_failed")
		}
		s.errMsg = msg
		s.logger.Warn("failed to load registration requests", zap.Error(err))
		return err
	}

	for i := range rows {
		if strings.TrimSpace(rows[i].MeetingSlot) == "" {
			rows[i].MeetingSlot = placeholderSlots[i%len(placeholderSlots)]
		}
	}
	s.requests = rows
	s.errMsg = ""
	s.pruneSelectionLocked()
	return nil
}

// Requests returns a copy of every row in list order.
func (s *RegistrationListService) Requests() []models.RegistrationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RegistrationRequest(nil), s.requests...)
}

// Filtered returns the rows whose meeting slot starts with the date filter.
func (s *RegistrationListService) Filtered() []models.RegistrationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredLocked()
}

// Search applies SearchFilter on top of Filtered. An empty query keeps every row.
func (s *RegistrationListService) Search(query string) []models.RegistrationRequest {
	rows := s.Filtered()
	if query == "" {
		return rows
	}
	out := rows[:0]
	for _, row := range rows {
		if SearchFilter(row, query) {
			out = append(out, row)
		}
	}
	return out
}

// SearchFilter matches query against guardian name, phone and id text.
func SearchFilter(row models.RegistrationRequest, query string) bool {
	return strings.Contains(row.GuardianName, query) ||
		strings.Contains(row.Phone, query) ||
		strings.Contains(row.ID.String(), query)
}

// SetDateFilter changes the date prefix and drops selections that fall out of view.
func (s *RegistrationListService) SetDateFilter(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dateFilter = strings.TrimSpace(date)
	s.pruneSelectionLocked()
}

// ToggleSelectionMode flips selection mode; switching it off clears the selection.
func (s *RegistrationListService) ToggleSelectionMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectionEnabled = !s.selectionEnabled
	if !s.selectionEnabled {
		s.selected = make(map[models.ID]struct{})
	}
	return s.selectionEnabled
}

// SetSelectedRows replaces the selection with the ids that are currently visible.
func (s *RegistrationListService) SetSelectedRows(ids []models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selectionEnabled {
		return
	}
	visible := make(map[models.ID]struct{})
	for _, row := range s.filteredLocked() {
		visible[row.ID] = struct{}{}
	}
	next := make(map[models.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := visible[id]; ok {
			next[id] = struct{}{}
		}
	}
	s.selected = next
}

// SelectedRows returns the selected ids in list order.
func (s *RegistrationListService) SelectedRows() []models.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

// BulkRemove drops the selected rows from the local list once the operator
// confirms. The remote API is never called.
func (s *RegistrationListService) BulkRemove(ctx context.Context, prompter Prompter) int {
	s.mu.Lock()
	count := len(s.selected)
	t := s.t
	s.mu.Unlock()

	if count == 0 || prompter == nil {
		return 0
	}
	if !prompter.Confirm(ctx, fmt.Sprintf(t("messages.confirm_bulk_remove"), count)) {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]models.RegistrationRequest, 0, len(s.requests))
	removed := 0
	for _, row := range s.requests {
		if _, ok := s.selected[row.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	s.requests = kept
	s.selected = make(map[models.ID]struct{})
	return removed
}

// RowByID looks a row up by its stable identifier.
func (s *RegistrationListService) RowByID(id models.ID) (models.RegistrationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.requests {
		if row.ID == id {
			return row, true
		}
	}
	return models.RegistrationRequest{}, false
}

// SetError replaces the shared error message.
func (s *RegistrationListService) SetError(message string) {
	s.mu.Lock()
	s.errMsg = message
	s.mu.Unlock()
}

// State returns a copy of the controller flags.
func (s *RegistrationListService) State() ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ListState{
		Loading:          s.loading,
		Error:            s.errMsg,
		DateFilter:       s.dateFilter,
		SelectionEnabled: s.selectionEnabled,
		SelectedRows:     s.selectedLocked(),
		Total:            len(s.requests),
	}
}

// applyStatusByParent sets status on rows whose parent key matches. Only the
// status field changes.
func (s *RegistrationListService) applyStatusByParent(parentID models.ID, status models.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i := range s.requests {
		if s.requests[i].ParentKey() == parentID {
			s.requests[i].Status = status
			changed++
		}
	}
	return changed
}

// applyBulkStatus sets status on rows matched by id and removes them from the selection.
func (s *RegistrationListService) applyBulkStatus(ids []models.ID, status models.Status) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[models.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
		delete(s.selected, id)
	}
	for i := range s.requests {
		if _, ok := set[s.requests[i].ID]; ok {
			s.requests[i].Status = status
		}
	}
}

func (s *RegistrationListService) filteredLocked() []models.RegistrationRequest {
	out := make([]models.RegistrationRequest, 0, len(s.requests))
	for _, row := range s.requests {
		if s.dateFilter == "" || strings.HasPrefix(row.MeetingSlot, s.dateFilter) {
			out = append(out, row)
		}
	}
	return out
}

func (s *RegistrationListService) selectedLocked() []models.ID {
	ids := make([]models.ID, 0, len(s.selected))
	for _, row := range s.requests {
		if _, ok := s.selected[row.ID]; ok {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

func (s *RegistrationListService) pruneSelectionLocked() {
	if len(s.selected) == 0 {
		return
	}
	visible := make(map[models.ID]struct{}, len(s.selected))
	for _, row := range s.filteredLocked() {
		if _, ok := s.selected[row.ID]; ok {
			visible[row.ID] = struct{}{}
		}
	}
	s.selected = visible
}

// selectionTargets resolves the selection to rows by stable id. Ids that no
// longer match a row are returned separately.
func (s *RegistrationListService) selectionTargets() ([]models.RegistrationRequest, []models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]models.RegistrationRequest, 0, len(s.selected))
	found := make(map[models.ID]struct{}, len(s.selected))
	for _, row := range s.requests {
		if _, ok := s.selected[row.ID]; ok {
			rows = append(rows, row)
			found[row.ID] = struct{}{}
		}
	}
	var missing []models.ID
	for id := range s.selected {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return rows, missing
}
