package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-registration-console/internal/client"
	"github.com/noah-isme/sma-registration-console/internal/models"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

const defaultBulkConcurrency = 8

// RegistrationDetailClient covers the detail and mutation endpoints.
type RegistrationDetailClient interface {
	GetDetail(ctx context.Context, parentID models.ID) (*models.RegistrationDetail, error)
	UpdateStatus(ctx context.Context, update models.StatusUpdate) error
}

// DetailState is a point-in-time copy of the detail controller.
type DetailState struct {
	Open            bool                       `json:"open"`
	Request         *models.RegistrationDetail `json:"request,omitempty"`
	DetailLoading   bool                       `json:"detailLoading"`
	ActionLoading   bool                       `json:"actionLoading"`
	RejectionReason string                     `json:"rejectionReason"`
	IsRejecting     bool                       `json:"isRejecting"`
	IsBulkRejecting bool                       `json:"isBulkRejecting"`
}

// BulkFailure explains why one row of a bulk mutation did not apply.
type BulkFailure struct {
	ID     models.ID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkOutcome reports which selected rows were rejected and which were not.
type BulkOutcome struct {
	Succeeded []models.ID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// Total is the number of rows attempted.
func (o BulkOutcome) Total() int {
	return len(o.Succeeded) + len(o.Failed)
}

// DetailOptions tunes the detail controller.
type DetailOptions struct {
	BulkConcurrency int
}

// RegistrationDetailService owns the selected registration and its mutations.
type RegistrationDetailService struct {
	mu          sync.Mutex
	client      RegistrationDetailClient
	list        *RegistrationListService
	metrics     *MetricsService
	logger      *zap.Logger
	t           i18n.Func
	concurrency int

	token           uint64
	open            bool
	selected        *models.RegistrationDetail
	detailLoading   bool
	actionLoading   bool
	rejReason       string
	isRejecting     bool
	isBulkRejecting bool
}

// NewRegistrationDetailService wires the detail controller to a list controller.
func NewRegistrationDetailService(api RegistrationDetailClient, list *RegistrationListService, t i18n.Func, metrics *MetricsService, logger *zap.Logger, opts DetailOptions) *RegistrationDetailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if t == nil {
		t = func(key string) string { return key }
	}
	concurrency := opts.BulkConcurrency
	if concurrency <= 0 {
		concurrency = defaultBulkConcurrency
	}
	return &RegistrationDetailService{
		client:      api,
		list:        list,
		metrics:     metrics,
		logger:      logger,
		t:           t,
		concurrency: concurrency,
	}
}

// SetTranslator swaps the translation function used for alerts.
func (s *RegistrationDetailService) SetTranslator(t i18n.Func) {
	if t == nil {
		return
	}
	s.mu.Lock()
	s.t = t
	s.mu.Unlock()
}

// OpenDetail opens the detail surface for row and fetches its expanded record.
// Only the most recent call may apply its response.
func (s *RegistrationDetailService) OpenDetail(ctx context.Context, row models.RegistrationRequest) error {
	s.mu.Lock()
	s.token++
	token := s.token
	s.open = true
	s.detailLoading = true
	s.mu.Unlock()

	detail, err := s.client.GetDetail(ctx, row.ParentKey())

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.logger.Debug("discarding stale registration detail", zap.String("parent_id", row.ParentKey().String()))
		return nil
	}
	s.detailLoading = false

	if err != nil {
		s.open = false
		s.selected = nil
		s.logger.Warn("failed to load registration detail", zap.String("parent_id", row.ParentKey().String()), zap.Error(err))
		if s.list != nil {
			s.list.SetError(s.t("messages.detail_failed"))
		}
		return err
	}

	s.selected = detail
	s.rejReason = detail.RejectionReason
	s.isRejecting = false
	return nil
}

// OpenDetailByID resolves id against the list before opening it.
func (s *RegistrationDetailService) OpenDetailByID(ctx context.Context, id models.ID) error {
	if s.list == nil {
		return appErrors.ErrNotFound
	}
	row, ok := s.list.RowByID(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
	}
	return s.OpenDetail(ctx, row)
}

// CloseDetail hides the detail surface and invalidates any fetch in flight.
func (s *RegistrationDetailService) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.open = false
	s.selected = nil
	s.detailLoading = false
	s.rejReason = ""
	s.isRejecting = false
	s.isBulkRejecting = false
}

// UpdateStatus posts a status change for the selected registration. It is a
// no-op without a selected parent. Failures are alerted and leave state as is.
func (s *RegistrationDetailService) UpdateStatus(ctx context.Context, status models.Status, reason string, prompter Prompter) error {
	s.mu.Lock()
	if s.selected == nil || s.selected.ParentID == 0 {
		s.mu.Unlock()
		return nil
	}
	if s.actionLoading {
		s.mu.Unlock()
		return appErrors.ErrActionInProgress
	}
	s.actionLoading = true
	parentID := s.selected.ParentID
	s.mu.Unlock()

	defer s.finishAction()

	err := s.client.UpdateStatus(ctx, models.StatusUpdate{
		ParentID:        parentID,
		Status:          status,
		RejectionReason: reason,
	})
	if err != nil {
		s.logger.Warn("status update failed",
			zap.String("parent_id", parentID.String()),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		if prompter != nil {
			prompter.Alert(ctx, alertMessage(err))
		}
		return err
	}

	if s.list != nil {
		s.list.applyStatusByParent(parentID, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != nil && s.selected.ParentID == parentID {
		merged := *s.selected
		merged.Status = status
		merged.RejectionReason = reason
		s.selected = &merged
	}
	s.clearCompositionLocked()
	return nil
}

// BulkReject rejects every selected row with the shared reason. Requests run
// concurrently; each row's outcome is applied on its own.
func (s *RegistrationDetailService) BulkReject(ctx context.Context, reason string, prompter Prompter) (BulkOutcome, error) {
	outcome := BulkOutcome{Succeeded: []models.ID{}, Failed: []BulkFailure{}}
	if strings.TrimSpace(reason) == "" || s.list == nil {
		return outcome, nil
	}

	rows, missing := s.list.selectionTargets()
	if len(rows) == 0 && len(missing) == 0 {
		return outcome, nil
	}

	s.mu.Lock()
	if s.actionLoading {
		s.mu.Unlock()
		return outcome, appErrors.ErrActionInProgress
	}
	s.actionLoading = true
	t := s.t
	s.mu.Unlock()

	defer s.finishAction()

	for _, id := range missing {
		outcome.Failed = append(outcome.Failed, BulkFailure{ID: id, Reason: "registration request not found"})
	}

	results := make([]error, len(rows))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, row := range rows {
		i, row := i, row
		if row.ID == 0 {
			results[i] = appErrors.Clone(appErrors.ErrValidation, "registration request has no identifier")
			continue
		}
		g.Go(func() error {
			results[i] = s.client.UpdateStatus(ctx, models.StatusUpdate{
				ParentID:        row.ParentKey(),
				Status:          models.StatusRejected,
				RejectionReason: reason,
			})
			return nil
		})
	}
	_ = g.Wait()

	for i, row := range rows {
		if results[i] != nil {
			outcome.Failed = append(outcome.Failed, BulkFailure{ID: row.ID, Reason: alertMessage(results[i])})
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, row.ID)
	}

	s.list.applyBulkStatus(outcome.Succeeded, models.StatusRejected)
	s.metrics.RecordBulkOutcome(len(outcome.Succeeded), len(outcome.Failed))

	s.mu.Lock()
	if s.selected != nil {
		for _, id := range outcome.Succeeded {
			if rowParent, ok := parentOf(rows, id); ok && rowParent == s.selected.ParentID {
				merged := *s.selected
				merged.Status = models.StatusRejected
				merged.RejectionReason = reason
				s.selected = &merged
			}
		}
	}
	if len(outcome.Failed) == 0 {
		s.clearCompositionLocked()
	}
	s.mu.Unlock()

	if len(outcome.Failed) > 0 {
		s.logger.Warn("bulk rejection partially failed",
			zap.Int("succeeded", len(outcome.Succeeded)),
			zap.Int("failed", len(outcome.Failed)),
		)
		if prompter != nil {
			prompter.Alert(ctx, fmt.Sprintf(t("messages.bulk_reject_failed"), len(outcome.Failed), outcome.Total()))
		}
	}
	return outcome, nil
}

// BeginReject opens the single-rejection composer.
func (s *RegistrationDetailService) BeginReject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isRejecting = true
	s.isBulkRejecting = false
}

// BeginBulkReject opens the bulk-rejection composer with an empty reason.
func (s *RegistrationDetailService) BeginBulkReject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isBulkRejecting = true
	s.isRejecting = false
	s.rejReason = ""
}

// SetRejectionReason stores the reason being composed.
func (s *RegistrationDetailService) SetRejectionReason(reason string) {
	s.mu.Lock()
	s.rejReason = reason
	s.mu.Unlock()
}

// CancelComposition closes either composer.
func (s *RegistrationDetailService) CancelComposition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isRejecting = false
	s.isBulkRejecting = false
}

// RejectionReason returns the reason being composed.
func (s *RegistrationDetailService) RejectionReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejReason
}

// State returns a copy of the detail controller.
func (s *RegistrationDetailService) State() DetailState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := DetailState{
		Open:            s.open,
		DetailLoading:   s.detailLoading,
		ActionLoading:   s.actionLoading,
		RejectionReason: s.rejReason,
		IsRejecting:     s.isRejecting,
		IsBulkRejecting: s.isBulkRejecting,
	}
	if s.selected != nil {
		detail := *s.selected
		state.Request = &detail
	}
	return state
}

func (s *RegistrationDetailService) finishAction() {
	s.mu.Lock()
	s.actionLoading = false
	s.mu.Unlock()
}

func (s *RegistrationDetailService) clearCompositionLocked() {
	s.isRejecting = false
	s.isBulkRejecting = false
	s.rejReason = ""
}

func parentOf(rows []models.RegistrationRequest, id models.ID) (models.ID, bool) {
	for _, row := range rows {
		if row.ID == id {
			return row.ParentKey(), true
		}
	}
	return 0, false
}

func alertMessage(err error) string {
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return appErrors.MessageOf(err)
}
