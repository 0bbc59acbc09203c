package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/internal/client"
	"github.com/noah-isme/sma-registration-console/internal/dto"
	"github.com/noah-isme/sma-registration-console/internal/middleware"
	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/internal/service"
	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
	"github.com/noah-isme/sma-registration-console/pkg/response"
)

type sessionProvider interface {
	Session(ctx context.Context, userID, lang string) (*service.ConsoleSession, error)
}

type registrationExporter interface {
	Export(columns []models.Column, rows []models.RegistrationRequest, format, title string) (*service.ExportFile, error)
}

// ConsoleHandler exposes the registration review endpoints.
type ConsoleHandler struct {
	sessions sessionProvider
	exporter registrationExporter
	validate *validator.Validate
	logger   *zap.Logger
}

// NewConsoleHandler builds a new handler.
func NewConsoleHandler(sessions sessionProvider, exporter registrationExporter, validate *validator.Validate, logger *zap.Logger) *ConsoleHandler {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleHandler{sessions: sessions, exporter: exporter, validate: validate, logger: logger}
}

// List godoc
// @Summary List registration requests
// @Tags Registrations
// @Produce json
// @Param search query string false "Free-text search on guardian name, phone and id"
// @Param date query string false "Meeting-slot date prefix (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *ConsoleHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if date, present := c.GetQuery("date"); present {
		if err := h.validate.Struct(dto.DateFilterRequest{Date: date}); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid date filter"))
			return
		}
		session.List.SetDateFilter(date)
	}
	respond(c, http.StatusOK, session.Snapshot(c.Query("search")))
}

// Refresh godoc
// @Summary Reload registration requests from the registration service
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /registrations/refresh [post]
func (h *ConsoleHandler) Refresh(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.List.FetchAll(c.Request.Context()); err != nil {
		middleware.AddAlert(c, session.List.State().Error)
	}
	respond(c, http.StatusOK, session.Snapshot(c.Query("search")))
}

// SetFilter godoc
// @Summary Set the meeting date filter
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.DateFilterRequest true "Date filter"
// @Success 200 {object} response.Envelope
// @Router /registrations/filter [put]
func (h *ConsoleHandler) SetFilter(c *gin.Context) {
	var req dto.DateFilterRequest
	if !h.bind(c, &req, "invalid date filter") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.List.SetDateFilter(req.Date)
	respond(c, http.StatusOK, session.Snapshot(c.Query("search")))
}

// ToggleSelection godoc
// @Summary Toggle row selection mode
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /registrations/selection/toggle [post]
func (h *ConsoleHandler) ToggleSelection(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.List.ToggleSelectionMode()
	respond(c, http.StatusOK, session.List.State())
}

// SetSelection godoc
// @Summary Replace the selected rows
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.SelectionRequest true "Selected ids"
// @Success 200 {object} response.Envelope
// @Router /registrations/selection [put]
func (h *ConsoleHandler) SetSelection(c *gin.Context) {
	var req dto.SelectionRequest
	if !h.bind(c, &req, "invalid selection payload") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.List.SetSelectedRows(req.IDs)
	respond(c, http.StatusOK, session.List.State())
}

// BulkRemove godoc
// @Summary Hide the selected rows from the list
// @Description View-only removal; the registration service is not called.
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.BulkRemoveRequest true "Confirmation"
// @Success 200 {object} response.Envelope
// @Router /registrations/bulk-remove [post]
func (h *ConsoleHandler) BulkRemove(c *gin.Context) {
	var req dto.BulkRemoveRequest
	if !h.bind(c, &req, "invalid bulk remove payload") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	removed := session.List.BulkRemove(c.Request.Context(), newRequestPrompter(c, req.Confirmed))
	middleware.SetMeta(c, "removed", removed)
	respond(c, http.StatusOK, session.Snapshot(c.Query("search")))
}

// BulkReject godoc
// @Summary Reject every selected registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.BulkRejectRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations/bulk-reject [post]
func (h *ConsoleHandler) BulkReject(c *gin.Context) {
	var req dto.BulkRejectRequest
	if !h.bind(c, &req, "invalid bulk reject payload") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	outcome, err := session.Detail.BulkReject(c.Request.Context(), req.Reason, newRequestPrompter(c, false))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "outcome", outcome)
	respond(c, http.StatusOK, session.Snapshot(c.Query("search")))
}

// Export godoc
// @Summary Download the filtered registration list
// @Tags Registrations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param search query string false "Free-text search"
// @Success 200 {file} file
// @Router /registrations/export [get]
func (h *ConsoleHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export unavailable"))
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	t := session.Translator()
	file, err := h.exporter.Export(session.Columns(), session.Rows(c.Query("search")), c.DefaultQuery("format", service.ExportFormatCSV), t("messages.export_title"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// OpenDetail godoc
// @Summary Open the detail of a registration
// @Tags Detail
// @Produce json
// @Param id path int true "Registration id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /registrations/{id}/open [post]
func (h *ConsoleHandler) OpenDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration id"))
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.Detail.OpenDetailByID(c.Request.Context(), models.ID(id)); err != nil {
		response.Error(c, upstreamError(err))
		return
	}
	respond(c, http.StatusOK, session.DetailSnapshot())
}

// Detail godoc
// @Summary Get the open registration detail
// @Tags Detail
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /detail [get]
func (h *ConsoleHandler) Detail(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, session.DetailSnapshot())
}

// CloseDetail godoc
// @Summary Close the detail view
// @Tags Detail
// @Success 204
// @Router /detail [delete]
func (h *ConsoleHandler) CloseDetail(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Detail.CloseDetail()
	response.NoContent(c)
}

// Composition godoc
// @Summary Open, update or cancel the rejection composer
// @Tags Detail
// @Accept json
// @Produce json
// @Param payload body dto.CompositionRequest true "Composer state"
// @Success 200 {object} response.Envelope
// @Router /detail/composition [put]
func (h *ConsoleHandler) Composition(c *gin.Context) {
	var req dto.CompositionRequest
	if !h.bind(c, &req, "invalid composition payload") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	switch req.Mode {
	case dto.CompositionReject:
		session.Detail.BeginReject()
	case dto.CompositionBulkReject:
		session.Detail.BeginBulkReject()
	case dto.CompositionCancel:
		session.Detail.CancelComposition()
	}
	if req.Reason != nil {
		session.Detail.SetRejectionReason(*req.Reason)
	}
	respond(c, http.StatusOK, session.DetailSnapshot())
}

// UpdateStatus godoc
// @Summary Change the status of the open registration
// @Tags Detail
// @Accept json
// @Produce json
// @Param payload body dto.StatusUpdateRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /detail/status [post]
func (h *ConsoleHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if !h.bind(c, &req, "invalid status payload") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.Detail.UpdateStatus(c.Request.Context(), req.Status, req.RejectionReason, newRequestPrompter(c, false)); err != nil {
		response.Error(c, upstreamError(err), middleware.ExtractMeta(c))
		return
	}
	respond(c, http.StatusOK, session.DetailSnapshot())
}

func (h *ConsoleHandler) session(c *gin.Context) (*service.ConsoleSession, bool) {
	if h.sessions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "console sessions unavailable"))
		return nil, false
	}
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	session, err := h.sessions.Session(c.Request.Context(), claims.UserID, preferredLanguage(c, claims))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return session, true
}

func (h *ConsoleHandler) bind(c *gin.Context, req interface{}, message string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func respond(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data, middleware.ExtractMeta(c))
}

// upstreamError maps remote rejections onto the 502 envelope and keeps typed errors as is.
func upstreamError(err error) error {
	if msg, ok := client.ServerMessage(err); ok {
		return appErrors.Upstream(err, msg)
	}
	return err
}

func preferredLanguage(c *gin.Context, claims *models.JWTClaims) string {
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return lang
	}
	if claims != nil && claims.Language != "" {
		return claims.Language
	}
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return ""
	}
	first := strings.SplitN(header, ",", 2)[0]
	return strings.TrimSpace(strings.SplitN(first, ";", 2)[0])
}
