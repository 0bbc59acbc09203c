package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-registration-console/internal/dto"
	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/internal/service"
	"github.com/noah-isme/sma-registration-console/pkg/response"
)

type columnLayoutView struct {
	Language   string            `json:"language"`
	Columns    []models.Column   `json:"columns"`
	Categories map[string]string `json:"categories"`
}

// Columns godoc
// @Summary Get the column layout
// @Tags Columns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /columns [get]
func (h *ConsoleHandler) Columns(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, layoutView(session))
}

// SaveColumns godoc
// @Summary Save the column layout
// @Tags Columns
// @Accept json
// @Produce json
// @Param payload body dto.ColumnsRequest true "Column layout"
// @Success 200 {object} response.Envelope
// @Router /columns [put]
func (h *ConsoleHandler) SaveColumns(c *gin.Context) {
	var req dto.ColumnsRequest
	if !h.bind(c, &req, "invalid column layout") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := session.SaveColumns(c.Request.Context(), req.ToModels()); err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, layoutView(session))
}

// SetLanguage godoc
// @Summary Switch the console language
// @Description Relabels columns and statuses; order, visibility and widths are kept.
// @Tags Columns
// @Accept json
// @Produce json
// @Param payload body dto.LanguageRequest true "Language"
// @Success 200 {object} response.Envelope
// @Router /language [put]
func (h *ConsoleHandler) SetLanguage(c *gin.Context) {
	var req dto.LanguageRequest
	if !h.bind(c, &req, "invalid language payload") {
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := session.SetLanguage(req.Language); err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, layoutView(session))
}

func layoutView(session *service.ConsoleSession) columnLayoutView {
	return columnLayoutView{
		Language:   session.Language(),
		Columns:    session.Columns(),
		Categories: service.ColumnCategories(session.Translator()),
	}
}
