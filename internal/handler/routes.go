package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-registration-console/internal/middleware"
)

// RegisterConsoleRoutes mounts the review console on rg. Authentication is
// expected to run on rg already.
func RegisterConsoleRoutes(rg *gin.RouterGroup, h *ConsoleHandler) {
	audit := func(action string) gin.HandlerFunc { return middleware.Audit(h.logger, action) }

	registrations := rg.Group("/registrations")
	registrations.GET("", h.List)
	registrations.POST("/refresh", h.Refresh)
	registrations.PUT("/filter", h.SetFilter)
	registrations.POST("/selection/toggle", h.ToggleSelection)
	registrations.PUT("/selection", h.SetSelection)
	registrations.POST("/bulk-remove", audit("bulk_remove"), h.BulkRemove)
	registrations.POST("/bulk-reject", audit("bulk_reject"), h.BulkReject)
	registrations.GET("/export", audit("export"), h.Export)
	registrations.POST("/:id/open", audit("open_detail"), h.OpenDetail)

	detail := rg.Group("/detail")
	detail.GET("", h.Detail)
	detail.DELETE("", h.CloseDetail)
	detail.PUT("/composition", h.Composition)
	detail.POST("/status", audit("update_status"), h.UpdateStatus)

	rg.GET("/columns", h.Columns)
	rg.PUT("/columns", audit("save_columns"), h.SaveColumns)
	rg.PUT("/language", h.SetLanguage)
}
