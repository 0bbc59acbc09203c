package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-registration-console/internal/middleware"
)

// requestPrompter answers confirmations from the request body and returns
// alerts to the browser in meta.alerts.
type requestPrompter struct {
	c         *gin.Context
	confirmed bool
}

func newRequestPrompter(c *gin.Context, confirmed bool) *requestPrompter {
	return &requestPrompter{c: c, confirmed: confirmed}
}

func (p *requestPrompter) Confirm(_ context.Context, message string) bool {
	middleware.SetMeta(p.c, "confirmation", message)
	return p.confirmed
}

func (p *requestPrompter) Alert(_ context.Context, message string) {
	middleware.AddAlert(p.c, message)
}
