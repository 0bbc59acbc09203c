package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-registration-console/pkg/middleware/requestid"
)

// Audit writes one structured log entry per successful review action.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user := CurrentClaims(c); user != nil {
			fields = append(fields, zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("registration_id", id))
		}
		if rid := requestid.Value(c); rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}
		logger.Info("audit", fields...)
	}
}
