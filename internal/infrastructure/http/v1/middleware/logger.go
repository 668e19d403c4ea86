package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appctx "apikit/internal/core/context"
	"apikit/pkg/logger"
)

// Logger binds log to the request context and writes one line per request.
// Server errors log at error level, client errors at warn.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"locale", appctx.Locale(ctx),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(ctx, "http request", kv...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "http request", kv...)
		default:
			logger.Info(ctx, "http request", kv...)
		}
	}
}
