package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger emits one structured record per request after the handler chain
// completes. The level tracks the response class: 5xx error, 4xx warn,
// everything else info.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			attrs = append(attrs, slog.String("query", query))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			slog.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
		case status >= 400:
			slog.LogAttrs(ctx, slog.LevelWarn, "request rejected", attrs...)
		default:
			slog.LogAttrs(ctx, slog.LevelInfo, "request served", attrs...)
		}
	}
}
