package middleware

import (
	"log/slog"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id and logs one line per request. Errors
// attached with c.Error are logged with the line; they never reach the client.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	logger = logging.WithComponent(logger, logging.ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			logging.FieldRequestID, reqID,
			logging.FieldMethod, c.Request.Method,
			logging.FieldPath, c.Request.URL.Path,
			logging.FieldQuery, c.Request.URL.RawQuery,
			logging.FieldStatusCode, status,
			logging.FieldDuration, time.Since(start).Milliseconds(),
			logging.FieldClientIP, c.ClientIP(),
			logging.FieldUserAgent, c.Request.UserAgent(),
		}
		if id := CurrentIdentity(c); id != nil {
			attrs = append(attrs, logging.FieldUserID, id.UserID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, logging.FieldError, c.Errors.String())
		}
		logger.Log(c.Request.Context(), level, "request", attrs...)
	}
}
