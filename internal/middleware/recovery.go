package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a generic JSON 500.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	logger = logging.WithComponent(logger, logging.ComponentHTTP)
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			logging.FieldPath, c.Request.URL.Path,
			logging.FieldError, fmt.Sprint(rec),
			"stack", string(debug.Stack()))
		util.Error(c, http.StatusInternalServerError, apperr.UnexpectedMessage)
	})
}
