package util

import (
	"github.com/Bateyjosue/xenfi-systems/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Success writes data as the JSON body.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// Error writes {"error": msg} and aborts the chain.
func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// Fail maps err onto its HTTP status. The full error is attached to the gin
// context for the request logger; the body only carries the public message.
func Fail(c *gin.Context, err error) {
	ae := apperr.From(err)
	_ = c.Error(err)
	Error(c, ae.Kind.HTTPStatus(), ae.PublicMessage())
}
