// Package handler adapts HTTP requests to the service layer. Handlers only
// decode input and encode output; every rule lives in the services.
package handler

import (
	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.Fail(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Fail(c, apperr.Validation("Invalid id"))
		return 0, false
	}
	return id, true
}
