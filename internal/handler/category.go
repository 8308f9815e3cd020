package handler

import (
	"net/http"

	"github.com/Bateyjosue/xenfi-systems/internal/middleware"
	"github.com/Bateyjosue/xenfi-systems/internal/service"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	cats, err := h.Categories.List(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, cats)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.Categories.Get(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, cat)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var in service.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.Categories.Create(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusCreated, cat)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.UpdateCategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.Categories.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Categories.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
