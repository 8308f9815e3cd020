package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/store"
	"github.com/Bateyjosue/xenfi-systems/internal/util"
)

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

type CategoryService struct {
	store  *store.Store
	logger *slog.Logger
	timeouts
}

func NewCategoryService(st *store.Store, opts Options, logger *slog.Logger) *CategoryService {
	opts = opts.withDefaults()
	return &CategoryService{
		store:    st,
		logger:   logging.WithComponent(logger, logging.ComponentCategory),
		timeouts: timeouts{query: opts.QueryTimeout},
	}
}

// List returns every category ordered by name. Anonymous callers are allowed.
func (s *CategoryService) List(ctx context.Context, id *policy.Identity) ([]models.Category, error) {
	if err := authorize(id, policy.CategoryRead, policy.Resource{}); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cats, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("list categories: %w", err))
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id *policy.Identity, categoryID uint) (*models.Category, error) {
	if err := authorize(id, policy.CategoryRead, policy.Resource{}); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.find(ctx, categoryID)
}

func (s *CategoryService) Create(ctx context.Context, id *policy.Identity, in CategoryInput) (*models.Category, error) {
	if err := authorize(id, policy.CategoryWrite, policy.Resource{}); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	c := models.Category{Name: in.Name, Description: in.Description}
	if err := s.store.Categories.Create(ctx, &c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nameTaken(in.Name)
		}
		return nil, apperr.Unexpected(fmt.Errorf("create category: %w", err))
	}
	s.logger.InfoContext(ctx, "category created", "category_id", c.ID, logging.FieldUserID, id.UserID)
	return &c, nil
}

func (s *CategoryService) Update(ctx context.Context, id *policy.Identity, categoryID uint, in UpdateCategoryInput) (*models.Category, error) {
	if err := authorize(id, policy.CategoryWrite, policy.Resource{}); err != nil {
		return nil, err
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.find(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil && *in.Name != current.Name {
		if err := s.ensureNameFree(ctx, *in.Name, current.ID); err != nil {
			return nil, err
		}
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) == 0 {
		return current, nil
	}

	if err := s.store.Categories.Update(ctx, current.ID, fields); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, nameTaken(*in.Name)
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("Category not found")
		}
		return nil, apperr.Unexpected(fmt.Errorf("update category %d: %w", categoryID, err))
	}
	return s.find(ctx, current.ID)
}

// Delete removes a category that no expense references.
func (s *CategoryService) Delete(ctx context.Context, id *policy.Identity, categoryID uint) error {
	if err := authorize(id, policy.CategoryWrite, policy.Resource{}); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.find(ctx, categoryID); err != nil {
		return err
	}
	used, err := s.store.Expenses.Count(ctx, store.ExpenseFilter{CategoryID: &categoryID})
	if err != nil {
		return apperr.Unexpected(fmt.Errorf("count category usage: %w", err))
	}
	if used > 0 {
		return apperr.Conflict(fmt.Sprintf("Category is used by %d expense(s) and cannot be deleted", used))
	}

	if err := s.store.Categories.Delete(ctx, categoryID); err != nil {
		switch {
		case errors.Is(err, store.ErrReferenced):
			return apperr.Conflict("Category is in use and cannot be deleted")
		case errors.Is(err, store.ErrNotFound):
			return apperr.NotFound("Category not found")
		}
		return apperr.Unexpected(fmt.Errorf("delete category %d: %w", categoryID, err))
	}
	s.logger.InfoContext(ctx, "category deleted", "category_id", categoryID, logging.FieldUserID, id.UserID)
	return nil
}

func (s *CategoryService) find(ctx context.Context, categoryID uint) (*models.Category, error) {
	c, err := s.store.Categories.FindByID(ctx, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Category not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("find category %d: %w", categoryID, err))
	}
	return c, nil
}

// ensureNameFree fails with Conflict when another category already uses name.
func (s *CategoryService) ensureNameFree(ctx context.Context, name string, selfID uint) error {
	other, err := s.store.Categories.FindByName(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return apperr.Unexpected(fmt.Errorf("find category by name: %w", err))
	case other.ID != selfID:
		return nameTaken(name)
	}
	return nil
}

func nameTaken(name string) error {
	return apperr.Conflict(fmt.Sprintf("Category %q already exists", name))
}
