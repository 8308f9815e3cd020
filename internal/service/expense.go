package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/cache"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/store"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/shopspring/decimal"
)

const invalidationTimeout = 3 * time.Second

// ExpenseQuery holds the raw list filters as received from the client.
type ExpenseQuery struct {
	StartDate  string
	EndDate    string
	CategoryID string
	UserID     string // admin listing only
}

// filter parses the query. Both dates are inclusive calendar days.
func (q ExpenseQuery) filter() (store.ExpenseFilter, error) {
	var f store.ExpenseFilter
	if q.StartDate != "" {
		start, err := util.ParseDate(q.StartDate)
		if err != nil {
			return f, apperr.Validation("startDate must be a date in YYYY-MM-DD format")
		}
		f.From = &start
	}
	if q.EndDate != "" {
		end, err := util.ParseDate(q.EndDate)
		if err != nil {
			return f, apperr.Validation("endDate must be a date in YYYY-MM-DD format")
		}
		end = end.AddDate(0, 0, 1)
		f.To = &end
	}
	if q.CategoryID != "" {
		id, err := util.ParseID(q.CategoryID)
		if err != nil {
			return f, apperr.Validation("categoryId must be a positive integer")
		}
		f.CategoryID = &id
	}
	if q.UserID != "" {
		id, err := util.ParseID(q.UserID)
		if err != nil {
			return f, apperr.Validation("userId must be a positive integer")
		}
		f.UserID = &id
	}
	return f, nil
}

// cacheKey embeds every supplied filter so that distinct combinations never share an entry.
func (q ExpenseQuery) cacheKey(ownerID uint) string {
	v := url.Values{}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	if q.CategoryID != "" {
		v.Set("categoryId", q.CategoryID)
	}
	return ownerCachePrefix(ownerID) + v.Encode()
}

func ownerCachePrefix(ownerID uint) string {
	return fmt.Sprintf("expenses:%d:", ownerID)
}

type CreateExpenseInput struct {
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	Description   *string          `json:"description" validate:"omitempty,max=1024"`
	Date          *string          `json:"date"`
	PaymentMethod string           `json:"paymentMethod" validate:"required,oneof=CASH CARD BANK_TRANSFER MOBILE_MONEY OTHER"`
	AttachmentURL *string          `json:"attachmentUrl" validate:"omitempty,max=1024"`
	CategoryID    uint             `json:"categoryId" validate:"required"`
}

// UpdateExpenseInput is a partial update; nil fields are left unchanged.
type UpdateExpenseInput struct {
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description" validate:"omitempty,max=1024"`
	Date          *string          `json:"date"`
	PaymentMethod *string          `json:"paymentMethod" validate:"omitempty,oneof=CASH CARD BANK_TRANSFER MOBILE_MONEY OTHER"`
	AttachmentURL *string          `json:"attachmentUrl" validate:"omitempty,max=1024"`
	CategoryID    *uint            `json:"categoryId" validate:"omitempty,gt=0"`
}

type ExpenseService struct {
	store  *store.Store
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
	timeouts
	now func() time.Time
}

func NewExpenseService(st *store.Store, c cache.Cache, opts Options, logger *slog.Logger) *ExpenseService {
	opts = opts.withDefaults()
	return &ExpenseService{
		store:    st,
		cache:    c,
		ttl:      opts.CacheTTL,
		logger:   logging.WithComponent(logger, logging.ComponentExpense),
		timeouts: timeouts{query: opts.QueryTimeout},
		now:      time.Now,
	}
}

// List returns the caller's expenses as a JSON array, served from cache when possible.
func (s *ExpenseService) List(ctx context.Context, id *policy.Identity, q ExpenseQuery) (json.RawMessage, error) {
	if err := authorize(id, policy.ExpenseList, policy.Resource{}); err != nil {
		return nil, err
	}
	q.UserID = ""
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	f.UserID = &id.UserID

	key := q.cacheKey(id.UserID)
	data, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "cache read failed", logging.FieldCacheKey, key, logging.FieldError, err)
	case ok:
		return data, nil
	}

	qctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.store.Expenses.Find(qctx, f)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("list expenses: %w", err))
	}

	data, err = json.Marshal(newExpenseViews(rows))
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("encode expenses: %w", err))
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", logging.FieldCacheKey, key, logging.FieldError, err)
	}
	return data, nil
}

// Records lists the caller's expenses without going through the cache.
func (s *ExpenseService) Records(ctx context.Context, id *policy.Identity, q ExpenseQuery) ([]ExpenseView, error) {
	if err := authorize(id, policy.ExpenseExport, policy.Resource{}); err != nil {
		return nil, err
	}
	q.UserID = ""
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	f.UserID = &id.UserID

	qctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.store.Expenses.Find(qctx, f)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("list expenses: %w", err))
	}
	return newExpenseViews(rows), nil
}

// Get returns one expense. Missing and foreign expenses both yield NotFound.
func (s *ExpenseService) Get(ctx context.Context, id *policy.Identity, expenseID uint) (*ExpenseView, error) {
	e, err := s.owned(ctx, id, expenseID, policy.ExpenseRead)
	if err != nil {
		return nil, err
	}
	v := newExpenseView(e)
	return &v, nil
}

func (s *ExpenseService) Create(ctx context.Context, id *policy.Identity, in CreateExpenseInput) (*ExpenseView, error) {
	if err := authorize(id, policy.ExpenseCreate, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}
	amount, err := positiveAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	date := s.now().UTC()
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		if date, err = util.ParseDateTime(strings.TrimSpace(*in.Date)); err != nil {
			return nil, apperr.Validation("date must be an ISO 8601 date or timestamp")
		}
	}

	qctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.checkCategory(qctx, in.CategoryID); err != nil {
		return nil, err
	}

	e := models.Expense{
		Amount:        amount,
		Description:   in.Description,
		Date:          date,
		PaymentMethod: models.PaymentMethod(in.PaymentMethod),
		AttachmentURL: in.AttachmentURL,
		CategoryID:    in.CategoryID,
		UserID:        id.UserID,
		CreatedByID:   &id.UserID,
	}
	if err := s.store.Expenses.Create(qctx, &e); err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("create expense: %w", err))
	}
	s.invalidate(ctx, id.UserID)

	created, err := s.store.Expenses.FindByID(qctx, e.ID)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("reload expense: %w", err))
	}
	v := newExpenseView(created)
	return &v, nil
}

func (s *ExpenseService) Update(ctx context.Context, id *policy.Identity, expenseID uint, in UpdateExpenseInput) (*ExpenseView, error) {
	if id == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_by_id": id.UserID}
	if in.Amount != nil {
		amount, err := positiveAmount(in.Amount)
		if err != nil {
			return nil, err
		}
		fields["amount"] = amount
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Date != nil {
		date, err := util.ParseDateTime(strings.TrimSpace(*in.Date))
		if err != nil {
			return nil, apperr.Validation("date must be an ISO 8601 date or timestamp")
		}
		fields["date"] = date
	}
	if in.PaymentMethod != nil {
		fields["payment_method"] = *in.PaymentMethod
	}
	if in.AttachmentURL != nil {
		fields["attachment_url"] = *in.AttachmentURL
	}

	existing, err := s.owned(ctx, id, expenseID, policy.ExpenseUpdate)
	if err != nil {
		return nil, err
	}

	qctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if in.CategoryID != nil {
		if err := s.checkCategory(qctx, *in.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *in.CategoryID
	}

	if err := s.store.Expenses.Update(qctx, existing.ID, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Expense not found")
		}
		return nil, apperr.Unexpected(fmt.Errorf("update expense %d: %w", expenseID, err))
	}
	s.invalidate(ctx, existing.UserID)

	updated, err := s.store.Expenses.FindByID(qctx, existing.ID)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("reload expense: %w", err))
	}
	v := newExpenseView(updated)
	return &v, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id *policy.Identity, expenseID uint) error {
	existing, err := s.owned(ctx, id, expenseID, policy.ExpenseDelete)
	if err != nil {
		return err
	}

	qctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.Expenses.Delete(qctx, existing.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Expense not found")
		}
		return apperr.Unexpected(fmt.Errorf("delete expense %d: %w", expenseID, err))
	}
	s.invalidate(ctx, existing.UserID)
	return nil
}

// owned loads an expense and applies the ownership policy for action.
func (s *ExpenseService) owned(ctx context.Context, id *policy.Identity, expenseID uint, action policy.Action) (*models.Expense, error) {
	if id == nil {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	qctx, cancel := s.withTimeout(ctx)
	defer cancel()

	e, err := s.store.Expenses.FindByID(qctx, expenseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Expense not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("find expense %d: %w", expenseID, err))
	}
	if !policy.CanAccess(id, action, policy.Resource{OwnerID: e.UserID}) {
		return nil, apperr.NotFound("Expense not found")
	}
	return e, nil
}

func (s *ExpenseService) checkCategory(ctx context.Context, categoryID uint) error {
	_, err := s.store.Categories.FindByID(ctx, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.InvalidReference("Category not found")
	}
	if err != nil {
		return apperr.Unexpected(fmt.Errorf("find category %d: %w", categoryID, err))
	}
	return nil
}

// invalidate drops every cached list of the owner. Failures are logged only;
// the write has already been committed.
func (s *ExpenseService) invalidate(ctx context.Context, ownerID uint) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidationTimeout)
	defer cancel()

	prefix := ownerCachePrefix(ownerID)
	n, err := s.cache.DeleteMatching(ctx, prefix)
	if err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed",
			logging.FieldCacheKey, prefix, logging.FieldUserID, ownerID, logging.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "cache invalidated", logging.FieldCacheKey, prefix, logging.FieldCount, n)
}

func positiveAmount(d *decimal.Decimal) (float64, error) {
	if d == nil || !d.IsPositive() {
		return 0, apperr.Validation("amount must be a number greater than 0")
	}
	return d.InexactFloat64(), nil
}
