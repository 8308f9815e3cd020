// Package service implements the business operations behind the HTTP API:
// owner-scoped expenses with a cached list, personal and system-wide
// statistics, categories, authentication and admin listings.
package service

import (
	"context"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"

	"github.com/shopspring/decimal"
)

// DefaultQueryTimeout bounds each storage call when Options leaves it unset.
const DefaultQueryTimeout = 5 * time.Second

// DefaultCacheTTL is how long a cached expense list lives.
const DefaultCacheTTL = time.Hour

type Options struct {
	QueryTimeout time.Duration
	CacheTTL     time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = DefaultQueryTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	return o
}

type timeouts struct {
	query time.Duration
}

func (t timeouts) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.query)
}

// authorize applies the access policy: anonymous callers are
// Unauthenticated, known callers without the right are Forbidden.
func authorize(id *policy.Identity, action policy.Action, res policy.Resource) error {
	if policy.CanAccess(id, action, res) {
		return nil
	}
	if id == nil {
		return apperr.Unauthenticated("Authentication required")
	}
	return apperr.Forbidden("Insufficient permissions")
}

// UserSummary is the abbreviated identity attached to expenses.
type UserSummary struct {
	ID    uint    `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// UserView is a user as returned to clients, never including the hash.
type UserView struct {
	ID        uint        `json:"id"`
	Email     string      `json:"email"`
	Name      *string     `json:"name"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type ExpenseView struct {
	ID            uint                 `json:"id"`
	Amount        float64              `json:"amount"`
	Description   *string              `json:"description"`
	Date          time.Time            `json:"date"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	AttachmentURL *string              `json:"attachmentUrl"`
	CategoryID    uint                 `json:"categoryId"`
	UserID        uint                 `json:"userId"`
	CreatedByID   *uint                `json:"createdById"`
	UpdatedByID   *uint                `json:"updatedById"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	Category      *models.Category     `json:"category"`
	User          *UserSummary         `json:"user"`
	CreatedBy     *UserSummary         `json:"createdBy"`
	UpdatedBy     *UserSummary         `json:"updatedBy"`
}

func newUserView(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func newUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}

func newExpenseView(e *models.Expense) ExpenseView {
	return ExpenseView{
		ID:            e.ID,
		Amount:        e.Amount,
		Description:   e.Description,
		Date:          e.Date,
		PaymentMethod: e.PaymentMethod,
		AttachmentURL: e.AttachmentURL,
		CategoryID:    e.CategoryID,
		UserID:        e.UserID,
		CreatedByID:   e.CreatedByID,
		UpdatedByID:   e.UpdatedByID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Category:      e.Category,
		User:          newUserSummary(e.User),
		CreatedBy:     newUserSummary(e.CreatedBy),
		UpdatedBy:     newUserSummary(e.UpdatedBy),
	}
}

func newExpenseViews(rows []models.Expense) []ExpenseView {
	views := make([]ExpenseView, 0, len(rows))
	for i := range rows {
		views = append(views, newExpenseView(&rows[i]))
	}
	return views
}

// money rounds a float sum to cents.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
