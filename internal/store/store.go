// Package store is the data access layer: typed find, count, group-and-sum,
// create, update and delete operations over users, categories and expenses.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("store: record not found")
	ErrDuplicate  = errors.New("store: duplicate key")
	ErrReferenced = errors.New("store: record is still referenced")
)

// ExpenseFilter narrows expense queries. Nil fields are ignored.
// From is inclusive and To exclusive, both on the business date.
type ExpenseFilter struct {
	UserID      *uint
	CategoryID  *uint
	From        *time.Time
	To          *time.Time
	CreatedFrom *time.Time
	Limit       int
}

type UserFilter struct {
	Role        *models.Role
	CreatedFrom *time.Time
}

// GroupTotal is one row of a group-and-sum query.
type GroupTotal struct {
	GroupID uint
	Count   int64
	Total   float64
}

// ExpensePoint is the minimal projection used for time series.
type ExpensePoint struct {
	Amount    float64
	CreatedAt time.Time
}

type Users interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context, f UserFilter) (int64, error)
}

type Categories interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type Expenses interface {
	// Find returns matching expenses with their relations loaded, newest business date first.
	Find(ctx context.Context, f ExpenseFilter) ([]models.Expense, error)
	FindByID(ctx context.Context, id uint) (*models.Expense, error)
	Count(ctx context.Context, f ExpenseFilter) (int64, error)
	Sum(ctx context.Context, f ExpenseFilter) (float64, error)
	SumByCategory(ctx context.Context, f ExpenseFilter) ([]GroupTotal, error)
	SumByUser(ctx context.Context, f ExpenseFilter) ([]GroupTotal, error)
	PointsCreatedSince(ctx context.Context, from time.Time) ([]ExpensePoint, error)
	Create(ctx context.Context, e *models.Expense) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

// Store bundles the three record stores.
type Store struct {
	Users      Users
	Categories Categories
	Expenses   Expenses
}

// New returns a Store backed by gorm.
func New(db *gorm.DB) *Store {
	return &Store{
		Users:      &userStore{db: db},
		Categories: &categoryStore{db: db},
		Expenses:   &expenseStore{db: db},
	}
}

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReferenced
	}
	return err
}
