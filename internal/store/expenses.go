package store

import (
	"context"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/models"

	"gorm.io/gorm"
)

type expenseStore struct {
	db *gorm.DB
}

func (s *expenseStore) filtered(ctx context.Context, f ExpenseFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Expense{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date < ?", *f.To)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	return q
}

func withRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Category").Preload("User").Preload("CreatedBy").Preload("UpdatedBy")
}

func (s *expenseStore) Find(ctx context.Context, f ExpenseFilter) ([]models.Expense, error) {
	q := withRelations(s.filtered(ctx, f)).Order("date DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []models.Expense
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *expenseStore) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	var e models.Expense
	if err := withRelations(s.db.WithContext(ctx)).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *expenseStore) Count(ctx context.Context, f ExpenseFilter) (int64, error) {
	var n int64
	err := s.filtered(ctx, f).Count(&n).Error
	return n, err
}

// Sum is zero when nothing matches.
func (s *expenseStore) Sum(ctx context.Context, f ExpenseFilter) (float64, error) {
	var total float64
	err := s.filtered(ctx, f).Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

func (s *expenseStore) SumByCategory(ctx context.Context, f ExpenseFilter) ([]GroupTotal, error) {
	return s.groupBy(ctx, f, "category_id")
}

func (s *expenseStore) SumByUser(ctx context.Context, f ExpenseFilter) ([]GroupTotal, error) {
	return s.groupBy(ctx, f, "user_id")
}

func (s *expenseStore) groupBy(ctx context.Context, f ExpenseFilter, column string) ([]GroupTotal, error) {
	rows := make([]GroupTotal, 0)
	err := s.filtered(ctx, f).
		Select(column + " AS group_id, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *expenseStore) PointsCreatedSince(ctx context.Context, from time.Time) ([]ExpensePoint, error) {
	points := make([]ExpensePoint, 0)
	err := s.db.WithContext(ctx).Model(&models.Expense{}).
		Select("amount, created_at").
		Where("created_at >= ?", from).
		Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (s *expenseStore) Create(ctx context.Context, e *models.Expense) error {
	return translate(s.db.WithContext(ctx).Omit("Category", "User", "CreatedBy", "UpdatedBy").Create(e).Error)
}

// Update changes only the given columns.
func (s *expenseStore) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.Expense{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *expenseStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Expense{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
