package store

import (
	"context"

	"github.com/Bateyjosue/xenfi-systems/internal/models"

	"gorm.io/gorm"
)

type categoryStore struct {
	db *gorm.DB
}

func (s *categoryStore) List(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *categoryStore) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindByName matches the name exactly, case included.
func (s *categoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *categoryStore) FindByIDs(ctx context.Context, ids []uint) ([]models.Category, error) {
	cats := make([]models.Category, 0, len(ids))
	if len(ids) == 0 {
		return cats, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *categoryStore) Create(ctx context.Context, c *models.Category) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *categoryStore) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *categoryStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
