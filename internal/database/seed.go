package database

import (
	"context"
	"fmt"

	"github.com/Bateyjosue/xenfi-systems/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	password string
	name     string
	role     models.Role
}

var seedUsers = []seedUser{
	{"admin@xenfi.com", "admin123", "Admin User", models.RoleAdmin},
	{"staff@xenfi.com", "staff123", "Staff User", models.RoleStaff},
}

var seedCategories = []struct {
	name        string
	description string
}{
	{"Office Supplies", "Stationery, paper, pens, etc."},
	{"Travel", "Transportation, accommodation, meals"},
	{"Meals", "Business meals and entertainment"},
	{"Utilities", "Electricity, water, internet"},
	{"Software", "Software licenses and subscriptions"},
}

// Seed inserts the demo accounts and the default categories. Existing rows
// (matched by email or name) are left untouched, so it is safe to run on every start.
func Seed(ctx context.Context, db *gorm.DB, bcryptCost int) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, su := range seedUsers {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ?", su.email).Count(&count).Error; err != nil {
				return fmt.Errorf("check user %s: %w", su.email, err)
			}
			if count > 0 {
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			name := su.name
			user := models.User{
				Email:        su.email,
				PasswordHash: string(hash),
				Name:         &name,
				Role:         su.role,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user %s: %w", su.email, err)
			}
		}

		for _, sc := range seedCategories {
			desc := sc.description
			cat := models.Category{Name: sc.name, Description: &desc}
			if err := tx.Where(models.Category{Name: sc.name}).FirstOrCreate(&cat).Error; err != nil {
				return fmt.Errorf("create category %s: %w", sc.name, err)
			}
		}
		return nil
	})
}
