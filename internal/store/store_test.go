package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/config"
	"github.com/Bateyjosue/xenfi-systems/internal/database"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/store"

	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	st    *store.Store
	alice *models.User
	bob   *models.User
	food  *models.Category
	taxi  *models.Category
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(s.T().TempDir(), "store.db"),
	})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = database.Close(db) })
	s.Require().NoError(database.AutoMigrate(db))

	s.ctx = context.Background()
	s.st = store.New(db)

	s.alice = &models.User{Email: "alice@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	s.bob = &models.User{Email: "bob@example.com", PasswordHash: "x", Role: models.RoleStaff}
	s.Require().NoError(s.st.Users.Create(s.ctx, s.alice))
	s.Require().NoError(s.st.Users.Create(s.ctx, s.bob))

	s.food = &models.Category{Name: "Food"}
	s.taxi = &models.Category{Name: "Taxi"}
	s.Require().NoError(s.st.Categories.Create(s.ctx, s.food))
	s.Require().NoError(s.st.Categories.Create(s.ctx, s.taxi))
}

func (s *StoreSuite) addExpense(owner *models.User, cat *models.Category, amount float64, date time.Time) *models.Expense {
	e := &models.Expense{
		Amount:        amount,
		Date:          date,
		PaymentMethod: models.PaymentCash,
		CategoryID:    cat.ID,
		UserID:        owner.ID,
		CreatedByID:   &owner.ID,
	}
	s.Require().NoError(s.st.Expenses.Create(s.ctx, e))
	return e
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *StoreSuite) TestFind_FiltersAndOrdering() {
	s.addExpense(s.alice, s.food, 10, day(2024, 1, 10))
	s.addExpense(s.alice, s.taxi, 20, day(2024, 1, 20))
	s.addExpense(s.alice, s.food, 30, day(2024, 2, 5))
	s.addExpense(s.bob, s.food, 40, day(2024, 1, 15))

	from, to := day(2024, 1, 1), day(2024, 2, 1)
	rows, err := s.st.Expenses.Find(s.ctx, store.ExpenseFilter{UserID: &s.alice.ID, From: &from, To: &to})
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(20.0, rows[0].Amount)
	s.Equal(10.0, rows[1].Amount)
	s.Require().NotNil(rows[0].Category)
	s.Equal("Taxi", rows[0].Category.Name)
	s.Require().NotNil(rows[0].User)
	s.Equal(s.alice.Email, rows[0].User.Email)
	s.Require().NotNil(rows[0].CreatedBy)
	s.Nil(rows[0].UpdatedBy)

	rows, err = s.st.Expenses.Find(s.ctx, store.ExpenseFilter{CategoryID: &s.food.ID, Limit: 2})
	s.Require().NoError(err)
	s.Len(rows, 2)
	s.Equal(30.0, rows[0].Amount)
}

func (s *StoreSuite) TestAggregates() {
	s.addExpense(s.alice, s.food, 150, day(2024, 3, 1))
	s.addExpense(s.alice, s.food, 250, day(2024, 3, 2))
	s.addExpense(s.bob, s.taxi, 500, day(2024, 3, 3))

	total, err := s.st.Expenses.Sum(s.ctx, store.ExpenseFilter{})
	s.Require().NoError(err)
	s.InDelta(900.0, total, 0.001)

	n, err := s.st.Expenses.Count(s.ctx, store.ExpenseFilter{UserID: &s.alice.ID})
	s.Require().NoError(err)
	s.EqualValues(2, n)

	byCat, err := s.st.Expenses.SumByCategory(s.ctx, store.ExpenseFilter{})
	s.Require().NoError(err)
	s.Len(byCat, 2)
	got := map[uint]store.GroupTotal{}
	for _, g := range byCat {
		got[g.GroupID] = g
	}
	s.EqualValues(2, got[s.food.ID].Count)
	s.InDelta(400.0, got[s.food.ID].Total, 0.001)
	s.InDelta(500.0, got[s.taxi.ID].Total, 0.001)

	byUser, err := s.st.Expenses.SumByUser(s.ctx, store.ExpenseFilter{})
	s.Require().NoError(err)
	s.Len(byUser, 2)

	points, err := s.st.Expenses.PointsCreatedSince(s.ctx, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Len(points, 3)
}

func (s *StoreSuite) TestSum_EmptyIsZero() {
	total, err := s.st.Expenses.Sum(s.ctx, store.ExpenseFilter{UserID: &s.bob.ID})
	s.Require().NoError(err)
	s.Zero(total)

	groups, err := s.st.Expenses.SumByCategory(s.ctx, store.ExpenseFilter{UserID: &s.bob.ID})
	s.Require().NoError(err)
	s.Empty(groups)
}

func (s *StoreSuite) TestUpdateAndDelete() {
	e := s.addExpense(s.alice, s.food, 10, day(2024, 1, 1))

	s.Require().NoError(s.st.Expenses.Update(s.ctx, e.ID, map[string]any{"amount": 12.5}))
	got, err := s.st.Expenses.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(12.5, got.Amount)
	s.Equal(s.food.ID, got.CategoryID)

	s.Require().NoError(s.st.Expenses.Delete(s.ctx, e.ID))
	_, err = s.st.Expenses.FindByID(s.ctx, e.ID)
	s.ErrorIs(err, store.ErrNotFound)
	s.ErrorIs(s.st.Expenses.Delete(s.ctx, e.ID), store.ErrNotFound)
	s.ErrorIs(s.st.Expenses.Update(s.ctx, e.ID, map[string]any{"amount": 1.0}), store.ErrNotFound)
}

func (s *StoreSuite) TestCategoryNameIsUnique() {
	err := s.st.Categories.Create(s.ctx, &models.Category{Name: "Food"})
	s.ErrorIs(err, store.ErrDuplicate)

	s.NoError(s.st.Categories.Create(s.ctx, &models.Category{Name: "food"}))

	_, err = s.st.Categories.FindByName(s.ctx, "FOOD")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *StoreSuite) TestUsers() {
	admin := models.RoleAdmin
	n, err := s.st.Users.Count(s.ctx, store.UserFilter{Role: &admin})
	s.Require().NoError(err)
	s.EqualValues(1, n)

	u, err := s.st.Users.FindByEmail(s.ctx, "bob@example.com")
	s.Require().NoError(err)
	s.Equal(s.bob.ID, u.ID)

	_, err = s.st.Users.FindByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, store.ErrNotFound)

	users, err := s.st.Users.FindByIDs(s.ctx, []uint{s.alice.ID, 9999})
	s.Require().NoError(err)
	s.Len(users, 1)

	all, err := s.st.Users.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}
