package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/cache"
	"github.com/Bateyjosue/xenfi-systems/internal/config"
	"github.com/Bateyjosue/xenfi-systems/internal/database"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// brokenCache fails every call.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (brokenCache) DeleteMatching(context.Context, string) (int, error) { return 0, errCacheDown }

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	st    *store.Store
	mem   *cache.Memory
	now   time.Time
	admin *models.User
	staff *models.User
	food  *models.Category
	trips *models.Category

	expenses   *ExpenseService
	stats      *StatsService
	categories *CategoryService
	auth       *AuthService
	adminSvc   *AdminService
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(s.T().TempDir(), "service.db"),
	})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = database.Close(db) })
	s.Require().NoError(database.AutoMigrate(db))

	s.ctx = context.Background()
	s.st = store.New(db)
	s.mem = cache.NewMemory(100)
	s.now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	logger := logging.Discard()

	s.expenses = NewExpenseService(s.st, s.mem, Options{}, logger)
	s.expenses.now = func() time.Time { return s.now }
	s.stats = NewStatsService(s.st, Options{}, logger)
	s.stats.now = func() time.Time { return s.now }
	s.categories = NewCategoryService(s.st, Options{}, logger)
	s.auth = NewAuthService(s.st, AuthConfig{
		Secret:     "test-secret",
		Issuer:     "xenfi-test",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, Options{}, logger)
	s.adminSvc = NewAdminService(s.st, Options{}, logger)

	s.admin = &models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	s.staff = &models.User{Email: "staff@example.com", PasswordHash: "x", Role: models.RoleStaff}
	s.Require().NoError(s.st.Users.Create(s.ctx, s.admin))
	s.Require().NoError(s.st.Users.Create(s.ctx, s.staff))

	s.food = &models.Category{Name: "Food"}
	s.trips = &models.Category{Name: "Trips"}
	s.Require().NoError(s.st.Categories.Create(s.ctx, s.food))
	s.Require().NoError(s.st.Categories.Create(s.ctx, s.trips))
}

func identityOf(u *models.User) *policy.Identity {
	return &policy.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (s *ServiceSuite) create(owner *models.User, cat *models.Category, amount string, date string) *ExpenseView {
	d := decimal.RequireFromString(amount)
	v, err := s.expenses.Create(s.ctx, identityOf(owner), CreateExpenseInput{
		Amount:        &d,
		Date:          &date,
		PaymentMethod: string(models.PaymentCard),
		CategoryID:    cat.ID,
	})
	s.Require().NoError(err)
	return v
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *ServiceSuite) list(owner *models.User, q ExpenseQuery) []ExpenseView {
	raw, err := s.expenses.List(s.ctx, identityOf(owner), q)
	s.Require().NoError(err)
	var out []ExpenseView
	s.Require().NoError(json.Unmarshal(raw, &out))
	return out
}

func (s *ServiceSuite) requireKind(err error, kind apperr.Kind) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(kind, apperr.KindOf(err), "error: %v", err)
}

func (s *ServiceSuite) TestCreateAndGet() {
	desc := "team lunch"
	amount := decimal.RequireFromString("42.50")
	date := "2024-03-10"
	created, err := s.expenses.Create(s.ctx, identityOf(s.staff), CreateExpenseInput{
		Amount:        &amount,
		Description:   &desc,
		Date:          &date,
		PaymentMethod: "MOBILE_MONEY",
		CategoryID:    s.food.ID,
	})
	s.Require().NoError(err)
	s.Equal(42.5, created.Amount)
	s.Equal(s.staff.ID, created.UserID)
	s.Require().NotNil(created.CreatedByID)
	s.Equal(s.staff.ID, *created.CreatedByID)
	s.Require().NotNil(created.Category)
	s.Equal("Food", created.Category.Name)

	got, err := s.expenses.Get(s.ctx, identityOf(s.staff), created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got.Date.UTC())
	s.Require().NotNil(got.User)
	s.Equal(s.staff.Email, got.User.Email)
}

func (s *ServiceSuite) TestCreate_DefaultsDateToNow() {
	amount := decimal.NewFromInt(5)
	v, err := s.expenses.Create(s.ctx, identityOf(s.staff), CreateExpenseInput{
		Amount:        &amount,
		PaymentMethod: "CASH",
		CategoryID:    s.food.ID,
	})
	s.Require().NoError(err)
	s.True(v.Date.Equal(s.now))
}

func (s *ServiceSuite) TestCreate_Validation() {
	zero := decimal.Zero
	_, err := s.expenses.Create(s.ctx, identityOf(s.staff), CreateExpenseInput{
		Amount: &zero, PaymentMethod: "CASH", CategoryID: s.food.ID,
	})
	s.requireKind(err, apperr.KindValidation)

	one := decimal.NewFromInt(1)
	_, err = s.expenses.Create(s.ctx, identityOf(s.staff), CreateExpenseInput{
		Amount: &one, PaymentMethod: "CHEQUE", CategoryID: s.food.ID,
	})
	s.requireKind(err, apperr.KindValidation)

	bad := "15/03/2024"
	_, err = s.expenses.Create(s.ctx, identityOf(s.staff), CreateExpenseInput{
		Amount: &one, Date: &bad, PaymentMethod: "CASH", CategoryID: s.food.ID,
	})
	s.requireKind(err, apperr.KindValidation)

	_, err = s.expenses.Create(s.ctx, identityOf(s.staff), CreateExpenseInput{
		Amount: &one, PaymentMethod: "CASH", CategoryID: 9999,
	})
	s.requireKind(err, apperr.KindInvalidReference)

	_, err = s.expenses.Create(s.ctx, nil, CreateExpenseInput{
		Amount: &one, PaymentMethod: "CASH", CategoryID: s.food.ID,
	})
	s.requireKind(err, apperr.KindUnauthenticated)
}

func (s *ServiceSuite) TestCreate_MissingRequiredFields() {
	one := decimal.NewFromInt(1)
	for name, in := range map[string]CreateExpenseInput{
		"amount":        {PaymentMethod: "CASH", CategoryID: s.food.ID},
		"paymentMethod": {Amount: &one, CategoryID: s.food.ID},
		"categoryId":    {Amount: &one, PaymentMethod: "CASH"},
	} {
		_, err := s.expenses.Create(s.ctx, identityOf(s.staff), in)
		s.Require().Error(err, name)
		s.requireKind(err, apperr.KindValidation)
	}

	n, err := s.st.Expenses.Count(s.ctx, store.ExpenseFilter{})
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ServiceSuite) TestForeignExpenseIsNotFound() {
	v := s.create(s.staff, s.food, "10", "2024-03-01")

	_, err := s.expenses.Get(s.ctx, identityOf(s.admin), v.ID)
	s.requireKind(err, apperr.KindNotFound)

	amount := decimal.NewFromInt(99)
	_, err = s.expenses.Update(s.ctx, identityOf(s.admin), v.ID, UpdateExpenseInput{Amount: &amount})
	s.requireKind(err, apperr.KindNotFound)

	s.requireKind(s.expenses.Delete(s.ctx, identityOf(s.admin), v.ID), apperr.KindNotFound)
	s.requireKind(s.expenses.Delete(s.ctx, identityOf(s.staff), 424242), apperr.KindNotFound)

	_, err = s.expenses.Get(s.ctx, identityOf(s.staff), v.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestUpdate_PartialAndRecordsUpdater() {
	v := s.create(s.staff, s.food, "10", "2024-03-01")

	desc := "taxi to airport"
	_, err := s.expenses.Update(s.ctx, identityOf(s.staff), v.ID, UpdateExpenseInput{
		Description: &desc,
		CategoryID:  &s.trips.ID,
	})
	s.Require().NoError(err)

	got, err := s.expenses.Get(s.ctx, identityOf(s.staff), v.ID)
	s.Require().NoError(err)
	s.Equal(10.0, got.Amount)
	s.Require().NotNil(got.Description)
	s.Equal(desc, *got.Description)
	s.Equal(s.trips.ID, got.CategoryID)
	s.Require().NotNil(got.UpdatedByID)
	s.Equal(s.staff.ID, *got.UpdatedByID)
	s.Require().NotNil(got.UpdatedBy)

	missing := uint(9999)
	_, err = s.expenses.Update(s.ctx, identityOf(s.staff), v.ID, UpdateExpenseInput{CategoryID: &missing})
	s.requireKind(err, apperr.KindInvalidReference)

	negative := decimal.NewFromInt(-3)
	_, err = s.expenses.Update(s.ctx, identityOf(s.staff), v.ID, UpdateExpenseInput{Amount: &negative})
	s.requireKind(err, apperr.KindValidation)
}

func (s *ServiceSuite) TestList_FiltersAreInclusive() {
	s.create(s.staff, s.food, "1", "2024-03-01")
	s.create(s.staff, s.trips, "2", "2024-03-31T18:30:00Z")
	s.create(s.staff, s.food, "3", "2024-04-01")
	s.create(s.admin, s.food, "4", "2024-03-05")

	got := s.list(s.staff, ExpenseQuery{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	s.Require().Len(got, 2)
	s.Equal(2.0, got[0].Amount)
	s.Equal(1.0, got[1].Amount)

	got = s.list(s.staff, ExpenseQuery{CategoryID: itoa(s.food.ID)})
	s.Len(got, 2)

	_, err := s.expenses.List(s.ctx, identityOf(s.staff), ExpenseQuery{StartDate: "March"})
	s.requireKind(err, apperr.KindValidation)
}

func (s *ServiceSuite) TestList_EmptyIsArray() {
	raw, err := s.expenses.List(s.ctx, identityOf(s.staff), ExpenseQuery{})
	s.Require().NoError(err)
	s.JSONEq(`[]`, string(raw))
}

func (s *ServiceSuite) TestList_CachedUntilWrite() {
	s.create(s.staff, s.food, "10", "2024-03-01")

	s.Len(s.list(s.staff, ExpenseQuery{}), 1)
	s.Len(s.list(s.staff, ExpenseQuery{CategoryID: itoa(s.food.ID)}), 1)
	s.Equal(2, s.mem.Size())

	data, ok, err := s.mem.Get(s.ctx, ExpenseQuery{}.cacheKey(s.staff.ID))
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Contains(string(data), `"amount":10`)

	// another owner's entries survive
	s.Len(s.list(s.admin, ExpenseQuery{}), 0)
	s.Equal(3, s.mem.Size())

	v := s.create(s.staff, s.trips, "20", "2024-03-02")
	s.Equal(1, s.mem.Size())
	s.Len(s.list(s.staff, ExpenseQuery{}), 2)

	amount := decimal.NewFromInt(25)
	_, err = s.expenses.Update(s.ctx, identityOf(s.staff), v.ID, UpdateExpenseInput{Amount: &amount})
	s.Require().NoError(err)
	got := s.list(s.staff, ExpenseQuery{})
	s.Equal(25.0, got[0].Amount)

	s.Require().NoError(s.expenses.Delete(s.ctx, identityOf(s.staff), v.ID))
	s.Len(s.list(s.staff, ExpenseQuery{}), 1)
}

func (s *ServiceSuite) TestList_CacheFailureFallsThrough() {
	svc := NewExpenseService(s.st, brokenCache{}, Options{}, logging.Discard())
	amount := decimal.NewFromInt(7)
	_, err := svc.Create(s.ctx, identityOf(s.staff), CreateExpenseInput{
		Amount: &amount, PaymentMethod: "CASH", CategoryID: s.food.ID,
	})
	s.Require().NoError(err)

	raw, err := svc.List(s.ctx, identityOf(s.staff), ExpenseQuery{})
	s.Require().NoError(err)
	var out []ExpenseView
	s.Require().NoError(json.Unmarshal(raw, &out))
	s.Len(out, 1)
}

func (s *ServiceSuite) TestDashboard_CurrentMonth() {
	s.create(s.staff, s.food, "150", "2024-03-02")
	s.create(s.staff, s.food, "250", "2024-03-10")
	s.create(s.staff, s.trips, "500", "2024-03-20")
	s.create(s.staff, s.trips, "999", "2024-02-28")
	s.create(s.admin, s.food, "77", "2024-03-05")

	got, err := s.stats.Dashboard(s.ctx, identityOf(s.staff), DashboardQuery{})
	s.Require().NoError(err)

	s.Equal(900.0, got.TotalExpenses)
	s.Require().Len(got.CategoryBreakdown, 2)
	s.Equal(CategoryBreakdown{CategoryID: s.trips.ID, CategoryName: "Trips", Total: 500, Count: 1}, got.CategoryBreakdown[0])
	s.Equal(CategoryBreakdown{CategoryID: s.food.ID, CategoryName: "Food", Total: 400, Count: 2}, got.CategoryBreakdown[1])
	s.Len(got.RecentExpenses, 3)
	s.Equal(500.0, got.RecentExpenses[0].Amount)
	s.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got.DateRange.Start)
	s.Equal(time.Date(2024, 3, 31, 23, 59, 59, 999_000_000, time.UTC), got.DateRange.End)
}

func (s *ServiceSuite) TestDashboard_ExplicitRangeAndEmpty() {
	s.create(s.staff, s.trips, "999.99", "2024-02-28")

	got, err := s.stats.Dashboard(s.ctx, identityOf(s.staff), DashboardQuery{StartDate: "2024-02-01", EndDate: "2024-02-29"})
	s.Require().NoError(err)
	s.Equal(999.99, got.TotalExpenses)

	got, err = s.stats.Dashboard(s.ctx, identityOf(s.admin), DashboardQuery{})
	s.Require().NoError(err)
	s.Zero(got.TotalExpenses)
	s.NotNil(got.CategoryBreakdown)
	s.Empty(got.CategoryBreakdown)
	s.NotNil(got.RecentExpenses)
}

func (s *ServiceSuite) TestAdminStats() {
	s.stats.now = time.Now
	s.create(s.staff, s.food, "150", "2024-03-02")
	s.create(s.staff, s.food, "250", "2024-03-10")
	s.create(s.admin, s.trips, "500", "2024-03-20")

	got, err := s.stats.Admin(s.ctx, identityOf(s.admin))
	s.Require().NoError(err)

	s.Equal(UserCounts{Total: 2, Admins: 1, Staff: 1, Recent: 2}, got.Users)
	s.Equal(ExpenseTotals{Total: 3, TotalAmount: 900, Recent: 3}, got.Expenses)

	s.Require().Len(got.UserExpenseStats, 2)
	s.Equal(s.admin.ID, got.UserExpenseStats[0].UserID)
	s.Equal(500.0, got.UserExpenseStats[0].TotalAmount)
	s.Equal(s.admin.Email, got.UserExpenseStats[0].UserName)
	s.Equal(models.RoleAdmin, got.UserExpenseStats[0].UserRole)
	s.Equal(int64(2), got.UserExpenseStats[1].ExpenseCount)
	s.Equal(400.0, got.UserExpenseStats[1].TotalAmount)

	s.Require().Len(got.CategoryStats, 2)
	s.Equal("Food", got.CategoryStats[0].CategoryName)
	s.Equal(int64(2), got.CategoryStats[0].UsageCount)

	s.Require().Len(got.MonthlyTrend, trendMonths)
	var count int64
	var total float64
	for _, m := range got.MonthlyTrend {
		count += m.Count
		total += m.Total
	}
	s.Equal(int64(3), count)
	s.Equal(900.0, total)
}

func (s *ServiceSuite) TestAdminStats_RequiresAdmin() {
	_, err := s.stats.Admin(s.ctx, identityOf(s.staff))
	s.requireKind(err, apperr.KindForbidden)

	_, err = s.stats.Admin(s.ctx, nil)
	s.requireKind(err, apperr.KindUnauthenticated)
}

func (s *ServiceSuite) TestCategories() {
	list, err := s.categories.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(list, 2)

	_, err = s.categories.Create(s.ctx, identityOf(s.admin), CategoryInput{Name: "  Food "})
	s.requireKind(err, apperr.KindConflict)

	_, err = s.categories.Create(s.ctx, identityOf(s.admin), CategoryInput{Name: "   "})
	s.requireKind(err, apperr.KindValidation)

	_, err = s.categories.Create(s.ctx, identityOf(s.staff), CategoryInput{Name: "Fuel"})
	s.requireKind(err, apperr.KindForbidden)

	fuel, err := s.categories.Create(s.ctx, identityOf(s.admin), CategoryInput{Name: "Fuel"})
	s.Require().NoError(err)

	lower, err := s.categories.Create(s.ctx, identityOf(s.admin), CategoryInput{Name: "food"})
	s.Require().NoError(err)
	s.NotEqual(s.food.ID, lower.ID)

	renamed := "Trips"
	_, err = s.categories.Update(s.ctx, identityOf(s.admin), fuel.ID, UpdateCategoryInput{Name: &renamed})
	s.requireKind(err, apperr.KindConflict)

	got, err := s.categories.Get(s.ctx, nil, fuel.ID)
	s.Require().NoError(err)
	s.Equal("Fuel", got.Name)
	got, err = s.categories.Get(s.ctx, nil, s.food.ID)
	s.Require().NoError(err)
	s.Equal("Food", got.Name)

	renamed = "Fuel & Gas"
	updated, err := s.categories.Update(s.ctx, identityOf(s.admin), fuel.ID, UpdateCategoryInput{Name: &renamed})
	s.Require().NoError(err)
	s.Equal("Fuel & Gas", updated.Name)

	s.create(s.staff, s.food, "10", "2024-03-01")
	s.requireKind(s.categories.Delete(s.ctx, identityOf(s.admin), s.food.ID), apperr.KindConflict)
	s.requireKind(s.categories.Delete(s.ctx, identityOf(s.admin), 9999), apperr.KindNotFound)
	s.Require().NoError(s.categories.Delete(s.ctx, identityOf(s.admin), fuel.ID))

	_, err = s.categories.Get(s.ctx, nil, fuel.ID)
	s.requireKind(err, apperr.KindNotFound)
}

func (s *ServiceSuite) TestUserExpenseStat_UnknownUserOmitsIdentity() {
	raw, err := json.Marshal(UserExpenseStat{UserID: 9, UserName: "Unknown"})
	s.Require().NoError(err)
	var fields map[string]any
	s.Require().NoError(json.Unmarshal(raw, &fields))
	s.Equal("Unknown", fields["userName"])
	s.NotContains(fields, "userEmail")
	s.NotContains(fields, "userRole")

	raw, err = json.Marshal(UserExpenseStat{UserID: 1, UserName: "A", UserEmail: "a@x.io", UserRole: models.RoleAdmin})
	s.Require().NoError(err)
	s.Contains(string(raw), `"userEmail":"a@x.io"`)
	s.Contains(string(raw), `"userRole":"ADMIN"`)
}

func (s *ServiceSuite) TestAuth_RegisterLoginAuthenticate() {
	name := "New Person"
	res, err := s.auth.Register(s.ctx, RegisterInput{Email: " New@Example.com ", Password: "secret1", Name: &name})
	s.Require().NoError(err)
	s.Equal("new@example.com", res.User.Email)
	s.Equal(models.RoleStaff, res.User.Role)
	s.NotEmpty(res.Token)

	_, err = s.auth.Register(s.ctx, RegisterInput{Email: "new@example.com", Password: "secret1"})
	s.requireKind(err, apperr.KindConflict)

	_, err = s.auth.Register(s.ctx, RegisterInput{Email: "short@example.com", Password: "123"})
	s.requireKind(err, apperr.KindValidation)

	_, err = s.auth.Login(s.ctx, LoginInput{Email: "new@example.com", Password: "wrong"})
	s.requireKind(err, apperr.KindUnauthenticated)
	_, err = s.auth.Login(s.ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	s.requireKind(err, apperr.KindUnauthenticated)

	login, err := s.auth.Login(s.ctx, LoginInput{Email: "NEW@example.com", Password: "secret1"})
	s.Require().NoError(err)

	id, err := s.auth.Authenticate(login.Token)
	s.Require().NoError(err)
	s.Equal(res.User.ID, id.UserID)
	s.Equal(models.RoleStaff, id.Role)

	me, err := s.auth.Me(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("new@example.com", me.Email)

	_, err = s.auth.Authenticate("not-a-token")
	s.requireKind(err, apperr.KindUnauthenticated)
	_, err = s.auth.Authenticate("")
	s.requireKind(err, apperr.KindUnauthenticated)
}

func (s *ServiceSuite) TestAdminListings() {
	s.create(s.staff, s.food, "10", "2024-03-01")
	s.create(s.staff, s.food, "20", "2024-03-02")
	s.create(s.admin, s.trips, "30", "2024-03-03")

	all, err := s.adminSvc.Expenses(s.ctx, identityOf(s.admin), ExpenseQuery{})
	s.Require().NoError(err)
	s.Len(all, 3)

	mine, err := s.adminSvc.Expenses(s.ctx, identityOf(s.admin), ExpenseQuery{UserID: itoa(s.staff.ID)})
	s.Require().NoError(err)
	s.Len(mine, 2)

	_, err = s.adminSvc.Expenses(s.ctx, identityOf(s.staff), ExpenseQuery{})
	s.requireKind(err, apperr.KindForbidden)

	users, err := s.adminSvc.Users(s.ctx, identityOf(s.admin))
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	counts := map[uint]int64{}
	for _, u := range users {
		counts[u.ID] = u.ExpenseCount
	}
	s.Equal(int64(2), counts[s.staff.ID])
	s.Equal(int64(1), counts[s.admin.ID])
}

func TestMonthlyTrend_Buckets(t *testing.T) {
	from := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)
	points := []store.ExpensePoint{
		{Amount: 10, CreatedAt: time.Date(2023, time.September, 30, 23, 0, 0, 0, time.UTC)},
		{Amount: 1.1, CreatedAt: time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: 2.2, CreatedAt: time.Date(2023, time.October, 31, 0, 0, 0, 0, time.UTC)},
		{Amount: 5, CreatedAt: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{Amount: 7, CreatedAt: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{Amount: 9, CreatedAt: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := monthlyTrend(points, from)
	want := []MonthlyTrend{
		{Month: "Oct 2023", Count: 2, Total: 3.3},
		{Month: "Nov 2023"},
		{Month: "Dec 2023"},
		{Month: "Jan 2024", Count: 1, Total: 5},
		{Month: "Feb 2024"},
		{Month: "Mar 2024", Count: 1, Total: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExpenseQuery_CacheKey(t *testing.T) {
	a := ExpenseQuery{StartDate: "2024-01-01", CategoryID: "3"}.cacheKey(7)
	b := ExpenseQuery{StartDate: "2024-01-01"}.cacheKey(7)
	c := ExpenseQuery{StartDate: "2024-01-01", CategoryID: "3"}.cacheKey(8)

	if a == b || a == c {
		t.Fatalf("keys collide: %q %q %q", a, b, c)
	}
	if a != "expenses:7:categoryId=3&startDate=2024-01-01" {
		t.Errorf("unexpected key %q", a)
	}
	if got := (ExpenseQuery{}).cacheKey(7); got != "expenses:7:" {
		t.Errorf("empty query key = %q", got)
	}
}
