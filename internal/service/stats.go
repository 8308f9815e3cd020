package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/store"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	unknownLabel   = "Unknown"
	recentLimit    = 10
	recentWindow   = 30 // days
	trendMonths    = 6
	trendLabelForm = "Jan 2006"
)

type DashboardQuery struct {
	StartDate  string
	EndDate    string
	CategoryID string
}

type CategoryBreakdown struct {
	CategoryID   uint    `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type DashboardStats struct {
	TotalExpenses     float64             `json:"totalExpenses"`
	CategoryBreakdown []CategoryBreakdown `json:"categoryBreakdown"`
	RecentExpenses    []ExpenseView       `json:"recentExpenses"`
	DateRange         DateRange           `json:"dateRange"`
}

type UserCounts struct {
	Total  int64 `json:"total"`
	Admins int64 `json:"admins"`
	Staff  int64 `json:"staff"`
	Recent int64 `json:"recent"`
}

type ExpenseTotals struct {
	Total       int64   `json:"total"`
	TotalAmount float64 `json:"totalAmount"`
	Recent      int64   `json:"recent"`
}

type UserExpenseStat struct {
	UserID       uint        `json:"userId"`
	UserName     string      `json:"userName"`
	UserEmail    string      `json:"userEmail,omitempty"`
	UserRole     models.Role `json:"userRole,omitempty"`
	ExpenseCount int64       `json:"expenseCount"`
	TotalAmount  float64     `json:"totalAmount"`
}

type CategoryStat struct {
	CategoryID   uint    `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	UsageCount   int64   `json:"usageCount"`
	TotalAmount  float64 `json:"totalAmount"`
}

type MonthlyTrend struct {
	Month string  `json:"month"`
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

type AdminStats struct {
	Users            UserCounts        `json:"users"`
	Expenses         ExpenseTotals     `json:"expenses"`
	UserExpenseStats []UserExpenseStat `json:"userExpenseStats"`
	CategoryStats    []CategoryStat    `json:"categoryStats"`
	MonthlyTrend     []MonthlyTrend    `json:"monthlyTrend"`
}

type StatsService struct {
	store  *store.Store
	logger *slog.Logger
	timeouts
	now func() time.Time
}

func NewStatsService(st *store.Store, opts Options, logger *slog.Logger) *StatsService {
	opts = opts.withDefaults()
	return &StatsService{
		store:    st,
		logger:   logging.WithComponent(logger, logging.ComponentStats),
		timeouts: timeouts{query: opts.QueryTimeout},
		now:      time.Now,
	}
}

// Dashboard aggregates the caller's expenses. A missing start defaults to the
// first day of the current month, a missing end to its last day.
func (s *StatsService) Dashboard(ctx context.Context, id *policy.Identity, q DashboardQuery) (*DashboardStats, error) {
	if err := authorize(id, policy.DashboardView, policy.Resource{}); err != nil {
		return nil, err
	}

	f, err := ExpenseQuery{StartDate: q.StartDate, EndDate: q.EndDate, CategoryID: q.CategoryID}.filter()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if f.From == nil {
		f.From = &monthStart
	}
	if f.To == nil {
		next := monthStart.AddDate(0, 1, 0)
		f.To = &next
	}
	f.UserID = &id.UserID

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		groups []store.GroupTotal
		recent []models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = s.store.Expenses.SumByCategory(gctx, f)
		return err
	})
	g.Go(func() error {
		rf := f
		rf.Limit = recentLimit
		var err error
		recent, err = s.store.Expenses.Find(gctx, rf)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("dashboard stats: %w", err))
	}

	names := s.categoryNames(ctx, groups)

	total := decimal.Zero
	breakdown := make([]CategoryBreakdown, 0, len(groups))
	for _, grp := range groups {
		sum := decimal.NewFromFloat(grp.Total).Round(2)
		total = total.Add(sum)
		breakdown = append(breakdown, CategoryBreakdown{
			CategoryID:   grp.GroupID,
			CategoryName: nameOr(names, grp.GroupID),
			Total:        money(sum),
			Count:        grp.Count,
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].CategoryID < breakdown[j].CategoryID
	})

	return &DashboardStats{
		TotalExpenses:     money(total),
		CategoryBreakdown: breakdown,
		RecentExpenses:    newExpenseViews(recent),
		DateRange: DateRange{
			Start: *f.From,
			End:   f.To.Add(-time.Millisecond),
		},
	}, nil
}

// Admin computes system-wide statistics over every owner. The queries run
// concurrently and are not wrapped in a transaction.
func (s *StatsService) Admin(ctx context.Context, id *policy.Identity) (*AdminStats, error) {
	if err := authorize(id, policy.AdminStats, policy.Resource{}); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	recentFrom := now.AddDate(0, 0, -recentWindow)
	trendFrom := time.Date(now.Year(), now.Month()-(trendMonths-1), 1, 0, 0, 0, 0, time.UTC)
	admin, staff := models.RoleAdmin, models.RoleStaff

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out        AdminStats
		totalSum   float64
		byUser     []store.GroupTotal
		byCategory []store.GroupTotal
		points     []store.ExpensePoint
	)

	users, expenses := s.store.Users, s.store.Expenses
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			*dst = n
			return err
		})
	}
	count(&out.Users.Total, func(c context.Context) (int64, error) { return users.Count(c, store.UserFilter{}) })
	count(&out.Users.Admins, func(c context.Context) (int64, error) { return users.Count(c, store.UserFilter{Role: &admin}) })
	count(&out.Users.Staff, func(c context.Context) (int64, error) { return users.Count(c, store.UserFilter{Role: &staff}) })
	count(&out.Users.Recent, func(c context.Context) (int64, error) {
		return users.Count(c, store.UserFilter{CreatedFrom: &recentFrom})
	})
	count(&out.Expenses.Total, func(c context.Context) (int64, error) { return expenses.Count(c, store.ExpenseFilter{}) })
	count(&out.Expenses.Recent, func(c context.Context) (int64, error) {
		return expenses.Count(c, store.ExpenseFilter{CreatedFrom: &recentFrom})
	})
	g.Go(func() error {
		var err error
		totalSum, err = expenses.Sum(gctx, store.ExpenseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		byUser, err = expenses.SumByUser(gctx, store.ExpenseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = expenses.SumByCategory(gctx, store.ExpenseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		points, err = expenses.PointsCreatedSince(gctx, trendFrom)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("admin stats: %w", err))
	}

	out.Expenses.TotalAmount = money(decimal.NewFromFloat(totalSum))
	out.UserExpenseStats = s.userStats(ctx, byUser)
	out.CategoryStats = s.categoryStats(ctx, byCategory)
	out.MonthlyTrend = monthlyTrend(points, trendFrom)
	return &out, nil
}

func (s *StatsService) userStats(ctx context.Context, groups []store.GroupTotal) []UserExpenseStat {
	ids := make([]uint, 0, len(groups))
	for _, grp := range groups {
		ids = append(ids, grp.GroupID)
	}
	found := map[uint]models.User{}
	users, err := s.store.Users.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve user names failed", logging.FieldError, err)
	}
	for _, u := range users {
		found[u.ID] = u
	}

	stats := make([]UserExpenseStat, 0, len(groups))
	for _, grp := range groups {
		st := UserExpenseStat{
			UserID:       grp.GroupID,
			UserName:     unknownLabel,
			ExpenseCount: grp.Count,
			TotalAmount:  money(decimal.NewFromFloat(grp.Total)),
		}
		if u, ok := found[grp.GroupID]; ok {
			st.UserName = u.DisplayName()
			st.UserEmail = u.Email
			st.UserRole = u.Role
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalAmount != stats[j].TotalAmount {
			return stats[i].TotalAmount > stats[j].TotalAmount
		}
		return stats[i].UserID < stats[j].UserID
	})
	return stats
}

func (s *StatsService) categoryStats(ctx context.Context, groups []store.GroupTotal) []CategoryStat {
	names := s.categoryNames(ctx, groups)

	stats := make([]CategoryStat, 0, len(groups))
	for _, grp := range groups {
		stats = append(stats, CategoryStat{
			CategoryID:   grp.GroupID,
			CategoryName: nameOr(names, grp.GroupID),
			UsageCount:   grp.Count,
			TotalAmount:  money(decimal.NewFromFloat(grp.Total)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].UsageCount != stats[j].UsageCount {
			return stats[i].UsageCount > stats[j].UsageCount
		}
		return stats[i].CategoryID < stats[j].CategoryID
	})
	return stats
}

// categoryNames resolves group ids to names. A lookup failure degrades to
// placeholder labels instead of failing the aggregation.
func (s *StatsService) categoryNames(ctx context.Context, groups []store.GroupTotal) map[uint]string {
	ids := make([]uint, 0, len(groups))
	for _, grp := range groups {
		ids = append(ids, grp.GroupID)
	}
	names := make(map[uint]string, len(ids))
	cats, err := s.store.Categories.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve category names failed", logging.FieldError, err)
		return names
	}
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}

func nameOr(names map[uint]string, id uint) string {
	if n, ok := names[id]; ok {
		return n
	}
	return unknownLabel
}

// monthlyTrend partitions points into trendMonths calendar-month buckets
// starting at from. Empty months are kept with zero values.
func monthlyTrend(points []store.ExpensePoint, from time.Time) []MonthlyTrend {
	sums := make([]decimal.Decimal, trendMonths)
	trend := make([]MonthlyTrend, trendMonths)
	for i := range trend {
		trend[i].Month = from.AddDate(0, i, 0).Format(trendLabelForm)
		sums[i] = decimal.Zero
	}

	for _, p := range points {
		at := p.CreatedAt.UTC()
		idx := (at.Year()-from.Year())*12 + int(at.Month()) - int(from.Month())
		if idx < 0 || idx >= trendMonths {
			continue
		}
		trend[idx].Count++
		sums[idx] = sums[idx].Add(decimal.NewFromFloat(p.Amount))
	}

	for i := range trend {
		trend[i].Total = money(sums[i])
	}
	return trend
}
