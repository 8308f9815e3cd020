package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/store"
)

// UserListItem is a user row of the admin listing.
type UserListItem struct {
	UserView
	ExpenseCount int64 `json:"expenseCount"`
}

// AdminService lists records across all owners.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
	timeouts
}

func NewAdminService(st *store.Store, opts Options, logger *slog.Logger) *AdminService {
	opts = opts.withDefaults()
	return &AdminService{
		store:    st,
		logger:   logging.WithComponent(logger, logging.ComponentAdmin),
		timeouts: timeouts{query: opts.QueryTimeout},
	}
}

// Expenses lists expenses of every owner, optionally narrowed to one with q.UserID.
func (s *AdminService) Expenses(ctx context.Context, id *policy.Identity, q ExpenseQuery) ([]ExpenseView, error) {
	if err := authorize(id, policy.AdminExpenses, policy.Resource{}); err != nil {
		return nil, err
	}
	f, err := q.filter()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.store.Expenses.Find(ctx, f)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("admin list expenses: %w", err))
	}
	return newExpenseViews(rows), nil
}

// Users lists every account, newest first, with its expense count.
func (s *AdminService) Users(ctx context.Context, id *policy.Identity) ([]UserListItem, error) {
	if err := authorize(id, policy.AdminUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("list users: %w", err))
	}
	counts, err := s.store.Expenses.SumByUser(ctx, store.ExpenseFilter{})
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("count expenses per user: %w", err))
	}
	byUser := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byUser[c.GroupID] = c.Count
	}

	items := make([]UserListItem, 0, len(users))
	for i := range users {
		items = append(items, UserListItem{
			UserView:     newUserView(&users[i]),
			ExpenseCount: byUser[users[i].ID],
		})
	}
	s.logger.DebugContext(ctx, "users listed", logging.FieldCount, len(items))
	return items, nil
}
