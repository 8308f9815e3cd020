package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/policy"
	"github.com/Bateyjosue/xenfi-systems/internal/store"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Name     *string `json:"name" validate:"omitempty,max=128"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type AuthConfig struct {
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

type AuthService struct {
	users  store.Users
	cfg    AuthConfig
	logger *slog.Logger
	timeouts
}

func NewAuthService(st *store.Store, cfg AuthConfig, opts Options, logger *slog.Logger) *AuthService {
	opts = opts.withDefaults()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:    st.Users,
		cfg:      cfg,
		logger:   logging.WithComponent(logger, logging.ComponentAuth),
		timeouts: timeouts{query: opts.QueryTimeout},
	}
}

// Register creates a STAFF account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.CreateUser(ctx, in.Email, in.Password, in.Name, models.RoleStaff)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// CreateUser stores a new account with the given role.
func (s *AuthService) CreateUser(ctx context.Context, email, password string, name *string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("role must be %s or %s", models.RoleAdmin, models.RoleStaff))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("hash password: %w", err))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	email = normalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unexpected(fmt.Errorf("find user: %w", err))
	}

	u := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Unexpected(fmt.Errorf("create user: %w", err))
	}
	s.logger.InfoContext(ctx, "user created", logging.FieldUserID, u.ID, "role", u.Role)
	return &u, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("find user: %w", err))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	return s.issue(u)
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, id *policy.Identity) (*UserView, error) {
	if err := authorize(id, policy.SelfView, policy.Resource{}); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.users.FindByID(ctx, id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("find user: %w", err))
	}
	v := newUserView(u)
	return &v, nil
}

// Authenticate resolves a session token to the caller's identity. The token
// is trusted as issued; no storage lookup happens.
func (s *AuthService) Authenticate(token string) (*policy.Identity, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	claims, err := util.ParseToken(s.cfg.Secret, token)
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid or expired token")
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, apperr.Unauthenticated("Invalid or expired token")
	}
	return &policy.Identity{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}

// TokenTTL is how long an issued session stays valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := util.GenerateToken(s.cfg.Secret, s.cfg.Issuer, util.TokenSubject{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	}, s.cfg.TokenTTL)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("sign token: %w", err))
	}
	return &AuthResult{Token: token, User: newUserView(u)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
