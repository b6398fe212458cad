package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/vladimiradmaev/diabetes-companion/internal/auth"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// Session is the result of a successful sign-in
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"-"`
}

// IdentityService authenticates API users by email and password
type IdentityService struct {
	users           domain.UserStore
	tokens          *auth.TokenService
	bcryptCost      int
	defaultTimezone string

	dummyOnce sync.Once
	dummy     string
}

func NewIdentityService(users domain.UserStore, tokens *auth.TokenService, bcryptCost int, defaultTimezone string) *IdentityService {
	return &IdentityService{
		users:           users,
		tokens:          tokens,
		bcryptCost:      bcryptCost,
		defaultTimezone: defaultTimezone,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("invalid email address")
	}
	return email, nil
}

func (s *IdentityService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateWithEmail(ctx, email, hash, s.defaultTimezone)
	if err != nil {
		return nil, err
	}
	logger.Info("User signed up", "user_id", user.ID)
	return s.newSession(user)
}

// dummyHash is compared against when the email is unknown, so a failed
// sign-in costs one bcrypt comparison either way.
func (s *IdentityService) dummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("no-such-user-password", s.bcryptCost)
		if err != nil {
			logger.Error("Failed to prepare dummy password hash", "error", err)
			return
		}
		s.dummy = hash
	})
	return s.dummy
}

func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	invalid := apperrors.NewPermissionError("invalid email or password")

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, invalid
	}
	user, hash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_, _ = auth.CheckPassword(s.dummyHash(), password)
			return nil, invalid
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(hash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn("Invalid password attempt", "user_id", user.ID)
		return nil, invalid
	}
	return s.newSession(user)
}

// SignOut revokes the token so it can no longer be used
func (s *IdentityService) SignOut(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// CurrentUser returns the user a token was issued to
func (s *IdentityService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewPermissionError("invalid or expired token")
		}
		return nil, err
	}
	return user, nil
}

func (s *IdentityService) newSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
