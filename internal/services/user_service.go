package services

import (
	"context"
	"strings"
	"time"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

type UserService struct {
	users           domain.UserStore
	defaultTimezone string
}

func NewUserService(users domain.UserStore, defaultTimezone string) *UserService {
	return &UserService{users: users, defaultTimezone: defaultTimezone}
}

// RegisterUser returns the account linked to a Telegram user, creating it on first contact
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.User, error) {
	user, err := s.users.GetOrCreateByTelegramID(ctx, telegramID, username, firstName, lastName, s.defaultTimezone)
	if err != nil {
		return nil, err
	}
	logger.Debug("User registered", "user_id", user.ID, "telegram_id", telegramID)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// SetTimezone validates an IANA zone name and stores it for the user
func (s *UserService) SetTimezone(ctx context.Context, userID, timezone string) error {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		return apperrors.NewValidationError("timezone is required")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return apperrors.NewValidationError("unknown timezone").WithContext("timezone", timezone)
	}
	return s.users.SetTimezone(ctx, userID, timezone)
}
