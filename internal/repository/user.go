package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/diabetes-companion/internal/database"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func toDomainUser(u *database.User) *domain.User {
	user := &domain.User{
		ID:        u.ID,
		CreatedAt: u.CreatedAt,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Timezone:  u.Timezone,
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.TelegramID != nil {
		user.TelegramID = *u.TelegramID
	}
	return user
}

// CreateWithEmail creates an account for email sign-in
func (r *UserRepository) CreateWithEmail(ctx context.Context, email, passwordHash, timezone string) (*domain.User, error) {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&database.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, translate(err, "user")
	}
	if existing > 0 {
		return nil, apperrors.NewConflictError("user already exists")
	}

	user := database.User{
		Email:        &email,
		PasswordHash: passwordHash,
		Timezone:     timezone,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return toDomainUser(&user), nil
}

// GetByEmail returns the user and its password hash
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	var user database.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", translate(err, "user")
	}
	return toDomainUser(&user), user.PasswordHash, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user database.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return toDomainUser(&user), nil
}

// GetOrCreateByTelegramID gets an existing user or creates a new one
func (r *UserRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username, firstName, lastName, timezone string) (*domain.User, error) {
	var user database.User
	result := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user)
	if result.Error == nil {
		return toDomainUser(&user), nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, translate(result.Error, "user")
	}

	user = database.User{
		TelegramID: &telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Timezone:   timezone,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return toDomainUser(&user), nil
}

// SetTimezone updates the user's IANA time zone name
func (r *UserRepository) SetTimezone(ctx context.Context, id, timezone string) error {
	result := r.db.WithContext(ctx).Model(&database.User{}).Where("id = ?", id).Update("timezone", timezone)
	if result.Error != nil {
		return translate(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("user")
	}
	return nil
}
