package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything longer
)

// ValidatePassword checks the length rules for a new password
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError("password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return apperrors.NewValidationError("password must be at most 72 characters")
	}
	return nil
}

// HashPassword validates and hashes a password with the given bcrypt cost.
// A cost of 0 selects bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return string(hashedBytes), nil
}

// CheckPassword reports whether password matches the hash
func CheckPassword(hashedPassword, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperrors.NewInternalError(err)
	}
}
