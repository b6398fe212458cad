package repository

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

// Repositories groups the gorm backed stores
type Repositories struct {
	Users    *UserRepository
	Settings *SettingsRepository
	Entries  *LogEntryRepository
	Alarms   *AlarmRepository
}

// New creates all repositories on top of one connection
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Settings: NewSettingsRepository(db),
		Entries:  NewLogEntryRepository(db),
		Alarms:   NewAlarmRepository(db),
	}
}

// translate converts gorm errors to application errors
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewConflictError(resource + " already exists")
	default:
		return apperrors.NewDatabaseError(err).WithContext("resource", resource)
	}
}
