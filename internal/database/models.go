package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is the common base for tables keyed by a UUID string
type Model struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
}

// BeforeCreate assigns a new UUID when none was set
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	Model
	UpdatedAt    time.Time
	Email        *string `gorm:"uniqueIndex;size:254"`
	PasswordHash string
	TelegramID   *int64 `gorm:"uniqueIndex"`
	Username     string
	FirstName    string
	LastName     string
	Timezone     string `gorm:"size:64;not null;default:''"`
}

type LogEntry struct {
	Model
	UserID       string `gorm:"size:36;not null;index:idx_log_entries_user_ts,priority:1"`
	Timestamp    int64  `gorm:"not null;index:idx_log_entries_user_ts,priority:2"` // ms since epoch
	BloodGlucose int    `gorm:"not null"`
	InsulinUnits *float64
	CarbsGrams   *float64
}

// DosingSettings stores one row per user. Ratios are nullable: a missing value
// falls back to its default when resolved.
type DosingSettings struct {
	UserID       string `gorm:"primaryKey;size:36"`
	CarbRatio    *float64
	GlucoseRatio *float64
	UpdatedAt    time.Time
}

func (DosingSettings) TableName() string {
	return "dosing_settings"
}

type Alarm struct {
	Model
	UserID string `gorm:"size:36;not null;index"`
	Hour   int    `gorm:"not null"`
	Minute int    `gorm:"not null"`
	Label  string `gorm:"size:100;not null"`
}

// AllModels lists the tables managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{&User{}, &LogEntry{}, &DosingSettings{}, &Alarm{}}
}
