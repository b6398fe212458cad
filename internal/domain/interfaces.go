package domain

import (
	"context"
)

// UserStore persists user accounts
type UserStore interface {
	CreateWithEmail(ctx context.Context, email, passwordHash, timezone string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, string, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username, firstName, lastName, timezone string) (*User, error)
	SetTimezone(ctx context.Context, id, timezone string) error
}

// SettingsStore persists one DosingSettings document per user
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*StoredSettings, error)
	Put(ctx context.Context, userID string, settings DosingSettings) error
}

// LogEntryStore persists log entries
type LogEntryStore interface {
	Add(ctx context.Context, userID string, entry LogEntry) (string, error)
	// List returns all entries, newest first
	List(ctx context.Context, userID string) ([]LogEntry, error)
	// ListRange returns entries with from <= timestamp < to, oldest first
	ListRange(ctx context.Context, userID string, from, to int64) ([]LogEntry, error)
	Delete(ctx context.Context, userID, id string) error
	Revision(ctx context.Context, userID string) (Revision, error)
}

// AlarmStore persists alarms
type AlarmStore interface {
	Add(ctx context.Context, userID string, alarm Alarm) (string, error)
	// List returns alarms ordered by hour, then minute
	List(ctx context.Context, userID string) ([]Alarm, error)
	Delete(ctx context.Context, userID, id string) error
}
