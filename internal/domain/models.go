package domain

import (
	"time"
)

// User represents an account that owns log entries, settings and alarms
type User struct {
	ID         string
	CreatedAt  time.Time
	Email      string
	TelegramID int64 // 0 when the account was created through the API
	Username   string
	FirstName  string
	LastName   string
	Timezone   string // IANA name, e.g. "Europe/Moscow"
}

// Location returns the user's time zone, falling back to UTC for unknown names
func (u *User) Location() *time.Location {
	if u == nil || u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogEntry represents a single logged reading. Entries are never updated, only deleted.
type LogEntry struct {
	ID           string
	UserID       string
	Timestamp    int64    // Unix timestamp in milliseconds, UTC
	BloodGlucose int      // mg/dL
	InsulinUnits *float64 // optional units
	CarbsGrams   *float64 // optional grams
}

// Time returns the time of the entry in UTC
func (e LogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// DosingSettings holds the ratios used for dose suggestions
type DosingSettings struct {
	CarbRatio    float64 // grams of carbs per 1 unit
	GlucoseRatio float64 // mg/dL per 1 unit (correction factor)
}

// StoredSettings is the persisted form of DosingSettings. Either value may be
// missing or invalid and must be resolved before use.
type StoredSettings struct {
	CarbRatio    *float64
	GlucoseRatio *float64
	UpdatedAt    time.Time
}

// Alarm is a stored reminder time. Nothing schedules it.
type Alarm struct {
	ID     string
	UserID string
	Hour   int
	Minute int
	Label  string
}

// Revision identifies the state of a user's log at a point in time
type Revision struct {
	Count         int64
	LastCreatedAt time.Time
}
