package interfaces

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	"github.com/vladimiradmaev/diabetes-companion/internal/services"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	SetTimezone(ctx context.Context, userID, timezone string) error
}

// IdentityServiceInterface defines the contract for email sign-in
type IdentityServiceInterface interface {
	SignUp(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// SettingsServiceInterface defines the contract for dosing settings
type SettingsServiceInterface interface {
	Resolved(ctx context.Context, userID string) (domain.DosingSettings, error)
	Save(ctx context.Context, userID, carbRatio, glucoseRatio string) (domain.DosingSettings, error)
}

// LogServiceInterface defines the contract for log entries
type LogServiceInterface interface {
	AddEntry(ctx context.Context, userID string, in services.NewEntry) (*domain.LogEntry, error)
	ListEntries(ctx context.Context, userID string) ([]domain.LogEntry, error)
	DeleteEntry(ctx context.Context, userID, entryID string) error
}

// DoseServiceInterface defines the contract for dose suggestions
type DoseServiceInterface interface {
	Suggest(ctx context.Context, userID string, bloodGlucose int, carbs float64) (*services.DoseResult, error)
	SaveSuggestion(ctx context.Context, userID string, bloodGlucose int, carbs float64) (*domain.LogEntry, *services.DoseResult, error)
}

// TrendServiceInterface defines the contract for daily summaries
type TrendServiceInterface interface {
	Day(ctx context.Context, user *domain.User, day civil.Date) (dosing.DailyTrend, error)
	Today(ctx context.Context, user *domain.User) (dosing.DailyTrend, error)
}

// AlarmServiceInterface defines the contract for stored alarms
type AlarmServiceInterface interface {
	Add(ctx context.Context, userID string, hour, minute int, label string) (*domain.Alarm, error)
	AddFromText(ctx context.Context, userID, text string) (*domain.Alarm, error)
	List(ctx context.Context, userID string) ([]domain.Alarm, error)
	Delete(ctx context.Context, userID, alarmID string) error
	Clear(ctx context.Context, userID string) (int, error)
}

// WatcherInterface streams snapshots of a user's log
type WatcherInterface interface {
	Watch(ctx context.Context, userID string) <-chan []domain.LogEntry
}

// Services bundles everything the transports need
type Services struct {
	Users    UserServiceInterface
	Identity IdentityServiceInterface
	Settings SettingsServiceInterface
	Log      LogServiceInterface
	Dose     DoseServiceInterface
	Trend    TrendServiceInterface
	Alarms   AlarmServiceInterface
	Watcher  WatcherInterface
	Carbs    services.CarbEstimator // nil when no vision model key is configured
}
