package services

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
)

// TrendService builds daily summaries in the user's time zone
type TrendService struct {
	entries domain.LogEntryStore
	now     func() time.Time
}

func NewTrendService(entries domain.LogEntryStore) *TrendService {
	return &TrendService{entries: entries, now: time.Now}
}

func (s *TrendService) Day(ctx context.Context, user *domain.User, day civil.Date) (dosing.DailyTrend, error) {
	loc := user.Location()
	from, to := dosing.DayBounds(day, loc)

	entries, err := s.entries.ListRange(ctx, user.ID, from, to)
	if err != nil {
		return dosing.DailyTrend{}, err
	}
	return dosing.Aggregate(entries, day, loc), nil
}

// Today returns the trend for the current calendar day of the user
func (s *TrendService) Today(ctx context.Context, user *domain.User) (dosing.DailyTrend, error) {
	return s.Day(ctx, user, civil.DateOf(s.now().In(user.Location())))
}
