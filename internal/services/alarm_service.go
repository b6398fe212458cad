package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/utils"
)

const (
	DefaultAlarmLabel = "Check glucose"
	maxAlarmLabel     = 100
)

// AlarmService manages stored reminder times. Alarms are never fired by this service.
type AlarmService struct {
	store domain.AlarmStore
}

func NewAlarmService(store domain.AlarmStore) *AlarmService {
	return &AlarmService{store: store}
}

func (s *AlarmService) Add(ctx context.Context, userID string, hour, minute int, label string) (*domain.Alarm, error) {
	if hour < 0 || hour > 23 {
		return nil, apperrors.NewValidationError("hour must be between 0 and 23")
	}
	if minute < 0 || minute > 59 {
		return nil, apperrors.NewValidationError("minute must be between 0 and 59")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultAlarmLabel
	}
	if utf8.RuneCountInString(label) > maxAlarmLabel {
		return nil, apperrors.NewValidationError("label is too long")
	}

	alarm := domain.Alarm{UserID: userID, Hour: hour, Minute: minute, Label: label}
	id, err := s.store.Add(ctx, userID, alarm)
	if err != nil {
		return nil, err
	}
	alarm.ID = id
	return &alarm, nil
}

// AddFromText parses "HH:MM optional label"
func (s *AlarmService) AddFromText(ctx context.Context, userID, text string) (*domain.Alarm, error) {
	clock, label, _ := strings.Cut(strings.TrimSpace(text), " ")
	hour, minute, err := utils.ParseClock(clock)
	if err != nil {
		return nil, apperrors.NewValidationError("time must be in HH:MM format")
	}
	return s.Add(ctx, userID, hour, minute, label)
}

func (s *AlarmService) List(ctx context.Context, userID string) ([]domain.Alarm, error) {
	return s.store.List(ctx, userID)
}

func (s *AlarmService) Delete(ctx context.Context, userID, alarmID string) error {
	return s.store.Delete(ctx, userID, alarmID)
}

// Clear removes all of the user's alarms
func (s *AlarmService) Clear(ctx context.Context, userID string) (int, error) {
	alarms, err := s.store.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, a := range alarms {
		if err := s.store.Delete(ctx, userID, a.ID); err != nil {
			return 0, err
		}
	}
	return len(alarms), nil
}
