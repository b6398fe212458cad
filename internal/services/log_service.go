package services

import (
	"context"
	"math"
	"time"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// NewEntry is a log entry as submitted by a user
type NewEntry struct {
	Timestamp    int64 // ms since epoch, 0 means now
	BloodGlucose int
	InsulinUnits *float64
	CarbsGrams   *float64
}

type LogService struct {
	entries domain.LogEntryStore
	now     func() time.Time
}

func NewLogService(entries domain.LogEntryStore) *LogService {
	return &LogService{entries: entries, now: time.Now}
}

func validAmount(v *float64) bool {
	return v == nil || (*v >= 0 && !math.IsNaN(*v) && !math.IsInf(*v, 0))
}

func validateGlucose(v int) error {
	if v < 0 || v > dosing.MaxGlucose {
		return apperrors.NewValidationError("blood glucose must be between 0 and 10000 mg/dL")
	}
	return nil
}

// AddEntry validates and stores a new entry, returning it with its id
func (s *LogService) AddEntry(ctx context.Context, userID string, in NewEntry) (*domain.LogEntry, error) {
	if err := validateGlucose(in.BloodGlucose); err != nil {
		return nil, err
	}
	if !validAmount(in.InsulinUnits) {
		return nil, apperrors.NewValidationError("insulin units must be a non-negative number")
	}
	if !validAmount(in.CarbsGrams) {
		return nil, apperrors.NewValidationError("carbs must be a non-negative number")
	}
	if in.Timestamp < 0 {
		return nil, apperrors.NewValidationError("timestamp must not be negative")
	}

	entry := domain.LogEntry{
		UserID:       userID,
		Timestamp:    in.Timestamp,
		BloodGlucose: in.BloodGlucose,
		InsulinUnits: in.InsulinUnits,
		CarbsGrams:   in.CarbsGrams,
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = s.now().UnixMilli()
	}

	id, err := s.entries.Add(ctx, userID, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	logger.Info("Log entry added", "user_id", userID, "entry_id", id, "blood_glucose", entry.BloodGlucose)
	return &entry, nil
}

// ListEntries returns all of the user's entries, newest first
func (s *LogService) ListEntries(ctx context.Context, userID string) ([]domain.LogEntry, error) {
	return s.entries.List(ctx, userID)
}

func (s *LogService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	if err := s.entries.Delete(ctx, userID, entryID); err != nil {
		return err
	}
	logger.Info("Log entry deleted", "user_id", userID, "entry_id", entryID)
	return nil
}
