package services

import (
	"context"
	"math"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// DoseResult is a suggestion together with the inputs it was computed from
type DoseResult struct {
	BloodGlucose int
	Carbs        float64
	Settings     domain.DosingSettings
	Suggestion   dosing.Suggestion
}

type DoseService struct {
	settings *SettingsService
	log      *LogService
}

func NewDoseService(settings *SettingsService, log *LogService) *DoseService {
	return &DoseService{settings: settings, log: log}
}

// Suggest computes a dose from the user's resolved settings
func (s *DoseService) Suggest(ctx context.Context, userID string, bloodGlucose int, carbs float64) (*DoseResult, error) {
	if err := validateGlucose(bloodGlucose); err != nil {
		return nil, err
	}
	if math.IsNaN(carbs) || math.IsInf(carbs, 0) || carbs < 0 {
		return nil, apperrors.NewValidationError("carbs must be a non-negative number")
	}

	settings, err := s.settings.Resolved(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DoseResult{
		BloodGlucose: bloodGlucose,
		Carbs:        carbs,
		Settings:     settings,
		Suggestion:   dosing.Suggest(float64(bloodGlucose), carbs, settings),
	}, nil
}

// SaveSuggestion recomputes the dose for the inputs and logs it as an entry.
// Nothing is stored when no dose is needed.
func (s *DoseService) SaveSuggestion(ctx context.Context, userID string, bloodGlucose int, carbs float64) (*domain.LogEntry, *DoseResult, error) {
	result, err := s.Suggest(ctx, userID, bloodGlucose, carbs)
	if err != nil {
		return nil, nil, err
	}
	if !result.Suggestion.NeedsDose {
		return nil, result, apperrors.NewValidationError("no correction needed, nothing to save")
	}

	units := result.Suggestion.Units
	in := NewEntry{
		BloodGlucose: bloodGlucose,
		InsulinUnits: &units,
	}
	if carbs > 0 {
		in.CarbsGrams = &carbs
	}

	entry, err := s.log.AddEntry(ctx, userID, in)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Dose suggestion saved", "user_id", userID, "units", units)
	return entry, result, nil
}
