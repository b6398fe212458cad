package services

import (
	"context"
	"errors"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

type SettingsService struct {
	store domain.SettingsStore
}

func NewSettingsService(store domain.SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Resolved returns the user's ratios ready for the calculator. A user without
// saved settings gets the defaults; a storage failure is returned as is.
func (s *SettingsService) Resolved(ctx context.Context, userID string) (domain.DosingSettings, error) {
	stored, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return dosing.DefaultSettings(), nil
		}
		return domain.DosingSettings{}, err
	}
	return dosing.ResolveStored(stored), nil
}

// Save stores both ratios. Nothing is written unless both parse as positive numbers.
func (s *SettingsService) Save(ctx context.Context, userID, carbRatio, glucoseRatio string) (domain.DosingSettings, error) {
	carb, okCarb := dosing.ParseRatio(carbRatio)
	glucose, okGlucose := dosing.ParseRatio(glucoseRatio)
	if !okCarb || !okGlucose {
		return domain.DosingSettings{}, apperrors.NewValidationError("please enter valid positive numbers for both ratios")
	}

	settings := domain.DosingSettings{CarbRatio: carb, GlucoseRatio: glucose}
	if err := s.store.Put(ctx, userID, settings); err != nil {
		return domain.DosingSettings{}, err
	}
	logger.Info("Dosing settings saved", "user_id", userID, "carb_ratio", carb, "glucose_ratio", glucose)
	return settings, nil
}
