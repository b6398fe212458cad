package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/diabetes-companion/internal/database"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
)

// SettingsRepository stores one dosing settings row per user
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings or a not found error when the user never saved any
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*domain.StoredSettings, error) {
	var row database.DosingSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, translate(err, "settings")
	}
	return &domain.StoredSettings{
		CarbRatio:    row.CarbRatio,
		GlucoseRatio: row.GlucoseRatio,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// Put replaces the user's settings. The last write wins.
func (r *SettingsRepository) Put(ctx context.Context, userID string, settings domain.DosingSettings) error {
	carb, glucose := settings.CarbRatio, settings.GlucoseRatio
	row := database.DosingSettings{
		UserID:       userID,
		CarbRatio:    &carb,
		GlucoseRatio: &glucose,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"carb_ratio", "glucose_ratio", "updated_at"}),
	}).Create(&row).Error
	return translate(err, "settings")
}
