package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/diabetes-companion/internal/database"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

type AlarmRepository struct {
	db *gorm.DB
}

func NewAlarmRepository(db *gorm.DB) *AlarmRepository {
	return &AlarmRepository{db: db}
}

func (r *AlarmRepository) Add(ctx context.Context, userID string, alarm domain.Alarm) (string, error) {
	row := database.Alarm{
		UserID: userID,
		Hour:   alarm.Hour,
		Minute: alarm.Minute,
		Label:  alarm.Label,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", translate(err, "alarm")
	}
	return row.ID, nil
}

// List returns the user's alarms ordered by time of day
func (r *AlarmRepository) List(ctx context.Context, userID string) ([]domain.Alarm, error) {
	var rows []database.Alarm
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("hour ASC").Order("minute ASC").Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "alarm")
	}

	alarms := make([]domain.Alarm, 0, len(rows))
	for _, row := range rows {
		alarms = append(alarms, domain.Alarm{
			ID:     row.ID,
			UserID: row.UserID,
			Hour:   row.Hour,
			Minute: row.Minute,
			Label:  row.Label,
		})
	}
	return alarms, nil
}

func (r *AlarmRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&database.Alarm{})
	if result.Error != nil {
		return translate(result.Error, "alarm")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("alarm")
	}
	return nil
}
