package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/diabetes-companion/internal/database"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

// LogEntryRepository handles glucose log entries
type LogEntryRepository struct {
	db *gorm.DB
}

func NewLogEntryRepository(db *gorm.DB) *LogEntryRepository {
	return &LogEntryRepository{db: db}
}

func toDomainEntry(e database.LogEntry) domain.LogEntry {
	return domain.LogEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		Timestamp:    e.Timestamp,
		BloodGlucose: e.BloodGlucose,
		InsulinUnits: e.InsulinUnits,
		CarbsGrams:   e.CarbsGrams,
	}
}

func toDomainEntries(rows []database.LogEntry) []domain.LogEntry {
	entries := make([]domain.LogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toDomainEntry(row))
	}
	return entries
}

// Add stores the entry and returns its generated id
func (r *LogEntryRepository) Add(ctx context.Context, userID string, entry domain.LogEntry) (string, error) {
	row := database.LogEntry{
		UserID:       userID,
		Timestamp:    entry.Timestamp,
		BloodGlucose: entry.BloodGlucose,
		InsulinUnits: entry.InsulinUnits,
		CarbsGrams:   entry.CarbsGrams,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", translate(err, "log entry")
	}
	return row.ID, nil
}

// List returns all of the user's entries, newest first
func (r *LogEntryRepository) List(ctx context.Context, userID string) ([]domain.LogEntry, error) {
	var rows []database.LogEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "log entry")
	}
	return toDomainEntries(rows), nil
}

// ListRange returns entries with from <= timestamp < to, oldest first
func (r *LogEntryRepository) ListRange(ctx context.Context, userID string, from, to int64) ([]domain.LogEntry, error) {
	var rows []database.LogEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, from, to).
		Order("timestamp ASC").Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "log entry")
	}
	return toDomainEntries(rows), nil
}

// Delete removes one of the user's entries
func (r *LogEntryRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&database.LogEntry{})
	if result.Error != nil {
		return translate(result.Error, "log entry")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("log entry")
	}
	return nil
}

// Revision summarizes the user's log so pollers can detect changes cheaply.
// Both values are read in one transaction. An add and a delete landing
// between two polls within the same created_at tick can still go unnoticed
// until the next change.
func (r *LogEntryRepository) Revision(ctx context.Context, userID string) (domain.Revision, error) {
	var rev domain.Revision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.LogEntry{}).Where("user_id = ?", userID).Count(&rev.Count).Error; err != nil {
			return err
		}
		if rev.Count == 0 {
			return nil
		}

		var latest database.LogEntry
		if err := tx.Where("user_id = ?", userID).Order("created_at DESC").First(&latest).Error; err != nil {
			return err
		}
		rev.LastCreatedAt = latest.CreatedAt
		return nil
	})
	if err != nil {
		return domain.Revision{}, translate(err, "log entry")
	}
	return rev, nil
}
