package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/diabetes-companion/internal/config"
	"github.com/vladimiradmaev/diabetes-companion/internal/database"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "repo.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return New(db)
}

func fptr(v float64) *float64 { return &v }

func TestUserRepository_Email(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	user, err := repos.Users.CreateWithEmail(ctx, "a@example.com", "hash", "Europe/Moscow")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Europe/Moscow", user.Timezone)

	_, err = repos.Users.CreateWithEmail(ctx, "a@example.com", "other", "UTC")
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	got, hash, err := repos.Users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", hash)

	_, _, err = repos.Users.GetByEmail(ctx, "missing@example.com")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, repos.Users.SetTimezone(ctx, user.ID, "Asia/Tokyo"))
	got, err = repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", got.Timezone)

	err = repos.Users.SetTimezone(ctx, "nobody", "UTC")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUserRepository_Telegram(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	first, err := repos.Users.GetOrCreateByTelegramID(ctx, 42, "ivan", "Ivan", "Petrov", "UTC")
	require.NoError(t, err)
	assert.Equal(t, int64(42), first.TelegramID)
	assert.Empty(t, first.Email)

	again, err := repos.Users.GetOrCreateByTelegramID(ctx, 42, "changed", "", "", "UTC")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "ivan", again.Username)

	other, err := repos.Users.GetOrCreateByTelegramID(ctx, 43, "", "", "", "UTC")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	_, err := repos.Settings.Get(ctx, "u1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, repos.Settings.Put(ctx, "u1", domain.DosingSettings{CarbRatio: 12, GlucoseRatio: 40}))
	require.NoError(t, repos.Settings.Put(ctx, "u1", domain.DosingSettings{CarbRatio: 8.5, GlucoseRatio: 35}))
	require.NoError(t, repos.Settings.Put(ctx, "u2", domain.DosingSettings{CarbRatio: 15, GlucoseRatio: 60}))

	got, err := repos.Settings.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.CarbRatio)
	require.NotNil(t, got.GlucoseRatio)
	assert.Equal(t, 8.5, *got.CarbRatio)
	assert.Equal(t, 35.0, *got.GlucoseRatio)
}

func TestLogEntryRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	rev, err := repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, rev.Count)

	ids := map[int64]string{}
	for _, ts := range []int64{3000, 1000, 2000} {
		id, err := repos.Entries.Add(ctx, "u1", domain.LogEntry{Timestamp: ts, BloodGlucose: int(ts / 10), CarbsGrams: fptr(20)})
		require.NoError(t, err)
		ids[ts] = id
	}
	_, err = repos.Entries.Add(ctx, "u2", domain.LogEntry{Timestamp: 1500, BloodGlucose: 99})
	require.NoError(t, err)

	list, err := repos.Entries.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3000, 2000, 1000}, []int64{list[0].Timestamp, list[1].Timestamp, list[2].Timestamp})
	require.NotNil(t, list[0].CarbsGrams)
	assert.Nil(t, list[0].InsulinUnits)
	assert.Equal(t, "u1", list[0].UserID)

	ranged, err := repos.Entries.ListRange(ctx, "u1", 1000, 3000)
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, int64(1000), ranged[0].Timestamp)
	assert.Equal(t, int64(2000), ranged[1].Timestamp)

	rev, err = repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rev.Count)

	// another user's entry cannot be deleted
	err = repos.Entries.Delete(ctx, "u2", ids[1000])
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, repos.Entries.Delete(ctx, "u1", ids[1000]))
	err = repos.Entries.Delete(ctx, "u1", ids[1000])
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	next, err := repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, rev, next)
}

func TestLogEntryRepository_Revision(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	empty, err := repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.Revision{}, empty)

	first, err := repos.Entries.Add(ctx, "u1", domain.LogEntry{Timestamp: 1000, BloodGlucose: 120})
	require.NoError(t, err)
	afterAdd, err := repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), afterAdd.Count)
	assert.False(t, afterAdd.LastCreatedAt.IsZero())

	again, err := repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, afterAdd, again)

	_, err = repos.Entries.Add(ctx, "u1", domain.LogEntry{Timestamp: 2000, BloodGlucose: 130})
	require.NoError(t, err)
	afterSecond, err := repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), afterSecond.Count)

	require.NoError(t, repos.Entries.Delete(ctx, "u1", first))
	afterDelete, err := repos.Entries.Revision(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), afterDelete.Count)
	assert.NotEqual(t, afterSecond, afterDelete)
}

func TestAlarmRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	for _, a := range []domain.Alarm{
		{Hour: 21, Minute: 0, Label: "Evening"},
		{Hour: 7, Minute: 30, Label: "Breakfast"},
		{Hour: 7, Minute: 5, Label: "Wake up"},
	} {
		_, err := repos.Alarms.Add(ctx, "u1", a)
		require.NoError(t, err)
	}

	alarms, err := repos.Alarms.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, alarms, 3)
	assert.Equal(t, "Wake up", alarms[0].Label)
	assert.Equal(t, "Breakfast", alarms[1].Label)
	assert.Equal(t, "Evening", alarms[2].Label)

	require.NoError(t, repos.Alarms.Delete(ctx, "u1", alarms[0].ID))
	assert.True(t, errors.Is(repos.Alarms.Delete(ctx, "u1", alarms[0].ID), apperrors.ErrNotFound))

	empty, err := repos.Alarms.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
