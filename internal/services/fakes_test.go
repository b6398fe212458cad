package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

type fakeSettingsStore struct {
	mu      sync.Mutex
	data    map[string]domain.StoredSettings
	getErr  error
	putErr  error
	putCall int
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{data: map[string]domain.StoredSettings{}}
}

func (f *fakeSettingsStore) Get(ctx context.Context, userID string) (*domain.StoredSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.data[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("settings")
	}
	return &s, nil
}

func (f *fakeSettingsStore) Put(ctx context.Context, userID string, settings domain.DosingSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCall++
	if f.putErr != nil {
		return f.putErr
	}
	carb, glucose := settings.CarbRatio, settings.GlucoseRatio
	f.data[userID] = domain.StoredSettings{CarbRatio: &carb, GlucoseRatio: &glucose}
	return nil
}

type fakeEntryStore struct {
	mu      sync.Mutex
	seq     int
	entries []domain.LogEntry
	created map[string]time.Time
	failRev bool
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{created: map[string]time.Time{}}
}

func (f *fakeEntryStore) Add(ctx context.Context, userID string, entry domain.LogEntry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	entry.ID = fmt.Sprintf("e%d", f.seq)
	entry.UserID = userID
	f.entries = append(f.entries, entry)
	f.created[entry.ID] = time.Unix(int64(f.seq), 0)
	return entry.ID, nil
}

func (f *fakeEntryStore) List(ctx context.Context, userID string) ([]domain.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LogEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (f *fakeEntryStore) ListRange(ctx context.Context, userID string, from, to int64) ([]domain.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LogEntry
	for _, e := range f.entries {
		if e.UserID == userID && e.Timestamp >= from && e.Timestamp < to {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (f *fakeEntryStore) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("log entry")
}

func (f *fakeEntryStore) Revision(ctx context.Context, userID string) (domain.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRev {
		return domain.Revision{}, apperrors.NewDatabaseError(fmt.Errorf("connection lost"))
	}
	var rev domain.Revision
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		rev.Count++
		if c := f.created[e.ID]; c.After(rev.LastCreatedAt) {
			rev.LastCreatedAt = c
		}
	}
	return rev, nil
}

type fakeAlarmStore struct {
	mu     sync.Mutex
	seq    int
	alarms []domain.Alarm
}

func (f *fakeAlarmStore) Add(ctx context.Context, userID string, alarm domain.Alarm) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	alarm.ID = fmt.Sprintf("a%d", f.seq)
	alarm.UserID = userID
	f.alarms = append(f.alarms, alarm)
	return alarm.ID, nil
}

func (f *fakeAlarmStore) List(ctx context.Context, userID string) ([]domain.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Alarm
	for _, a := range f.alarms {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Minute < out[j].Minute
	})
	return out, nil
}

func (f *fakeAlarmStore) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.alarms {
		if a.ID == id && a.UserID == userID {
			f.alarms = append(f.alarms[:i], f.alarms[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("alarm")
}

type fakeUserStore struct {
	mu     sync.Mutex
	seq    int
	users  map[string]*domain.User
	hashes map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*domain.User{}, hashes: map[string]string{}}
}

func (f *fakeUserStore) CreateWithEmail(ctx context.Context, email, passwordHash, timezone string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, apperrors.NewConflictError("user already exists")
		}
	}
	f.seq++
	u := &domain.User{ID: fmt.Sprintf("u%d", f.seq), Email: email, Timezone: timezone}
	f.users[u.ID] = u
	f.hashes[u.ID] = passwordHash
	return u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, f.hashes[u.ID], nil
		}
	}
	return nil, "", apperrors.NewNotFoundError("user")
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user")
	}
	return u, nil
}

func (f *fakeUserStore) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username, firstName, lastName, timezone string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	f.seq++
	u := &domain.User{ID: fmt.Sprintf("u%d", f.seq), TelegramID: telegramID, Username: username, Timezone: timezone}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) SetTimezone(ctx context.Context, id, timezone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user")
	}
	u.Timezone = timezone
	return nil
}
