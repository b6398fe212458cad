package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/config"
	"github.com/vladimiradmaev/diabetes-companion/internal/database"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/interfaces"
	"github.com/vladimiradmaev/diabetes-companion/internal/repository"
	"github.com/vladimiradmaev/diabetes-companion/internal/services"
)

const (
	chatID     = int64(500)
	telegramID = int64(42)
)

type sentMessage struct {
	Text   string
	Markup any
}

type fakeSender struct {
	mu       sync.Mutex
	messages []sentMessage
	answered int
	fileURL  string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, sentMessage{Text: msg.Text, Markup: msg.ReplyMarkup})
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) GetFileDirectURL(fileID string) (string, error) {
	if f.fileURL == "" {
		return "", errors.New("no file")
	}
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeSender) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return sentMessage{}
	}
	return f.messages[len(f.messages)-1]
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.Text
	}
	return out
}

type fakeEstimator struct {
	gotWeight float64
	gotImage  []byte
}

func (f *fakeEstimator) EstimateCarbs(ctx context.Context, image []byte, weight float64) (*services.CarbEstimate, error) {
	f.gotImage = image
	f.gotWeight = weight
	est := &services.CarbEstimate{FoodItems: []string{"rice"}, Carbs: 40, Confidence: "high", Weight: weight}
	if weight <= 0 {
		est.Weight, est.WeightEstimated = 180, true
	}
	return est, nil
}

type harness struct {
	sender  *fakeSender
	states  *state.Manager
	handler *UpdateHandler
	svcs    interfaces.Services
}

func newHarness(t *testing.T, carbs services.CarbEstimator) *harness {
	t.Helper()

	db, err := database.Open(config.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bot.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repos := repository.New(db)
	settings := services.NewSettingsService(repos.Settings)
	logs := services.NewLogService(repos.Entries)
	svcs := interfaces.Services{
		Users:    services.NewUserService(repos.Users, "UTC"),
		Settings: settings,
		Log:      logs,
		Dose:     services.NewDoseService(settings, logs),
		Trend:    services.NewTrendService(repos.Entries),
		Alarms:   services.NewAlarmService(repos.Alarms),
		Carbs:    carbs,
	}

	h := &harness{sender: &fakeSender{}, states: state.NewManager(), svcs: svcs}
	h.handler = NewUpdateHandler(h.sender, Dependencies{Services: svcs}, h.states)
	return h
}

func (h *harness) from() *tgbotapi.User {
	return &tgbotapi.User{ID: telegramID, UserName: "tester", FirstName: "Test"}
}

func (h *harness) text(t *testing.T, text string) {
	t.Helper()
	msg := &tgbotapi.Message{From: h.from(), Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	require.NoError(t, h.handler.Handle(context.Background(), tgbotapi.Update{Message: msg}))
}

func (h *harness) press(t *testing.T, data string) {
	t.Helper()
	query := &tgbotapi.CallbackQuery{
		ID:      "q",
		From:    h.from(),
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
	require.NoError(t, h.handler.Handle(context.Background(), tgbotapi.Update{CallbackQuery: query}))
}

func (h *harness) user(t *testing.T) *domain.User {
	t.Helper()
	u, err := h.svcs.Users.RegisterUser(context.Background(), telegramID, "", "", "")
	require.NoError(t, err)
	return u
}

func (h *harness) entries(t *testing.T) []domain.LogEntry {
	t.Helper()
	entries, err := h.svcs.Log.ListEntries(context.Background(), h.user(t).ID)
	require.NoError(t, err)
	return entries
}

func hasButton(markup any, data string) bool {
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return false
	}
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil && *b.CallbackData == data {
				return true
			}
		}
	}
	return false
}

func TestStartShowsMainMenu(t *testing.T) {
	h := newHarness(t, nil)
	h.states.SetUserState(telegramID, state.WaitingForAlarm)

	h.text(t, "/start")

	assert.Equal(t, state.None, h.states.GetUserState(telegramID))
	assert.True(t, hasButton(h.sender.last().Markup, keyboards.DoseData))
}

func TestLogFlow(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, keyboards.LogEntryData)
	assert.Equal(t, 1, h.sender.answered)
	assert.Equal(t, state.WaitingForGlucose, h.states.GetUserState(telegramID))

	h.text(t, "high")
	assert.Contains(t, h.sender.last().Text, "корректное число")
	assert.Equal(t, state.WaitingForGlucose, h.states.GetUserState(telegramID))

	h.text(t, "140")
	h.text(t, "45,5")
	h.text(t, "-")

	assert.Equal(t, state.None, h.states.GetUserState(telegramID))
	entries := h.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, 140, entries[0].BloodGlucose)
	require.NotNil(t, entries[0].CarbsGrams)
	assert.InDelta(t, 45.5, *entries[0].CarbsGrams, 1e-9)
	assert.Nil(t, entries[0].InsulinUnits)
}

func TestDoseFlow_SaveSuggestion(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, keyboards.DoseData)
	h.text(t, "210")
	h.text(t, "30")

	// 30/10 + (210-110)/50 with the default ratios
	last := h.sender.last()
	assert.Contains(t, last.Text, "5.0 ед.")
	assert.True(t, hasButton(last.Markup, keyboards.SaveDoseData))
	assert.Equal(t, state.DoseReady, h.states.GetUserState(telegramID))

	h.press(t, keyboards.SaveDoseData)

	entries := h.entries(t)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].InsulinUnits)
	assert.InDelta(t, 5.0, *entries[0].InsulinUnits, 1e-9)
	assert.Equal(t, state.None, h.states.GetUserState(telegramID))

	// the stored inputs are gone, saving again does nothing
	h.press(t, keyboards.SaveDoseData)
	assert.Len(t, h.entries(t), 1)
}

func TestDoseFlow_NoCorrection(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, keyboards.DoseData)
	h.text(t, "80")
	h.text(t, "-")

	last := h.sender.last()
	assert.Contains(t, last.Text, "Коррекция не требуется")
	assert.False(t, hasButton(last.Markup, keyboards.SaveDoseData))
}

func TestDoseFlow_Photo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	est := &fakeEstimator{}
	h := newHarness(t, est)
	h.sender.fileURL = srv.URL

	h.press(t, keyboards.DoseData)
	h.text(t, "110")

	msg := &tgbotapi.Message{
		From:    h.from(),
		Chat:    &tgbotapi.Chat{ID: chatID},
		Caption: "200",
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}
	require.NoError(t, h.handler.Handle(context.Background(), tgbotapi.Update{Message: msg}))

	assert.Equal(t, []byte("jpeg-bytes"), est.gotImage)
	assert.InDelta(t, 200.0, est.gotWeight, 1e-9)
	texts := strings.Join(h.sender.texts(), "\n")
	assert.Contains(t, texts, "rice")
	assert.Contains(t, texts, "Вес: 200 г")
	// 40 g at 10 g per unit
	assert.Contains(t, h.sender.last().Text, "4.0 ед.")
}

func TestDoseFlow_PhotoWithoutCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	est := &fakeEstimator{}
	h := newHarness(t, est)
	h.sender.fileURL = srv.URL

	h.press(t, keyboards.DoseData)
	h.text(t, "110")

	msg := &tgbotapi.Message{
		From:  h.from(),
		Chat:  &tgbotapi.Chat{ID: chatID},
		Photo: []tgbotapi.PhotoSize{{FileID: "only"}},
	}
	require.NoError(t, h.handler.Handle(context.Background(), tgbotapi.Update{Message: msg}))

	assert.Zero(t, est.gotWeight)
	assert.Contains(t, strings.Join(h.sender.texts(), "\n"), "Вес: ≈180 г (оценка по фото)")
	assert.Contains(t, h.sender.last().Text, "4.0 ед.")
}

func TestPhotoWithoutEstimator(t *testing.T) {
	h := newHarness(t, nil)
	msg := &tgbotapi.Message{
		From:  h.from(),
		Chat:  &tgbotapi.Chat{ID: chatID},
		Photo: []tgbotapi.PhotoSize{{FileID: "f"}},
	}
	require.NoError(t, h.handler.Handle(context.Background(), tgbotapi.Update{Message: msg}))
	assert.Contains(t, h.sender.last().Text, "не настроено")
}

func TestSettingsFlow(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, keyboards.SetRatiosData)
	h.text(t, "0")
	assert.Equal(t, state.WaitingForCarbRatio, h.states.GetUserState(telegramID))

	h.text(t, "12")
	h.text(t, "abc")
	assert.Equal(t, state.WaitingForGlucoseRatio, h.states.GetUserState(telegramID))
	assert.Contains(t, h.sender.last().Text, "положительным числом")

	h.text(t, "40")
	assert.Equal(t, state.None, h.states.GetUserState(telegramID))

	settings, err := h.svcs.Settings.Resolved(context.Background(), h.user(t).ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DosingSettings{CarbRatio: 12, GlucoseRatio: 40}, settings)
}

func TestTimezoneFlow(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, keyboards.SetTimezoneData)
	h.text(t, "Mars/Olympus")
	assert.Contains(t, h.sender.last().Text, "Неизвестный часовой пояс")

	h.text(t, "Europe/Moscow")
	assert.Equal(t, "Europe/Moscow", h.user(t).Timezone)
	assert.Contains(t, h.sender.last().Text, "Europe/Moscow")
}

func TestAlarmsFlow(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, keyboards.AddAlarmData)
	h.text(t, "25:00 nope")
	assert.Contains(t, h.sender.last().Text, "Неверный формат")

	h.text(t, "08:05 Измерить сахар")
	last := h.sender.last()
	assert.Contains(t, last.Text, "08:05")
	assert.True(t, hasButton(last.Markup, keyboards.ClearAlarmsData))

	h.press(t, keyboards.ClearAlarmsData)
	alarms, err := h.svcs.Alarms.List(context.Background(), h.user(t).ID)
	require.NoError(t, err)
	assert.Empty(t, alarms)
}

func TestEntriesAndDelete(t *testing.T) {
	h := newHarness(t, nil)
	u := h.user(t)
	entry, err := h.svcs.Log.AddEntry(context.Background(), u.ID, services.NewEntry{
		Timestamp:    time.Now().UnixMilli(),
		BloodGlucose: 123,
	})
	require.NoError(t, err)

	h.press(t, keyboards.EntriesData)
	assert.True(t, hasButton(h.sender.last().Markup, keyboards.DeleteEntryPrefix+entry.ID))

	h.press(t, keyboards.DeleteEntryPrefix+entry.ID)
	assert.Empty(t, h.entries(t))
	assert.Contains(t, h.sender.last().Text, "Записей пока нет")
}

func TestTodaySummary(t *testing.T) {
	h := newHarness(t, nil)
	u := h.user(t)
	for _, bg := range []int{100, 200} {
		_, err := h.svcs.Log.AddEntry(context.Background(), u.ID, services.NewEntry{BloodGlucose: bg})
		require.NoError(t, err)
	}

	h.press(t, keyboards.TodayData)
	assert.Contains(t, h.sender.last().Text, "Средний: 150 мг/дл")
}
