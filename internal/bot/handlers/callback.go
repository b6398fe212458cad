package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *domain.User) error {
	// Answer the callback query first
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return err
	}

	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == keyboards.MainMenuData:
		resetUser(h.stateManager, user.TelegramID)
		return menus.SendMainMenu(h.api, chatID)
	case data == keyboards.LogEntryData:
		return h.prompt(chatID, user, state.WaitingForGlucose, "🩸 Введите уровень сахара (мг/дл):")
	case data == keyboards.DoseData:
		return h.prompt(chatID, user, state.DoseWaitingForGlucose, "💉 Введите текущий уровень сахара (мг/дл):")
	case data == keyboards.TodayData:
		return h.handleToday(ctx, chatID, user)
	case data == keyboards.EntriesData:
		return h.handleEntries(ctx, chatID, user)
	case data == keyboards.SaveDoseData:
		return h.handleSaveDose(ctx, chatID, user)
	case data == keyboards.SettingsData:
		return h.handleSettings(ctx, chatID, user)
	case data == keyboards.SetRatiosData:
		return h.prompt(chatID, user, state.WaitingForCarbRatio,
			"📊 Сколько граммов углеводов покрывает 1 единица инсулина? (например: 10)")
	case data == keyboards.SetTimezoneData:
		return h.prompt(chatID, user, state.WaitingForTimezone,
			"🌍 Введите часовой пояс в формате IANA (например: Europe/Moscow)")
	case data == keyboards.AlarmsData:
		return h.handleAlarms(ctx, chatID, user)
	case data == keyboards.AddAlarmData:
		return h.prompt(chatID, user, state.WaitingForAlarm,
			"⏰ Введите время и подпись в формате ЧЧ:ММ текст (например: 08:00 Измерить сахар)")
	case data == keyboards.ClearAlarmsData:
		return h.handleClearAlarms(ctx, chatID, user)
	case strings.HasPrefix(data, keyboards.DeleteEntryPrefix):
		return h.handleDeleteEntry(ctx, chatID, user, strings.TrimPrefix(data, keyboards.DeleteEntryPrefix))
	case strings.HasPrefix(data, keyboards.DeleteAlarmPrefix):
		return h.handleDeleteAlarm(ctx, chatID, user, strings.TrimPrefix(data, keyboards.DeleteAlarmPrefix))
	default:
		logger.Warn("Unknown callback", "data", data, "user_id", user.ID)
		return sendText(h.api, chatID, "Неизвестное действие. Используйте /start для возврата в главное меню.")
	}
}

// prompt starts a new flow, dropping whatever was collected before
func (h *CallbackHandler) prompt(chatID int64, user *domain.User, next, text string) error {
	resetUser(h.stateManager, user.TelegramID)
	h.stateManager.SetUserState(user.TelegramID, next)
	return sendText(h.api, chatID, text)
}

func (h *CallbackHandler) handleToday(ctx context.Context, chatID int64, user *domain.User) error {
	trend, err := h.deps.Trend.Today(ctx, user)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	msg := tgbotapi.NewMessage(chatID, menus.FormatTrend(trend))
	msg.ReplyMarkup = keyboards.BackToMain()
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleEntries(ctx context.Context, chatID int64, user *domain.User) error {
	entries, err := h.deps.Log.ListEntries(ctx, user.ID)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	return menus.SendEntries(h.api, chatID, entries, user.Location())
}

func (h *CallbackHandler) handleDeleteEntry(ctx context.Context, chatID int64, user *domain.User, entryID string) error {
	if err := h.deps.Log.DeleteEntry(ctx, user.ID, entryID); err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	if err := sendText(h.api, chatID, "🗑 Запись удалена"); err != nil {
		return err
	}
	return h.handleEntries(ctx, chatID, user)
}

func (h *CallbackHandler) handleSaveDose(ctx context.Context, chatID int64, user *domain.User) error {
	glucoseText, okGlucose := h.stateManager.GetTempData(user.TelegramID, state.KeyGlucose)
	carbsText, okCarbs := h.stateManager.GetTempData(user.TelegramID, state.KeyCarbs)
	if h.stateManager.GetUserState(user.TelegramID) != state.DoseReady || !okGlucose || !okCarbs {
		return sendText(h.api, chatID, "Расчет устарел. Начните заново через \"💉 Рассчитать дозу\".")
	}

	glucose, err := strconv.Atoi(glucoseText)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	carbs, err := strconv.ParseFloat(carbsText, 64)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}

	entry, _, err := h.deps.Dose.SaveSuggestion(ctx, user.ID, glucose, carbs)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "Коррекция не требуется, сохранять нечего.")
	}
	resetUser(h.stateManager, user.TelegramID)

	text := "✅ Сохранено в дневник\n" + menus.FormatEntry(*entry, user.Location())
	if err := sendText(h.api, chatID, text); err != nil {
		return err
	}
	return menus.SendMainMenu(h.api, chatID)
}

func (h *CallbackHandler) handleSettings(ctx context.Context, chatID int64, user *domain.User) error {
	resetUser(h.stateManager, user.TelegramID)
	settings, err := h.deps.Settings.Resolved(ctx, user.ID)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	return menus.SendSettingsMenu(h.api, chatID, settings, user.Timezone)
}

func (h *CallbackHandler) handleAlarms(ctx context.Context, chatID int64, user *domain.User) error {
	resetUser(h.stateManager, user.TelegramID)
	alarms, err := h.deps.Alarms.List(ctx, user.ID)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	return menus.SendAlarmsMenu(h.api, chatID, alarms)
}

func (h *CallbackHandler) handleDeleteAlarm(ctx context.Context, chatID int64, user *domain.User, alarmID string) error {
	if err := h.deps.Alarms.Delete(ctx, user.ID, alarmID); err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	return h.handleAlarms(ctx, chatID, user)
}

func (h *CallbackHandler) handleClearAlarms(ctx context.Context, chatID int64, user *domain.User) error {
	n, err := h.deps.Alarms.Clear(ctx, user.ID)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	if err := sendText(h.api, chatID, fmt.Sprintf("🧹 Удалено напоминаний: %d", n)); err != nil {
		return err
	}
	return menus.SendAlarmsMenu(h.api, chatID, nil)
}
