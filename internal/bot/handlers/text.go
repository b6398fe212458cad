package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
	"github.com/vladimiradmaev/diabetes-companion/internal/services"
)

const skippedValue = "-"

// TextHandler handles text messages
type TextHandler struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch h.stateManager.GetUserState(user.TelegramID) {
	case state.WaitingForGlucose:
		return h.handleGlucose(chatID, user, text, state.WaitingForCarbs,
			"🍞 Сколько углеводов (г)? Отправьте «-» чтобы пропустить.")
	case state.WaitingForCarbs:
		return h.handleLogCarbs(chatID, user, text)
	case state.WaitingForInsulin:
		return h.handleLogInsulin(ctx, chatID, user, text)
	case state.DoseWaitingForGlucose:
		prompt := "🍞 Сколько углеводов (г) вы собираетесь съесть? Отправьте «-» если без еды."
		if h.deps.Carbs != nil {
			prompt += "\nМожно также отправить фото еды, вес блюда укажите в подписи."
		}
		return h.handleGlucose(chatID, user, text, state.DoseWaitingForCarbs, prompt)
	case state.DoseWaitingForCarbs:
		return h.handleDoseCarbs(ctx, chatID, user, text)
	case state.WaitingForCarbRatio:
		return h.handleCarbRatio(chatID, user, text)
	case state.WaitingForGlucoseRatio:
		return h.handleGlucoseRatio(ctx, chatID, user, text)
	case state.WaitingForTimezone:
		return h.handleTimezone(ctx, chatID, user, text)
	case state.WaitingForAlarm:
		return h.handleAlarm(ctx, chatID, user, text)
	default:
		return menus.SendMainMenu(h.api, chatID)
	}
}

func (h *TextHandler) handleGlucose(chatID int64, user *domain.User, text, next, prompt string) error {
	glucose, err := dosing.ParseGlucose(text)
	if err != nil {
		return sendText(h.api, chatID, "Пожалуйста, введите корректное число (например: 140)")
	}
	h.stateManager.SetTempData(user.TelegramID, state.KeyGlucose, strconv.Itoa(glucose))
	h.stateManager.SetUserState(user.TelegramID, next)
	return sendText(h.api, chatID, prompt)
}

func (h *TextHandler) handleLogCarbs(chatID int64, user *domain.User, text string) error {
	carbs, err := dosing.ParseAmount(text)
	if err != nil {
		return sendText(h.api, chatID, "Введите количество углеводов числом (например: 45) или «-»")
	}
	value := skippedValue
	if carbs != nil {
		value = strconv.FormatFloat(*carbs, 'f', -1, 64)
	}
	h.stateManager.SetTempData(user.TelegramID, state.KeyCarbs, value)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForInsulin)
	return sendText(h.api, chatID, "💉 Сколько единиц инсулина введено? Отправьте «-» чтобы пропустить.")
}

func (h *TextHandler) handleLogInsulin(ctx context.Context, chatID int64, user *domain.User, text string) error {
	insulin, err := dosing.ParseAmount(text)
	if err != nil {
		return sendText(h.api, chatID, "Введите количество инсулина числом (например: 4.5) или «-»")
	}

	glucoseText, _ := h.stateManager.GetTempData(user.TelegramID, state.KeyGlucose)
	glucose, err := strconv.Atoi(glucoseText)
	if err != nil {
		resetUser(h.stateManager, user.TelegramID)
		return sendText(h.api, chatID, "Данные записи потеряны. Начните заново через \"🩸 Записать\".")
	}
	carbsText, _ := h.stateManager.GetTempData(user.TelegramID, state.KeyCarbs)
	carbs, _ := dosing.ParseAmount(carbsText)

	entry, err := h.deps.Log.AddEntry(ctx, user.ID, services.NewEntry{
		BloodGlucose: glucose,
		InsulinUnits: insulin,
		CarbsGrams:   carbs,
	})
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "Значения должны быть неотрицательными числами.")
	}
	resetUser(h.stateManager, user.TelegramID)
	logger.Info("Log entry saved", "user_id", user.ID, "entry_id", entry.ID)

	if err := sendText(h.api, chatID, "✅ Запись сохранена\n"+menus.FormatEntry(*entry, user.Location())); err != nil {
		return err
	}
	return menus.SendMainMenu(h.api, chatID)
}

func (h *TextHandler) handleDoseCarbs(ctx context.Context, chatID int64, user *domain.User, text string) error {
	carbs, err := dosing.ParseAmount(text)
	if err != nil {
		return sendText(h.api, chatID, "Введите количество углеводов числом (например: 45) или «-»")
	}
	glucoseText, _ := h.stateManager.GetTempData(user.TelegramID, state.KeyGlucose)
	glucose, err := strconv.Atoi(glucoseText)
	if err != nil {
		resetUser(h.stateManager, user.TelegramID)
		return sendText(h.api, chatID, "Расчет устарел. Начните заново через \"💉 Рассчитать дозу\".")
	}

	var grams float64
	if carbs != nil {
		grams = *carbs
	}
	return sendSuggestion(ctx, h.api, h.deps, h.stateManager, chatID, user, glucose, grams)
}

func (h *TextHandler) handleCarbRatio(chatID int64, user *domain.User, text string) error {
	if _, ok := dosing.ParseRatio(text); !ok {
		return sendText(h.api, chatID, "Коэффициент должен быть положительным числом (например: 10)")
	}
	h.stateManager.SetTempData(user.TelegramID, state.KeyCarbRatio, text)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForGlucoseRatio)
	return sendText(h.api, chatID, "📉 На сколько мг/дл 1 единица инсулина снижает сахар? (например: 50)")
}

func (h *TextHandler) handleGlucoseRatio(ctx context.Context, chatID int64, user *domain.User, text string) error {
	carbRatio, _ := h.stateManager.GetTempData(user.TelegramID, state.KeyCarbRatio)
	settings, err := h.deps.Settings.Save(ctx, user.ID, carbRatio, text)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "Коэффициент должен быть положительным числом (например: 50)")
	}
	resetUser(h.stateManager, user.TelegramID)

	if err := sendText(h.api, chatID, "✅ Коэффициенты сохранены"); err != nil {
		return err
	}
	return menus.SendSettingsMenu(h.api, chatID, settings, user.Timezone)
}

func (h *TextHandler) handleTimezone(ctx context.Context, chatID int64, user *domain.User, text string) error {
	if err := h.deps.Users.SetTimezone(ctx, user.ID, text); err != nil {
		return replyError(ctx, h.api, chatID, err, "Неизвестный часовой пояс. Пример: Europe/Moscow")
	}
	resetUser(h.stateManager, user.TelegramID)
	user.Timezone = text

	settings, err := h.deps.Settings.Resolved(ctx, user.ID)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	return menus.SendSettingsMenu(h.api, chatID, settings, user.Timezone)
}

func (h *TextHandler) handleAlarm(ctx context.Context, chatID int64, user *domain.User, text string) error {
	if _, err := h.deps.Alarms.AddFromText(ctx, user.ID, text); err != nil {
		return replyError(ctx, h.api, chatID, err, "Неверный формат. Введите время и подпись: ЧЧ:ММ текст (например: 08:00 Измерить сахар)")
	}
	resetUser(h.stateManager, user.TelegramID)

	alarms, err := h.deps.Alarms.List(ctx, user.ID)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "")
	}
	return menus.SendAlarmsMenu(h.api, chatID, alarms)
}
