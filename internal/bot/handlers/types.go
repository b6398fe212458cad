package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/interfaces"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	interfaces.Services

	// HTTPClient downloads food photos; nil means http.DefaultClient
	HTTPClient *http.Client
}

const genericErrorText = "Произошла ошибка. Пожалуйста, попробуйте еще раз."

func sendText(api menus.Sender, chatID int64, text string) error {
	_, err := api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// replyError logs unexpected failures and tells the user something went wrong.
// Validation errors are the user's to fix, so their text hint is sent instead.
func replyError(ctx context.Context, api menus.Sender, chatID int64, err error, hint string) error {
	if errors.Is(err, apperrors.ErrValidation) && hint != "" {
		return sendText(api, chatID, hint)
	}
	apperrors.NewHandler(logger.GetLogger()).Handle(ctx, err)
	return sendText(api, chatID, genericErrorText)
}

func resetUser(sm state.StateManager, telegramID int64) {
	sm.ClearUserState(telegramID)
	sm.ClearTempData(telegramID)
}

// sendSuggestion computes a dose and keeps its inputs until the user saves or leaves
func sendSuggestion(ctx context.Context, api menus.Sender, deps Dependencies, sm state.StateManager, chatID int64, user *domain.User, glucose int, carbs float64) error {
	result, err := deps.Dose.Suggest(ctx, user.ID, glucose, carbs)
	if err != nil {
		return replyError(ctx, api, chatID, err, "Углеводы должны быть неотрицательным числом.")
	}

	sm.SetTempData(user.TelegramID, state.KeyGlucose, strconv.Itoa(glucose))
	sm.SetTempData(user.TelegramID, state.KeyCarbs, strconv.FormatFloat(carbs, 'f', -1, 64))
	sm.SetUserState(user.TelegramID, state.DoseReady)

	logger.Info("Dose suggested",
		"user_id", user.ID,
		"blood_glucose", glucose,
		"carbs", carbs,
		"units", result.Suggestion.Units,
		"needs_dose", result.Suggestion.NeedsDose,
	)

	msg := tgbotapi.NewMessage(chatID, menus.FormatSuggestion(result))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboards.DoseMenu(result.Suggestion.NeedsDose)
	_, err = api.Send(msg)
	return err
}
