package handlers

import (
	"context"
	"fmt"
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

// PhotoHandler handles photo messages
type PhotoHandler struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *PhotoHandler {
	return &PhotoHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle estimates carbs from a food photo while a dose is being calculated
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	chatID := message.Chat.ID

	if h.deps.Carbs == nil {
		return sendText(h.api, chatID, "Распознавание фото не настроено. Введите углеводы числом.")
	}
	if h.stateManager.GetUserState(user.TelegramID) != state.DoseWaitingForCarbs {
		return sendText(h.api, chatID, "Чтобы посчитать углеводы по фото, начните с \"💉 Рассчитать дозу\".")
	}

	glucoseText, _ := h.stateManager.GetTempData(user.TelegramID, state.KeyGlucose)
	glucose, err := strconv.Atoi(glucoseText)
	if err != nil {
		resetUser(h.stateManager, user.TelegramID)
		return sendText(h.api, chatID, "Расчет устарел. Начните заново через \"💉 Рассчитать дозу\".")
	}

	// weight from the caption, zero lets the model estimate it
	var weight float64
	if message.Caption != "" {
		w, err := dosing.ParseAmount(message.Caption)
		if err != nil {
			return sendText(h.api, chatID, "Неверный формат веса. Пожалуйста, укажите вес в граммах (например: 150).")
		}
		if w != nil {
			weight = *w
		}
	}

	if err := sendText(h.api, chatID, "Анализирую изображение..."); err != nil {
		return fmt.Errorf("failed to send processing message: %w", err)
	}

	// Get the largest photo
	photo := message.Photo[len(message.Photo)-1]
	url, err := h.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		return replyError(ctx, h.api, chatID, fmt.Errorf("failed to get file: %w", err), "")
	}
	image, err := services.FetchImage(ctx, h.deps.HTTPClient, url)
	if err != nil {
		return replyError(ctx, h.api, chatID, err, "Изображение слишком большое.")
	}

	logger.Info("Starting carb estimation", "user_id", user.ID, "weight", weight)
	estimate, err := h.deps.Carbs.EstimateCarbs(ctx, image, weight)
	if err != nil {
		logger.Error("Carb estimation failed", "user_id", user.ID, "error", err)
		return sendText(h.api, chatID, "Извините, не удалось распознать блюдо. Введите углеводы числом.")
	}

	if err := sendText(h.api, chatID, formatEstimate(estimate)); err != nil {
		return err
	}
	return sendSuggestion(ctx, h.api, h.deps, h.stateManager, chatID, user, glucose, estimate.Carbs)
}

func formatEstimate(e *services.CarbEstimate) string {
	var b strings.Builder
	b.WriteString("🍽️ ")
	if len(e.FoodItems) > 0 {
		b.WriteString(strings.Join(e.FoodItems, ", "))
	} else {
		b.WriteString("Блюдо")
	}
	switch {
	case e.WeightEstimated:
		fmt.Fprintf(&b, "\nВес: ≈%s г (оценка по фото)", menus.FormatNumber(e.Weight))
	case e.Weight > 0:
		fmt.Fprintf(&b, "\nВес: %s г", menus.FormatNumber(e.Weight))
	}
	fmt.Fprintf(&b, "\nУглеводы: %s г", menus.FormatNumber(e.Carbs))
	if e.Confidence != "" {
		fmt.Fprintf(&b, " (уверенность: %s)", e.Confidence)
	}
	if e.AnalysisText != "" {
		b.WriteString("\n\n" + e.AnalysisText)
	}
	return b.String()
}
