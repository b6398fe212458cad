package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

const helpText = `Доступные команды:
/start - Показать главное меню
/cancel - Отменить текущее действие
/help - Показать это сообщение

Как рассчитать дозу:
1. Нажмите кнопку "💉 Рассчитать дозу"
2. Введите текущий сахар в мг/дл
3. Введите углеводы в граммах или отправьте фото еды
   (вес блюда можно указать в подписи, например: 150)

Коэффициенты задаются в разделе "⚙️ Настройки".`

// CommandHandler handles bot commands
type CommandHandler struct {
	api          menus.Sender
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api menus.Sender, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	logger.Info("Handling command", "command", message.Command(), "user_id", user.ID)

	switch message.Command() {
	case "start", "cancel":
		resetUser(h.stateManager, user.TelegramID)
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "help":
		return sendText(h.api, message.Chat.ID, helpText)
	default:
		return sendText(h.api, message.Chat.ID, "Неизвестная команда. Используйте /help для списка команд.")
	}
}
