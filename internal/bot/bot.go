package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/handlers"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
}

func NewBot(token string, deps handlers.Dependencies, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot authorized", "account", api.Self.UserName)
	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, deps, stateManager),
	}, nil
}

// Start polls Telegram until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	logger.Info("Bot is now listening for updates")
	Serve(ctx, b.handler, updates)
	logger.Info("Bot is shutting down")
	return nil
}

// Serve handles updates one at a time until ctx is done or updates is closed
func Serve(ctx context.Context, handler *handlers.UpdateHandler, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := handler.Handle(ctx, update); err != nil {
				logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
