package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-companion/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-companion/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             menus.Sender
	deps            Dependencies
	stateManager    state.StateManager
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	photoHandler    *PhotoHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		deps:            deps,
		stateManager:    stateManager,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
		photoHandler:    NewPhotoHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	var from *tgbotapi.User
	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	case update.Message != nil:
		from = update.Message.From
	}
	if from == nil {
		return nil
	}

	user, err := h.deps.Users.RegisterUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		logger.Error("Error getting/creating user", "telegram_id", from.ID, "error", err)
		return fmt.Errorf("failed to get/create user: %w", err)
	}

	if update.CallbackQuery != nil {
		if update.CallbackQuery.Message == nil {
			return nil
		}
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, user)
	}

	message := update.Message
	switch {
	case message.IsCommand():
		return h.commandHandler.Handle(ctx, message, user)
	case len(message.Photo) > 0:
		return h.photoHandler.Handle(ctx, message, user)
	case message.Text != "":
		return h.textHandler.Handle(ctx, message, user)
	}
	return nil
}
