package telegram

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers the update handlers on the bot.
// Commands are routed inside the use case, so a message handler sees every message.
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	bot.RegisterHandlerMatchFunc(isMessage, r.handlers.HandleMessage)
	bot.RegisterHandlerMatchFunc(isCallback, r.handlers.HandleCallback)
	bot.RegisterHandlerMatchFunc(isJoinRequest, r.handlers.HandleJoinRequest)

	r.logger.Info().Msg("All Telegram update handlers registered successfully")
}

func isMessage(update *models.Update) bool {
	return update.Message != nil
}

func isCallback(update *models.Update) bool {
	return update.CallbackQuery != nil
}

func isJoinRequest(update *models.Update) bool {
	return update.ChatJoinRequest != nil
}
