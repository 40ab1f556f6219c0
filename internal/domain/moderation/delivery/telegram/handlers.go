// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/usecase/business"
	pkgerrors "github.com/Conte777/moderation-bot/pkg/errors"
)

// HandleTimeout bounds the work done for one update
const HandleTimeout = 60 * time.Second

// Handlers maps platform updates to use case calls
type Handlers struct {
	uc     *business.UseCase
	logger zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *business.UseCase, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		logger: logger.With().Str("component", "telegram-handlers").Logger(),
	}
}

// HandleMessage handles every conversation message: commands, drafts, reasons and discussion echoes
func (h *Handlers) HandleMessage(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := toIncomingMessage(update.Message)

	ctx, cancel := context.WithTimeout(ctx, HandleTimeout)
	defer cancel()

	if err := h.uc.HandleIncomingMessage(ctx, msg); err != nil {
		h.logError(msg.From.ID, "message", err)
		return
	}

	if msg.Command != "" {
		h.logger.Debug().
			Int64("user_id", msg.From.ID).
			Int64("chat_id", msg.Key.ChatID).
			Str("command", msg.Command).
			Msg("Command handled")
	}
}

// HandleCallback handles pressed inline controls
func (h *Handlers) HandleCallback(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	action := toIncomingAction(update.CallbackQuery)

	ctx, cancel := context.WithTimeout(ctx, HandleTimeout)
	defer cancel()

	if err := h.uc.HandleIncomingAction(ctx, action); err != nil {
		h.logError(action.From.ID, "callback", err)
	}
}

// HandleJoinRequest handles channel join requests
func (h *Handlers) HandleJoinRequest(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	req := toIncomingJoinRequest(update.ChatJoinRequest)

	ctx, cancel := context.WithTimeout(ctx, HandleTimeout)
	defer cancel()

	if err := h.uc.HandleJoinRequest(ctx, req); err != nil {
		h.logError(req.From.ID, "join_request", err)
	}
}

func (h *Handlers) logError(userID int64, update string, err error) {
	h.logger.WithLevel(logLevel(err)).
		Err(err).
		Int64("user_id", userID).
		Str("update", update).
		Str("error_type", pkgerrors.TypeOf(err).String()).
		Msg("Failed to handle update")
}

// logLevel keeps refusals the user caused below error level
func logLevel(err error) zerolog.Level {
	if pkgerrors.IsInternalError(err) {
		return zerolog.ErrorLevel
	}
	switch pkgerrors.TypeOf(err) {
	case pkgerrors.ErrorTypeValidation, pkgerrors.ErrorTypeNotFound, pkgerrors.ErrorTypeConflict, pkgerrors.ErrorTypePermission:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
