// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Conte777/moderation-bot/config"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
)

// Bot wraps the Telegram bot for infrastructure layer
type Bot struct {
	bot     *tgbot.Bot
	cfg     *config.TelegramConfig
	logger  zerolog.Logger
	running atomic.Bool
}

// NewBot creates a new Telegram bot wrapper
func NewBot(cfg *config.TelegramConfig, logger zerolog.Logger) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	b := &Bot{
		cfg:    cfg,
		logger: logger.With().Str("component", "telegram-bot").Logger(),
	}

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(b.defaultHandler),
	}
	if cfg.WebhookSecret != "" {
		opts = append(opts, tgbot.WithWebhookSecretToken(cfg.WebhookSecret))
	}

	bot, err := tgbot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.bot = bot

	b.logger.Info().Bool("webhook", cfg.WebhookEnabled()).Msg("Telegram bot created successfully")

	return b, nil
}

// Raw returns the underlying telegram bot for handler registration
func (b *Bot) Raw() *tgbot.Bot {
	return b.bot
}

// WebhookHandler returns the HTTP handler that feeds webhook updates to the bot
func (b *Bot) WebhookHandler() http.Handler {
	return b.bot.WebhookHandler()
}

// Running reports whether the bot is receiving updates
func (b *Bot) Running() bool {
	return b.running.Load()
}

// Start receives updates until ctx is cancelled (blocking call).
// Updates come by webhook when a webhook URL is configured, by long polling otherwise.
func (b *Bot) Start(ctx context.Context) error {
	b.registerCommands(ctx)

	b.running.Store(true)
	defer b.running.Store(false)

	if b.cfg.WebhookEnabled() {
		_, err := b.bot.SetWebhook(ctx, &tgbot.SetWebhookParams{
			URL:         b.cfg.WebhookURL(),
			SecretToken: b.cfg.WebhookSecret,
		})
		if err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}

		b.logger.Info().Str("url", b.cfg.WebhookURL()).Msg("Starting Telegram bot in webhook mode...")
		b.bot.StartWebhook(ctx)
		b.logger.Info().Msg("Telegram bot stopped")
		return nil
	}

	// polling does not work while a webhook is set
	if _, err := b.bot.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{}); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to delete webhook")
	}

	b.logger.Info().Msg("Starting Telegram bot...")
	b.bot.Start(ctx)
	b.logger.Info().Msg("Telegram bot stopped")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() error {
	b.logger.Info().Msg("Stopping Telegram bot...")
	return nil
}

func (b *Bot) registerCommands(ctx context.Context) {
	commands := make([]models.BotCommand, 0, len(consts.AllCommands))
	for _, c := range consts.AllCommands {
		commands = append(commands, models.BotCommand{Command: c.Name, Description: c.Description})
	}

	if _, err := b.bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: commands}); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to register bot commands")
	}
}

// defaultHandler receives updates no route matched: edits, channel posts and the like
func (b *Bot) defaultHandler(_ context.Context, _ *tgbot.Bot, update *models.Update) {
	b.logger.Debug().Int64("update_id", update.ID).Msg("Update ignored")
}
