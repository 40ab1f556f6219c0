// Package http wires the HTTP server into the application
package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/moderation-bot/config"
	httpDelivery "github.com/Conte777/moderation-bot/internal/delivery/http"
	"github.com/Conte777/moderation-bot/internal/infrastructure/http/server"
	"github.com/Conte777/moderation-bot/internal/infrastructure/kafka"
	"github.com/Conte777/moderation-bot/internal/infrastructure/telegram"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewHealthHandlerFx),
	fx.Provide(NewServerFx),
	fx.Invoke(func(*server.Server) {}),
)

// NewHealthHandlerFx creates the health handler over the bot and the event stream
func NewHealthHandlerFx(bot *telegram.Bot, events *kafka.EventProducer, logger zerolog.Logger) *httpDelivery.HealthHandler {
	return httpDelivery.NewHealthHandler(bot, events, logger)
}

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	telegramCfg *config.TelegramConfig,
	bot *telegram.Bot,
	health *httpDelivery.HealthHandler,
	logger zerolog.Logger,
) *server.Server {
	srv := server.NewServer(serviceCfg.Name, serviceCfg.Port, logger)

	srv.RegisterMetrics()
	srv.RegisterHealth(health)
	if telegramCfg.WebhookEnabled() {
		srv.RegisterWebhook(telegramCfg.WebhookPath, bot.WebhookHandler())
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
