// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/Conte777/moderation-bot/config"
	"github.com/Conte777/moderation-bot/internal/domain"
	"github.com/Conte777/moderation-bot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, kafka, telegram bot, http server)
		infrastructure.Module,

		// Domain (moderation flow)
		domain.Module,
	)
}
