// Package moderation contains the moderation domain module
package moderation

import (
	"go.uber.org/fx"

	telegramDelivery "github.com/Conte777/moderation-bot/internal/domain/moderation/delivery/telegram"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/repository/memory"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/usecase/business"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/workers"
	"github.com/Conte777/moderation-bot/internal/infrastructure/telegram"
)

// Module provides moderation domain components for fx dependency injection
var Module = fx.Module("moderation",
	// Repository
	fx.Provide(func() deps.Store { return memory.NewStore() }),

	// UseCase
	fx.Provide(business.NewUseCase),

	// Delivery - Telegram
	fx.Provide(telegramDelivery.NewHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Workers
	workers.Module,

	fx.Invoke(registerRoutes),
)

// registerRoutes registers update routes on the raw bot before it starts receiving updates
func registerRoutes(router *telegramDelivery.Router, bot *telegram.Bot) {
	router.RegisterRoutes(bot.Raw())
}
