// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
)

// Module provides Telegram bot and messenger for fx dependency injection
var Module = fx.Module("telegram",
	fx.Provide(NewBot),
	fx.Provide(NewMessenger),
	fx.Provide(func(m *Messenger) deps.Messenger { return m }),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle registers bot lifecycle hooks
func registerLifecycle(lc fx.Lifecycle, bot *Bot, messenger *Messenger, logger zerolog.Logger) {
	var cancel context.CancelFunc
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			// deep links need the username; without it posts go out without the reply button
			if err := messenger.ResolveUsername(startCtx); err != nil {
				logger.Warn().Err(err).Msg("Bot username is unknown")
			}

			// Create a long-lived context for the bot
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			// Start bot in a goroutine since it's a blocking call
			go func() {
				defer close(done)
				if err := bot.Start(ctx); err != nil {
					logger.Error().Err(err).Msg("Telegram bot failed")
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			if cancel != nil {
				cancel()
				select {
				case <-done:
				case <-stopCtx.Done():
				}
			}
			return bot.Stop()
		},
	})
}
