package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
)

// Module provides the moderation event producer for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewProducer),
	fx.Provide(func(p *EventProducer) deps.EventPublisher { return p }),
	fx.Invoke(func(lc fx.Lifecycle, p *EventProducer) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return p.Close()
			},
		})
	}),
)
