package workers

import (
	"context"

	"go.uber.org/fx"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/usecase/business"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("moderation-workers",
	fx.Provide(func(uc *business.UseCase) ReplyPurger { return uc }),
	fx.Provide(NewPendingReplyJanitor),
	fx.Invoke(registerJanitorLifecycle),
)

// registerJanitorLifecycle registers janitor lifecycle hooks
func registerJanitorLifecycle(lc fx.Lifecycle, janitor *PendingReplyJanitor) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			janitor.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return janitor.Stop()
		},
	})
}
