package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
)

// Module provides metrics for fx DI
var Module = fx.Module("metrics",
	fx.Provide(func() *Metrics {
		return New(prometheus.DefaultRegisterer)
	}),
	fx.Provide(func(m *Metrics) deps.Recorder { return m }),
)
