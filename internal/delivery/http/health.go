// Package http contains HTTP delivery of the moderation bot
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// BotHealthChecker reports whether the bot receives updates
type BotHealthChecker interface {
	Running() bool
}

// EventStreamHealthChecker reports whether moderation events reach the broker
type EventStreamHealthChecker interface {
	Enabled() bool
	IsHealthy() bool
}

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`

	// critical components make the whole service unhealthy
	critical bool
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	bot    BotHealthChecker
	events EventStreamHealthChecker
	logger zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(bot BotHealthChecker, events EventStreamHealthChecker, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		bot:    bot,
		events: events,
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// ServeHTTP implements http.Handler interface
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := h.checkComponents(ctx)
	status := determineOverallStatus(components)

	response := HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	}

	statusCode := http.StatusOK
	if status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	logEvent := h.logger.Debug()
	if status == HealthStatusUnhealthy {
		logEvent = h.logger.Warn()
	} else if status == HealthStatusDegraded {
		logEvent = h.logger.Info()
	}
	logEvent.
		Str("status", string(status)).
		Int("status_code", statusCode).
		Interface("components", components).
		Msg("Health check completed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Headers already sent, only log errors
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health check response")
	}
}

func (h *HealthHandler) checkComponents(ctx context.Context) []ComponentHealth {
	select {
	case <-ctx.Done():
		return []ComponentHealth{{
			Name:     "health_check",
			Healthy:  false,
			Message:  "Health check timeout",
			critical: true,
		}}
	default:
	}

	components := make([]ComponentHealth, 0, 2)

	bot := ComponentHealth{Name: "telegram_bot", Healthy: h.bot.Running(), critical: true}
	if !bot.Healthy {
		bot.Message = "Bot is not receiving updates"
	}
	components = append(components, bot)

	events := ComponentHealth{Name: "event_stream", Healthy: h.events.IsHealthy()}
	switch {
	case !h.events.Enabled():
		events.Message = "Disabled"
	case !events.Healthy:
		events.Message = "Recent events failed to reach Kafka"
	}
	components = append(components, events)

	return components
}

// determineOverallStatus is unhealthy when a critical component fails, degraded when any other does
func determineOverallStatus(components []ComponentHealth) HealthStatus {
	status := HealthStatusHealthy
	for _, component := range components {
		if component.Healthy {
			continue
		}
		if component.critical {
			return HealthStatusUnhealthy
		}
		status = HealthStatusDegraded
	}
	return status
}
