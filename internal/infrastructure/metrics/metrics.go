// Package metrics contains Prometheus metrics of the moderation bot
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// Metrics holds all Prometheus metrics of the moderation bot.
// It implements deps.Recorder.
type Metrics struct {
	// Draft and review metrics
	DraftsStarted        prometheus.Counter
	SubmissionsCreated   *prometheus.CounterVec
	SubmissionsPublished prometheus.Counter
	SubmissionsRejected  prometheus.Counter
	PublishConflicts     prometheus.Counter

	// Anonymous reply metrics
	AnonymousReplies *prometheus.CounterVec
	DiscussionLinks  prometheus.Counter
	PendingReplies   prometheus.Gauge

	// Platform metrics
	CollaboratorErrors *prometheus.CounterVec
}

// New creates the metrics and registers them in reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DraftsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_bot_drafts_started_total",
			Help: "Total number of drafts started",
		}),
		SubmissionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_bot_submissions_total",
				Help: "Total number of submissions posted for review",
			},
			[]string{"classification"},
		),
		SubmissionsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_bot_submissions_published_total",
			Help: "Total number of submissions published to the channel",
		}),
		SubmissionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_bot_submissions_rejected_total",
			Help: "Total number of rejected submissions",
		}),
		PublishConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_bot_publish_conflicts_total",
			Help: "Total number of review actions on submissions already handled",
		}),

		AnonymousReplies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_bot_anonymous_replies_total",
				Help: "Total number of anonymous replies by result",
			},
			[]string{"result"},
		),
		DiscussionLinks: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_bot_discussion_links_total",
			Help: "Total number of channel posts linked to their discussion thread",
		}),
		PendingReplies: factory.NewGauge(prometheus.GaugeOpts{
			Name: "moderation_bot_pending_anonymous_replies",
			Help: "Current number of users about to reply anonymously",
		}),

		CollaboratorErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_bot_collaborator_errors_total",
				Help: "Total number of failed messaging platform calls",
			},
			[]string{"operation"},
		),
	}
}

// DraftStarted records a started draft
func (m *Metrics) DraftStarted() {
	m.DraftsStarted.Inc()
}

// SubmissionCreated records a submission posted for review
func (m *Metrics) SubmissionCreated(classification entities.Classification) {
	m.SubmissionsCreated.WithLabelValues(string(classification)).Inc()
}

// SubmissionPublished records a published submission
func (m *Metrics) SubmissionPublished() {
	m.SubmissionsPublished.Inc()
}

// SubmissionRejected records a rejected submission
func (m *Metrics) SubmissionRejected() {
	m.SubmissionsRejected.Inc()
}

// PublishConflict records a review action that lost the race
func (m *Metrics) PublishConflict() {
	m.PublishConflicts.Inc()
}

// AnonymousReply records an anonymous reply outcome
func (m *Metrics) AnonymousReply(result string) {
	m.AnonymousReplies.WithLabelValues(result).Inc()
}

// DiscussionLinked records a new discussion link
func (m *Metrics) DiscussionLinked() {
	m.DiscussionLinks.Inc()
}

// CollaboratorError records a failed platform call
func (m *Metrics) CollaboratorError(operation string) {
	if operation == "" {
		operation = "unknown"
	}
	m.CollaboratorErrors.WithLabelValues(operation).Inc()
}

// SetPendingReplies sets the number of pending anonymous replies
func (m *Metrics) SetPendingReplies(n int) {
	m.PendingReplies.Set(float64(n))
}
