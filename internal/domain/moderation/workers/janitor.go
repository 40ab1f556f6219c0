// Package workers contains background workers for the moderation domain
package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/moderation-bot/config"
)

// ReplyPurger drops anonymous reply state that outlived its deadline
type ReplyPurger interface {
	PurgeExpiredReplies(now time.Time) int
	PurgeExpiredLinks(now time.Time) int
}

// PendingReplyJanitor periodically purges expired pending anonymous replies and discussion links
type PendingReplyJanitor struct {
	purger   ReplyPurger
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPendingReplyJanitor creates the janitor
func NewPendingReplyJanitor(cfg *config.ModerationConfig, purger ReplyPurger, logger zerolog.Logger) *PendingReplyJanitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &PendingReplyJanitor{
		purger:   purger,
		interval: cfg.JanitorInterval,
		now:      time.Now,
		logger:   logger.With().Str("component", "reply-janitor").Logger(),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the purge loop
func (j *PendingReplyJanitor) Start() {
	j.logger.Info().Dur("interval", j.interval).Msg("Starting pending reply janitor...")
	go j.run()
}

func (j *PendingReplyJanitor) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			j.logger.Info().Msg("Pending reply janitor stopped")
			return
		case <-ticker.C:
			now := j.now()
			j.purger.PurgeExpiredReplies(now)
			j.purger.PurgeExpiredLinks(now)
		}
	}
}

// Stop stops the purge loop and waits for it to exit
func (j *PendingReplyJanitor) Stop() error {
	j.logger.Info().Msg("Stopping pending reply janitor...")
	j.cancel()
	<-j.done
	return nil
}
