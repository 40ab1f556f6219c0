// Package business contains business logic for the moderation domain
package business

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/moderation-bot/config"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
	pkgerrors "github.com/Conte777/moderation-bot/pkg/errors"
)

// UseCase contains the moderation flow: drafts, review, anonymous replies and channel access
type UseCase struct {
	messenger deps.Messenger
	store     deps.Store
	events    deps.EventPublisher
	metrics   deps.Recorder
	cfg       *config.ModerationConfig
	logger    zerolog.Logger

	locks *userLocks
	now   func() time.Time
}

// NewUseCase creates a new UseCase instance
func NewUseCase(
	messenger deps.Messenger,
	store deps.Store,
	events deps.EventPublisher,
	metrics deps.Recorder,
	cfg *config.ModerationConfig,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		messenger: messenger,
		store:     store,
		events:    events,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger.With().Str("component", "moderation-usecase").Logger(),
		locks:     newUserLocks(),
		now:       time.Now,
	}
}

// HandleIncomingMessage handles one conversation message.
// Events of the same user are handled one at a time.
func (uc *UseCase) HandleIncomingMessage(ctx context.Context, msg *dto.IncomingMessage) error {
	unlock := uc.locks.Lock(msg.From.ID)
	defer unlock()

	if uc.captureDiscussionLink(ctx, msg) {
		return nil
	}

	if msg.Command != "" {
		return uc.handleCommand(ctx, msg)
	}

	if msg.IsPrivate() && msg.IsText() {
		switch strings.TrimSpace(msg.Content.Text) {
		case consts.ButtonPropose:
			return uc.ProposeTopic(ctx, msg)
		case consts.ButtonRequestAccess:
			return uc.RequestAccess(ctx, msg)
		}

		if handled, err := uc.relayAnonymousReply(ctx, msg); handled {
			return err
		}
	}

	if msg.Key.ChatID == uc.cfg.AdminChatID && msg.From.ID != 0 {
		if handled, err := uc.handleRejectionReason(ctx, msg); handled {
			return err
		}
	}

	if msg.IsPrivate() {
		return uc.handleDraftMessage(ctx, msg)
	}

	return nil
}

// HandleIncomingAction handles a pressed inline control.
// Every action is acknowledged exactly once, whatever the outcome.
func (uc *UseCase) HandleIncomingAction(ctx context.Context, action *dto.IncomingAction) error {
	unlock := uc.locks.Lock(action.From.ID)
	defer unlock()

	payload, err := dto.ParseActionPayload(action.Data)
	if err != nil {
		uc.logger.Debug().
			Err(err).
			Int64("user_id", action.From.ID).
			Str("data", action.Data).
			Msg("Ignoring malformed action payload")
		uc.acknowledge(ctx, action, "")
		return nil
	}

	if consts.AdminActions[payload.Type] {
		if err := uc.authorizeAdminAction(action); err != nil {
			ack := consts.AckAlreadyHandled
			if pkgerrors.IsPermissionError(err) {
				ack = consts.AckNoAccess
				uc.logger.Warn().
					Err(err).
					Int64("user_id", action.From.ID).
					Int64("chat_id", action.Message.ChatID).
					Str("action", payload.Type).
					Msg("Admin action refused")
			}
			uc.acknowledge(ctx, action, ack)
			return nil
		}
	}

	var ack string
	switch payload.Type {
	case consts.ActionComposeDone:
		ack, err = uc.FinishDraft(ctx, action.From.ID, action.From.ID)
	case consts.ActionComposeCancel:
		ack, err = uc.CancelDraft(ctx, action.From.ID, action.From.ID)
	case consts.ActionChoose:
		ack, err = uc.chooseClassification(ctx, action, payload)
	case consts.ActionPublish:
		ack, err = uc.Publish(ctx, action.Message, action.From)
	case consts.ActionReject:
		ack, err = uc.Reject(ctx, action.Message, action.From)
	case consts.ActionApprove:
		ack, err = uc.ApproveJoinRequest(ctx, action.Message, payload)
	case consts.ActionDecline:
		ack, err = uc.DeclineJoinRequest(ctx, action.Message, payload)
	case consts.ActionUnban:
		ack, err = uc.UnbanUser(ctx, action.Message, payload)
	default:
		uc.logger.Debug().
			Int64("user_id", action.From.ID).
			Str("action", payload.Type).
			Msg("Unknown action type")
		ack = consts.AckUnknown
	}

	uc.acknowledge(ctx, action, ack)
	return err
}

// HandleJoinRequest posts an approve/decline card for a channel join request
func (uc *UseCase) HandleJoinRequest(ctx context.Context, req *dto.IncomingJoinRequest) error {
	uc.logger.Info().
		Int64("user_id", req.From.ID).
		Int64("chat_id", req.ChatID).
		Msg("Channel join request received")

	markup := &entities.Markup{Inline: [][]entities.Button{{
		{Text: consts.ButtonApprove, Data: dto.ActionPayload{Type: consts.ActionApprove, ChatID: req.ChatID, UserID: req.From.ID}.Encode()},
		{Text: consts.ButtonDecline, Data: dto.ActionPayload{Type: consts.ActionDecline, ChatID: req.ChatID, UserID: req.From.ID}.Encode()},
	}}}

	_, err := uc.messenger.SendText(ctx, uc.cfg.AdminChatID, fmtUser(consts.TextJoinRequest, req.From), deps.SendOptions{Markup: markup})
	if err != nil {
		return uc.collaboratorFailure(err, "send_join_request_card", req.From.ID)
	}
	return nil
}

// PurgeExpiredReplies drops pending anonymous replies older than the configured TTL
func (uc *UseCase) PurgeExpiredReplies(now time.Time) int {
	purged := uc.store.PurgeExpiredReplies(now.Add(-uc.cfg.AnonReplyTTL))
	uc.syncPendingGauge()
	if purged > 0 {
		uc.logger.Info().Int("purged", purged).Msg("Expired pending anonymous replies purged")
	}
	return purged
}

// PurgeExpiredLinks forgets discussion links older than the configured TTL
func (uc *UseCase) PurgeExpiredLinks(now time.Time) int {
	purged := uc.store.PurgeExpiredLinks(now.Add(-uc.cfg.DiscussionLinkTTL))
	if purged > 0 {
		uc.logger.Info().Int("purged", purged).Msg("Expired discussion links purged")
	}
	return purged
}

func (uc *UseCase) handleCommand(ctx context.Context, msg *dto.IncomingMessage) error {
	switch msg.Command {
	case consts.CommandStart.Name:
		if token := strings.TrimSpace(msg.CommandArgs); token != "" {
			return uc.OnDeepLinkEntry(ctx, msg.From.ID, msg.Key.ChatID, token)
		}
		uc.reply(ctx, msg.Key.ChatID, consts.TextGreeting, deps.SendOptions{})
		if msg.IsPrivate() {
			return uc.showMenu(ctx, msg.Key.ChatID, msg.From.ID, "")
		}
		return nil
	case consts.CommandCancel.Name:
		return uc.handleCancelCommand(ctx, msg)
	case consts.CommandDone.Name:
		if !msg.IsPrivate() {
			return nil
		}
		text, err := uc.FinishDraft(ctx, msg.From.ID, msg.Key.ChatID)
		if text != "" {
			uc.reply(ctx, msg.Key.ChatID, text, deps.SendOptions{})
		}
		return err
	case consts.CommandID.Name:
		uc.reply(ctx, msg.Key.ChatID, fmt.Sprintf(consts.TextChatID, msg.Key.ChatID), deps.SendOptions{})
		return nil
	default:
		// unknown commands are treated as ordinary messages
		if msg.IsPrivate() {
			return uc.handleDraftMessage(ctx, msg)
		}
		return nil
	}
}

func (uc *UseCase) handleCancelCommand(ctx context.Context, msg *dto.IncomingMessage) error {
	if msg.Key.ChatID == uc.cfg.AdminChatID {
		if rc, ok := uc.store.CancelRejectionByAdmin(msg.From.ID); ok {
			uc.store.ReleaseSubmission(rc.SubmissionID)
			uc.logger.Info().
				Int64("user_id", msg.From.ID).
				Str("submission_id", rc.SubmissionID.String()).
				Msg("Rejection cancelled by admin")
			uc.reply(ctx, uc.cfg.AdminChatID, consts.TextRejectCancelled, deps.SendOptions{ReplyTo: rc.ReviewCard.MessageID})
			return nil
		}
	}

	if !msg.IsPrivate() {
		return nil
	}

	_, err := uc.CancelDraft(ctx, msg.From.ID, msg.Key.ChatID)
	return err
}

// authorizeAdminAction checks that a review control was pressed on a card in the admin chat
func (uc *UseCase) authorizeAdminAction(action *dto.IncomingAction) error {
	if action.Message.IsZero() {
		return moderrors.ErrSubmissionNotFound
	}
	if action.Message.ChatID != uc.cfg.AdminChatID {
		return moderrors.ErrNotAdminChat
	}
	return nil
}

// acknowledge answers the action; stale actions are only worth a debug line
func (uc *UseCase) acknowledge(ctx context.Context, action *dto.IncomingAction, text string) {
	err := uc.messenger.AcknowledgeAction(ctx, action.ID, text)
	if err == nil {
		return
	}
	if errors.Is(err, moderrors.ErrActionExpired) {
		uc.logger.Debug().Err(err).Str("action_id", action.ID).Msg("Action expired before acknowledgement")
		return
	}
	uc.metrics.CollaboratorError("acknowledge_action")
	uc.logger.Warn().Err(err).Str("action_id", action.ID).Msg("Failed to acknowledge action")
}

// reply sends a best-effort message; failures are logged and counted
func (uc *UseCase) reply(ctx context.Context, chatID int64, text string, opts deps.SendOptions) int {
	id, err := uc.messenger.SendText(ctx, chatID, text, opts)
	if err != nil {
		uc.metrics.CollaboratorError("send_text")
		uc.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
		return 0
	}
	return id
}

// collaboratorFailure logs a failed platform call and wraps it into a domain error
func (uc *UseCase) collaboratorFailure(err error, operation string, userID int64) error {
	uc.metrics.CollaboratorError(operation)
	uc.logger.Error().
		Err(err).
		Str("operation", operation).
		Int64("user_id", userID).
		Msg("Messaging platform call failed")
	return fmt.Errorf("%w: %s: %w", moderrors.ErrCollaborator, operation, err)
}

func (uc *UseCase) publishEvent(ctx context.Context, event *entities.ModerationEvent) {
	if uc.events == nil {
		return
	}
	event.OccurredAt = uc.now()
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn().
			Err(err).
			Str("event", string(event.Type)).
			Msg("Failed to publish moderation event")
	}
}

func (uc *UseCase) syncPendingGauge() {
	uc.metrics.SetPendingReplies(uc.store.PendingReplies())
}
