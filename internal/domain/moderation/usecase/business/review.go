package business

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/compositor"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
)

// PostForReview sends the submission to the admin chat and records it under
// every rendered artifact. On success sub carries its id and correlation keys.
func (uc *UseCase) PostForReview(ctx context.Context, sub *entities.Submission) error {
	info := fmt.Sprintf(consts.TextAuthorInfo, authorHandle(sub.Author), sub.Author.ID, fullName(sub.Author))
	uc.reply(ctx, uc.cfg.AdminChatID, info, deps.SendOptions{})

	r, err := uc.render(ctx, uc.cfg.AdminChatID, sub, reviewMenu(sub.Author.ID))
	if err != nil {
		return uc.collaboratorFailure(err, "post_for_review", sub.Author.ID)
	}

	sub.ReviewCard = r.Primary
	sub.AuxiliaryKeys = r.Auxiliary
	sub.CardBody = r.Body
	sub.ID = uc.store.SaveSubmission(sub)

	uc.logger.Info().
		Int64("user_id", sub.Author.ID).
		Str("submission_id", sub.ID.String()).
		Str("classification", string(sub.Classification)).
		Int("items", len(sub.Items)).
		Int("artifacts", len(sub.Keys())).
		Msg("Submission posted for review")

	return nil
}

// Publish posts the submission behind card to the channel.
// Only one publish or reject can hold a submission; any later action is told it is already handled.
func (uc *UseCase) Publish(ctx context.Context, card entities.MessageKey, admin entities.Author) (string, error) {
	sub, ack, ok := uc.claim(ctx, card, admin, "publish")
	if !ok {
		return ack, nil
	}

	r, err := uc.render(ctx, uc.cfg.ChannelID, sub, nil)
	if err != nil {
		// nothing reached the channel, the card stays actionable
		uc.store.ReleaseSubmission(sub.ID)
		uc.reply(ctx, uc.cfg.AdminChatID, consts.TextPublishFailed, deps.SendOptions{ReplyTo: sub.ReviewCard.MessageID})
		return consts.AckFailed, uc.collaboratorFailure(err, "publish", admin.ID)
	}

	postID := r.Primary.MessageID
	uc.store.RemoveSubmission(sub.ID)

	if markup := uc.replyMenu(postID); markup != nil {
		if err := uc.messenger.EditActions(ctx, r.Primary, markup); err != nil {
			uc.metrics.CollaboratorError("edit_actions")
			uc.logger.Warn().Err(err).Int("post_id", postID).Msg("Failed to attach anonymous reply button")
		}
	}

	uc.stripActions(ctx, sub.ReviewCard)

	link := uc.postLink(postID)
	if _, err := uc.messenger.SendText(ctx, sub.Author.ID, consts.TextPublishedNotice+"\n\n🔗 "+link, deps.SendOptions{}); err != nil {
		uc.metrics.CollaboratorError("notify_author")
		uc.logger.Warn().Err(err).Int64("user_id", sub.Author.ID).Msg("Failed to notify author about publication")
	}
	uc.reply(ctx, uc.cfg.AdminChatID, fmt.Sprintf(consts.TextPublished, link), deps.SendOptions{ReplyTo: sub.ReviewCard.MessageID})

	uc.metrics.SubmissionPublished()
	uc.publishEvent(ctx, &entities.ModerationEvent{
		Type:         entities.EventSubmissionPublished,
		SubmissionID: sub.ID.String(),
		AuthorID:     sub.Author.ID,
		AdminID:      admin.ID,
		PostID:       postID,
	})

	uc.logger.Info().
		Int64("user_id", admin.ID).
		Str("submission_id", sub.ID.String()).
		Int("post_id", postID).
		Msg("Submission published")

	return consts.AckPublished, nil
}

// Reject opens the reason dialog for the submission behind card. The context
// is recorded before the prompt is sent, so a reply to the card resolves even
// if the prompt never arrives.
func (uc *UseCase) Reject(ctx context.Context, card entities.MessageKey, admin entities.Author) (string, error) {
	sub, ack, ok := uc.claim(ctx, card, admin, "reject")
	if !ok {
		return ack, nil
	}

	id := uc.store.SaveRejection(&entities.RejectionContext{
		SubmissionID: sub.ID,
		AuthorID:     sub.Author.ID,
		AdminID:      admin.ID,
		ReviewCard:   sub.ReviewCard,
		CardBody:     sub.CardBody,
		Keys:         sub.Keys(),
		CreatedAt:    uc.now(),
	})

	promptID, err := uc.messenger.SendText(ctx, uc.cfg.AdminChatID, consts.TextRejectPrompt, deps.SendOptions{ReplyTo: sub.ReviewCard.MessageID})
	if err != nil {
		uc.metrics.CollaboratorError("send_reject_prompt")
		uc.logger.Warn().
			Err(err).
			Str("submission_id", sub.ID.String()).
			Msg("Failed to send rejection prompt, the card still accepts the reason")
	} else if err := uc.store.AddRejectionKey(id, entities.MessageKey{ChatID: uc.cfg.AdminChatID, MessageID: promptID}); err != nil {
		uc.logger.Debug().Err(err).Msg("Rejection closed before the prompt was registered")
	}

	uc.logger.Info().
		Int64("user_id", admin.ID).
		Str("submission_id", sub.ID.String()).
		Msg("Waiting for rejection reason")

	return consts.AckEnterReason, nil
}

// claim takes the at-most-once hold on a submission and reports the
// acknowledgement to show when the hold is not granted
func (uc *UseCase) claim(ctx context.Context, card entities.MessageKey, admin entities.Author, action string) (*entities.Submission, string, bool) {
	sub, err := uc.store.ClaimSubmission(card, admin.ID)
	switch {
	case err == nil:
		return sub, "", true
	case errors.Is(err, moderrors.ErrSubmissionInProgress):
		uc.metrics.PublishConflict()
		uc.logger.Info().
			Int64("user_id", admin.ID).
			Str("action", action).
			Str("card", card.String()).
			Msg("Submission is held by another action")
		return nil, consts.AckInProgress, false
	default:
		uc.metrics.PublishConflict()
		uc.logger.Info().
			Int64("user_id", admin.ID).
			Str("action", action).
			Str("card", card.String()).
			Msg("Submission already handled")
		uc.stripActions(ctx, card)
		return nil, consts.AckAlreadyHandled, false
	}
}

// handleRejectionReason consumes an admin-chat message that answers an open
// rejection. It reports false when the message is not a reason.
func (uc *UseCase) handleRejectionReason(ctx context.Context, msg *dto.IncomingMessage) (bool, error) {
	rc, err := uc.store.ResolveRejection(msg.ReplyTo, msg.From.ID)
	if err != nil {
		return false, nil
	}

	reason := strings.TrimSpace(msg.Content.Text)
	if !msg.IsText() || reason == "" {
		uc.reply(ctx, msg.Key.ChatID, consts.TextRejectNeedText, deps.SendOptions{ReplyTo: msg.Key.MessageID})
		return true, nil
	}

	rc, err = uc.store.TakeRejection(rc.ID)
	if err != nil {
		// another reason won the race
		return true, nil
	}
	uc.store.RemoveSubmission(rc.SubmissionID)

	delivered := true
	if _, err := uc.messenger.SendText(ctx, rc.AuthorID, fmt.Sprintf(consts.TextRejectedNotice, reason), deps.SendOptions{}); err != nil {
		delivered = false
		uc.metrics.CollaboratorError("notify_author")
		uc.logger.Warn().Err(err).Int64("user_id", rc.AuthorID).Msg("Failed to deliver rejection reason")
		uc.reply(ctx, msg.Key.ChatID, consts.TextAuthorUnreachable, deps.SendOptions{ReplyTo: msg.Key.MessageID})
	}

	uc.annotateCard(ctx, rc, reason)

	recorded := consts.TextRejectRecorded
	if !delivered {
		recorded = consts.TextRejectUndelivered
	}
	uc.reply(ctx, msg.Key.ChatID, recorded, deps.SendOptions{ReplyTo: msg.Key.MessageID})

	uc.metrics.SubmissionRejected()
	uc.publishEvent(ctx, &entities.ModerationEvent{
		Type:         entities.EventSubmissionRejected,
		SubmissionID: rc.SubmissionID.String(),
		AuthorID:     rc.AuthorID,
		AdminID:      msg.From.ID,
		Reason:       reason,
	})

	uc.logger.Info().
		Int64("user_id", msg.From.ID).
		Str("submission_id", rc.SubmissionID.String()).
		Bool("delivered", delivered).
		Msg("Submission rejected")

	return true, nil
}

// annotateCard strikes the card body through and appends the rejection notice.
// Cards that cannot be edited get the notice as a reply instead.
func (uc *UseCase) annotateCard(ctx context.Context, rc *entities.RejectionContext, reason string) {
	annotation := fmt.Sprintf(consts.TextRejectedAnnotation, reason)

	limit := consts.MaxTextLength
	if rc.CardBody.IsCaption {
		limit = consts.MaxCaptionLength
	}
	room := limit - compositor.Length(annotation) - compositor.Length(compositor.Separator)

	var text string
	var spans []entities.Span
	if room > 0 {
		body, bodySpans := compositor.Truncate(rc.CardBody.Text, rc.CardBody.Spans, room)
		struck := append([]entities.Span{compositor.Cover(body, "strikethrough")}, bodySpans...)
		text, spans = compositor.Join([]compositor.Segment{
			{Text: body, Spans: struck},
			{Text: annotation},
		}, compositor.Separator)
	} else {
		text, spans = compositor.Truncate(annotation, nil, limit)
	}

	var err error
	if rc.CardBody.IsCaption {
		err = uc.messenger.EditCaption(ctx, rc.ReviewCard, text, spans, entities.NoActions())
	} else {
		err = uc.messenger.EditText(ctx, rc.ReviewCard, text, spans, entities.NoActions())
	}
	if err == nil {
		return
	}

	uc.metrics.CollaboratorError("annotate_card")
	uc.logger.Warn().Err(err).Str("card", rc.ReviewCard.String()).Msg("Failed to annotate review card")

	uc.reply(ctx, rc.ReviewCard.ChatID, annotation, deps.SendOptions{ReplyTo: rc.ReviewCard.MessageID})
	uc.stripActions(ctx, rc.ReviewCard)
}

func (uc *UseCase) stripActions(ctx context.Context, msg entities.MessageKey) {
	if err := uc.messenger.EditActions(ctx, msg, entities.NoActions()); err != nil {
		uc.metrics.CollaboratorError("edit_actions")
		uc.logger.Debug().Err(err).Str("card", msg.String()).Msg("Failed to remove actions")
	}
}

// postLink returns the public link of a channel post
func (uc *UseCase) postLink(postID int) string {
	if uc.cfg.ChannelUsername != "" {
		return fmt.Sprintf("https://t.me/%s/%d", uc.cfg.ChannelUsername, postID)
	}

	internal := strconv.FormatInt(uc.cfg.ChannelID, 10)
	if strings.HasPrefix(internal, "-100") {
		internal = internal[4:]
	} else {
		internal = strings.TrimPrefix(internal, "-")
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", internal, postID)
}

func authorHandle(user entities.Author) string {
	if user.Username != "" {
		return user.Username
	}
	return "—"
}
