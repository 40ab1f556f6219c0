package business

import (
	"context"
	"errors"
	"strings"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
)

// ProposeTopic starts a draft for a channel member
func (uc *UseCase) ProposeTopic(ctx context.Context, msg *dto.IncomingMessage) error {
	if !uc.isMember(ctx, msg.From.ID) {
		uc.reply(ctx, msg.Key.ChatID, consts.TextNonMemberHint, deps.SendOptions{Markup: nonMemberMenu()})
		return nil
	}

	uc.store.StartSession(msg.From.ID, uc.now())
	uc.metrics.DraftStarted()
	// a draft replaces the anonymous reply mode
	if uc.store.DeletePendingReply(msg.From.ID) {
		uc.syncPendingGauge()
	}

	uc.logger.Info().
		Int64("user_id", msg.From.ID).
		Msg("Draft started")

	uc.reply(ctx, msg.Key.ChatID, consts.TextAskTopic, deps.SendOptions{})
	return nil
}

// handleDraftMessage feeds a private message into the user's draft
func (uc *UseCase) handleDraftMessage(ctx context.Context, msg *dto.IncomingMessage) error {
	session, ok := uc.store.Session(msg.From.ID)
	if !ok {
		uc.logger.Debug().
			Int64("user_id", msg.From.ID).
			Msg("Message outside of any draft ignored")
		return nil
	}

	switch session.State {
	case entities.StateAwaitingFirstItem:
		// the user may have left the channel since pressing the button
		if !uc.isMember(ctx, msg.From.ID) {
			uc.store.DeleteSession(msg.From.ID)
			uc.reply(ctx, msg.Key.ChatID, consts.TextNoLongerMember, deps.SendOptions{Markup: nonMemberMenu()})
			return nil
		}
		return uc.appendItem(ctx, msg, consts.TextItemAccepted)
	case entities.StateComposing:
		return uc.appendItem(ctx, msg, consts.TextItemAdded)
	case entities.StateAwaitingClassification:
		return uc.classifyByText(ctx, msg)
	default:
		return nil
	}
}

func (uc *UseCase) appendItem(ctx context.Context, msg *dto.IncomingMessage, notice string) error {
	item := msg.Content
	item.Source = msg.Key

	session, err := uc.store.UpdateSession(msg.From.ID, func(s *entities.DraftSession) error {
		return s.Append(item, uc.now())
	})
	if err != nil {
		uc.logger.Warn().
			Err(err).
			Int64("user_id", msg.From.ID).
			Msg("Failed to append draft item")
		return err
	}

	uc.logger.Debug().
		Int64("user_id", msg.From.ID).
		Str("kind", string(item.Kind)).
		Int("items", len(session.Items)).
		Msg("Draft item appended")

	uc.reply(ctx, msg.Key.ChatID, notice, deps.SendOptions{Markup: composeMenu()})
	return nil
}

// FinishDraft moves a composing draft to the classification step.
// The returned notice is non-empty when the draft could not be finished.
func (uc *UseCase) FinishDraft(ctx context.Context, userID, chatID int64) (string, error) {
	_, err := uc.store.UpdateSession(userID, func(s *entities.DraftSession) error {
		if s.State == entities.StateAwaitingClassification {
			return nil
		}
		return s.RequestClassification(uc.now())
	})
	switch {
	case errors.Is(err, moderrors.ErrNoDraft):
		return consts.TextNoDraft, nil
	case errors.Is(err, moderrors.ErrEmptyDraft), errors.Is(err, moderrors.ErrInvalidTransition):
		return consts.TextDraftEmpty, nil
	case err != nil:
		return consts.AckFailed, err
	}

	uc.reply(ctx, chatID, consts.TextChooseKind, deps.SendOptions{Markup: classificationMenu()})
	return "", nil
}

// CancelDraft drops the user's draft and pending anonymous reply
func (uc *UseCase) CancelDraft(ctx context.Context, userID, chatID int64) (string, error) {
	hadDraft := uc.store.DeleteSession(userID)
	hadReply := uc.store.DeletePendingReply(userID)
	if hadReply {
		uc.syncPendingGauge()
	}

	uc.logger.Info().
		Int64("user_id", userID).
		Bool("draft", hadDraft).
		Bool("anonymous_reply", hadReply).
		Msg("User cancelled")

	return consts.AckDone, uc.showMenu(ctx, chatID, userID, consts.TextCancelled)
}

func (uc *UseCase) chooseClassification(ctx context.Context, action *dto.IncomingAction, payload dto.ActionPayload) (string, error) {
	classification := entities.Classification(payload.Value)
	if !classification.Valid() {
		uc.logger.Debug().
			Int64("user_id", action.From.ID).
			Str("value", payload.Value).
			Msg("Ignoring unknown classification")
		return "", nil
	}
	return uc.SubmitDraft(ctx, action.From, action.From.ID, classification)
}

// classifyByText accepts the "1"/"2" fallback for clients without inline controls
func (uc *UseCase) classifyByText(ctx context.Context, msg *dto.IncomingMessage) error {
	var classification entities.Classification
	if msg.IsText() {
		switch strings.TrimSpace(msg.Content.Text) {
		case "1":
			classification = entities.ClassificationAdvice
		case "2":
			classification = entities.ClassificationExpress
		}
	}
	if classification == "" {
		uc.reply(ctx, msg.Key.ChatID, consts.TextChooseFallback, deps.SendOptions{})
		return nil
	}

	_, err := uc.SubmitDraft(ctx, msg.From, msg.Key.ChatID, classification)
	return err
}

// SubmitDraft freezes the draft into a submission and posts it for review.
// The draft is kept when posting fails so the user can retry.
func (uc *UseCase) SubmitDraft(ctx context.Context, author entities.Author, chatID int64, classification entities.Classification) (string, error) {
	session, ok := uc.store.Session(author.ID)
	if !ok {
		uc.reply(ctx, chatID, consts.TextNoDraft, deps.SendOptions{})
		return consts.TextNoDraft, nil
	}

	items, err := session.Freeze()
	if err != nil {
		uc.logger.Debug().
			Err(err).
			Int64("user_id", author.ID).
			Str("state", session.State.String()).
			Msg("Classification outside of the classification step")
		return consts.TextDraftEmpty, nil
	}

	sub := &entities.Submission{
		Author:         author,
		Classification: classification,
		Items:          items,
		CreatedAt:      uc.now(),
	}

	if err := uc.PostForReview(ctx, sub); err != nil {
		uc.reply(ctx, chatID, consts.TextSubmitFailed, deps.SendOptions{Markup: classificationMenu()})
		return consts.AckFailed, err
	}

	uc.store.DeleteSession(author.ID)
	uc.metrics.SubmissionCreated(classification)
	uc.publishEvent(ctx, &entities.ModerationEvent{
		Type:           entities.EventSubmissionCreated,
		SubmissionID:   sub.ID.String(),
		AuthorID:       author.ID,
		Classification: classification,
		Items:          len(items),
	})

	uc.reply(ctx, chatID, consts.TextSubmitted, deps.SendOptions{Markup: memberMenu()})
	return consts.AckDone, nil
}
