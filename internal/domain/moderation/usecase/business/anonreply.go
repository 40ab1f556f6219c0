package business

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
)

// IssueReplyToken returns the deep-link token bound to a channel post.
// The token carries only the post id.
func IssueReplyToken(postID int) string {
	return fmt.Sprintf("%s:%d", consts.ReplyTokenPrefix, postID)
}

// ParseReplyToken extracts the post id from a token. Start payloads cannot
// carry ':', so "anon_<id>" is accepted as well.
func ParseReplyToken(token string) (int, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(token), consts.ReplyTokenPrefix)
	if !ok || rest == "" || (rest[0] != ':' && rest[0] != '_') {
		return 0, moderrors.ErrInvalidReplyToken
	}

	postID, err := strconv.Atoi(rest[1:])
	if err != nil || postID <= 0 {
		return 0, moderrors.ErrInvalidReplyToken
	}
	return postID, nil
}

// DeepLinkURL returns the link that opens the bot with the reply token of postID
func DeepLinkURL(botUsername string, postID int) string {
	payload := strings.Replace(IssueReplyToken(postID), ":", "_", 1)
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, payload)
}

// replyMenu is the control attached to a published post, nil when the bot username is unknown
func (uc *UseCase) replyMenu(postID int) *entities.Markup {
	username := uc.messenger.BotUsername()
	if username == "" {
		return nil
	}
	return &entities.Markup{Inline: [][]entities.Button{{
		{Text: consts.ButtonReplyAnon, URL: DeepLinkURL(username, postID)},
	}}}
}

// OnDeepLinkEntry registers the user as about to reply anonymously to a post.
// A second entry replaces the first.
func (uc *UseCase) OnDeepLinkEntry(ctx context.Context, userID, chatID int64, token string) error {
	postID, err := ParseReplyToken(token)
	if err != nil {
		uc.logger.Debug().
			Int64("user_id", userID).
			Str("token", token).
			Msg("Invalid anonymous reply token")
		uc.reply(ctx, chatID, consts.TextAnonBadLink, deps.SendOptions{})
		return nil
	}

	uc.store.SetPendingReply(&entities.PendingAnonymousReply{
		UserID:       userID,
		TargetPostID: postID,
		CreatedAt:    uc.now(),
	})
	uc.syncPendingGauge()

	uc.logger.Info().Int("post_id", postID).Msg("Anonymous reply started")

	uc.reply(ctx, chatID, consts.TextAnonPrompt, deps.SendOptions{})
	return nil
}

// relayAnonymousReply relays the text of a user with a pending reply into the
// discussion thread. It reports false when the user has no pending reply.
func (uc *UseCase) relayAnonymousReply(ctx context.Context, msg *dto.IncomingMessage) (bool, error) {
	comment := entities.Comment{Text: msg.Content.Text, Spans: msg.Content.Spans}

	pending, link, err := uc.store.ResolveReply(msg.From.ID, comment)
	switch {
	case errors.Is(err, moderrors.ErrNoPendingReply):
		return false, nil
	case errors.Is(err, moderrors.ErrDiscussionNotLinked):
		uc.metrics.AnonymousReply(consts.ReplyHeld)
		uc.logger.Info().
			Err(err).
			Int("post_id", pending.TargetPostID).
			Msg("Anonymous reply held")
		uc.reply(ctx, msg.Key.ChatID, consts.TextAnonNotLinked, deps.SendOptions{})
		return true, nil
	case err != nil:
		return true, err
	}

	uc.store.DeletePendingReply(msg.From.ID)
	uc.syncPendingGauge()

	uc.deliverReply(ctx, *link, comment, msg.Key.ChatID)
	return true, nil
}

// deliverReply posts the comment under the linked discussion message and tells the replier the outcome
func (uc *UseCase) deliverReply(ctx context.Context, link entities.ChannelPostLink, comment entities.Comment, replierChatID int64) {
	_, err := uc.messenger.SendText(ctx, link.DiscussionChatID, comment.Text, deps.SendOptions{
		Spans:   comment.Spans,
		ReplyTo: link.DiscussionMessageID,
	})
	if err != nil {
		uc.metrics.AnonymousReply(consts.ReplyFailed)
		uc.metrics.CollaboratorError("relay_anonymous_reply")
		uc.logger.Error().
			Err(err).
			Int("post_id", link.PostID).
			Msg("Failed to relay anonymous reply")
		uc.reply(ctx, replierChatID, consts.TextAnonFailed, deps.SendOptions{})
		return
	}

	uc.metrics.AnonymousReply(consts.ReplyRelayed)
	uc.publishEvent(ctx, &entities.ModerationEvent{
		Type:   entities.EventAnonymousReplyRelayed,
		PostID: link.PostID,
	})
	uc.logger.Info().Int("post_id", link.PostID).Msg("Anonymous reply relayed")

	uc.reply(ctx, replierChatID, consts.TextAnonPublished, deps.SendOptions{})
}

// captureDiscussionLink recognizes the copy of a channel post that the platform
// forwards into the linked discussion chat, records the link and relays the
// replies held for that post. It reports whether msg was such an echo.
func (uc *UseCase) captureDiscussionLink(ctx context.Context, msg *dto.IncomingMessage) bool {
	origin := msg.ForwardOrigin
	if origin == nil || origin.ChatID != uc.cfg.ChannelID || origin.MessageID == 0 {
		return false
	}
	if msg.IsPrivate() || msg.Key.ChatID == uc.cfg.ChannelID || msg.Key.ChatID == uc.cfg.AdminChatID {
		return false
	}
	if uc.cfg.DiscussionChatID != 0 && msg.Key.ChatID != uc.cfg.DiscussionChatID {
		return false
	}
	if uc.cfg.DiscussionChatID == 0 && !msg.IsAutomaticForward {
		return false
	}

	created, held := uc.store.LinkDiscussion(entities.ChannelPostLink{
		PostID:              origin.MessageID,
		DiscussionChatID:    msg.Key.ChatID,
		DiscussionMessageID: msg.Key.MessageID,
		LinkedAt:            uc.now(),
	})
	if !created {
		return true
	}

	uc.metrics.DiscussionLinked()
	uc.logger.Info().
		Int("post_id", origin.MessageID).
		Int64("chat_id", msg.Key.ChatID).
		Int("message_id", msg.Key.MessageID).
		Int("held", len(held)).
		Msg("Discussion linked to channel post")

	if len(held) == 0 {
		return true
	}

	uc.syncPendingGauge()
	link, _ := uc.store.DiscussionLink(origin.MessageID)
	for _, pending := range held {
		uc.deliverReply(ctx, link, *pending.Held, pending.UserID)
	}
	return true
}
