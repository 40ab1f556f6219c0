package business

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/compositor"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
)

func publish(authorID int64) dto.ActionPayload {
	return dto.ActionPayload{Type: consts.ActionPublish, UserID: authorID}
}

func reject(authorID int64) dto.ActionPayload {
	return dto.ActionPayload{Type: consts.ActionReject, UserID: authorID}
}

func lastText(t *testing.T, f *fixture, chatID int64) string {
	t.Helper()
	texts := f.messenger.textsTo(chatID)
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}

func TestPublish_TextTopic(t *testing.T) {
	f := newFixture(t)
	f.draft(t, 7, textItem("Why no parking?"))
	f.classify(t, 7, entities.ClassificationExpress)

	card := f.messenger.reviewCard(t)
	assert.False(t, card.Copied)
	assert.Equal(t, "New topic from a subscriber\n\nWhy no parking?", card.Text)
	assert.True(t, hasAction(card.Markup, consts.ActionReject))
	assert.Equal(t, consts.TextSubmitted, lastText(t, f, 7))

	require.NoError(t, f.press(42, card.Key, publish(7)))
	assert.Equal(t, consts.AckPublished, f.messenger.lastAck().Text)

	posts := f.messenger.in(channelID)
	require.Len(t, posts, 1)
	post := posts[0]
	assert.False(t, post.Copied)
	assert.Equal(t, "New topic from a subscriber\n\nWhy no parking?", post.Text)
	assert.Nil(t, post.Markup)

	postID := strconv.Itoa(post.Key.MessageID)
	assert.Equal(t, consts.TextPublishedNotice+"\n\n🔗 https://t.me/c/1234567890/"+postID, lastText(t, f, 7))

	replyButtons := f.messenger.editsOf("actions", post.Key)
	require.Len(t, replyButtons, 1)
	assert.Equal(t, "https://t.me/topics_bot?start=anon_"+postID, replyButtons[0].Markup.Inline[0][0].URL)

	stripped := f.messenger.editsOf("actions", card.Key)
	require.Len(t, stripped, 1)
	assert.Equal(t, entities.NoActions(), stripped[0].Markup)

	_, err := f.store.FindSubmission(card.Key)
	assert.ErrorIs(t, err, moderrors.ErrSubmissionNotFound)
	_, ok := f.store.Session(7)
	assert.False(t, ok)

	assert.Equal(t, []entities.EventType{entities.EventSubmissionCreated, entities.EventSubmissionPublished}, f.events.types())
	assert.Equal(t, 1, f.metrics.count("submissions_express"))
	assert.Equal(t, 1, f.metrics.count("published"))
}

func TestPublish_PhotoWithCaptionIsSingleArtifact(t *testing.T) {
	f := newFixture(t)
	bold := entities.Span{Type: "bold", Offset: 0, Length: 4}
	f.draft(t, 7, mediaItem(entities.KindPhoto, "Look", bold))
	f.classify(t, 7, entities.ClassificationAdvice)

	admin := f.messenger.in(adminChatID)
	require.Len(t, admin, 2, "author info and the card")
	card := f.messenger.reviewCard(t)
	require.True(t, card.Copied)
	require.NotNil(t, card.Caption)
	assert.True(t, card.Caption.IsCaption)
	assert.Equal(t, "New inquiry from a subscriber — feedback needed\n\nLook", card.Caption.Text)
	require.Len(t, card.Caption.Spans, 1)
	sp := card.Caption.Spans[0]
	assert.Equal(t, "bold", sp.Type)
	assert.Equal(t, "Look", compositor.Slice(card.Caption.Text, sp.Offset, sp.Length))

	require.NoError(t, f.press(42, card.Key, publish(7)))

	posts := f.messenger.in(channelID)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Copied)
	assert.Equal(t, card.Source, posts[0].Source)
	assert.Equal(t, card.Caption, posts[0].Caption)
}

func TestPostForReview_MixedItemsUseLastCaptionCarrier(t *testing.T) {
	f := newFixture(t)
	f.draft(t, 7,
		textItem("Hello 👋", entities.Span{Type: "bold", Offset: 0, Length: 5}),
		mediaItem(entities.KindPhoto, "first photo"),
		mediaItem(entities.KindSticker, ""),
		mediaItem(entities.KindVideo, "clip", entities.Span{Type: "italic", Offset: 0, Length: 4}),
		textItem("Bye"),
	)
	f.classify(t, 7, entities.ClassificationExpress)

	card := f.messenger.reviewCard(t)
	require.True(t, card.Copied)
	assert.Equal(t, 6, card.Source.MessageID, "the video is the fourth item after the propose button")

	want := "New topic from a subscriber\n\nHello 👋\n\nfirst photo\n\nclip\n\nBye"
	assert.Equal(t, want, card.Caption.Text)
	require.Len(t, card.Caption.Spans, 2)
	assert.Equal(t, "Hello", compositor.Slice(want, card.Caption.Spans[0].Offset, card.Caption.Spans[0].Length))
	assert.Equal(t, "clip", compositor.Slice(want, card.Caption.Spans[1].Offset, card.Caption.Spans[1].Length))
}

func TestPostForReview_CaptionOverflowFallsBackToText(t *testing.T) {
	f := newFixture(t)
	f.draft(t, 7, mediaItem(entities.KindPhoto, strings.Repeat("a", 1100)))
	f.classify(t, 7, entities.ClassificationExpress)

	admin := f.messenger.in(adminChatID)
	require.Len(t, admin, 3)
	card, photo := admin[1], admin[2]
	assert.False(t, card.Copied)
	assert.True(t, hasAction(card.Markup, consts.ActionPublish))
	assert.Equal(t, consts.HeaderExpress, card.Text)
	assert.True(t, photo.Copied)
	assert.Nil(t, photo.Caption, "the copy keeps its own caption")

	sub, err := f.store.FindSubmission(photo.Key)
	require.NoError(t, err)
	assert.Equal(t, card.Key, sub.ReviewCard)
}

func TestCaptionOverflow_EachCaptionAppearsOnce(t *testing.T) {
	first, second := strings.Repeat("a", 600), strings.Repeat("b", 600)

	f := newFixture(t)
	f.draft(t, 7,
		mediaItem(entities.KindPhoto, first),
		textItem("Details"),
		mediaItem(entities.KindPhoto, second),
	)
	f.classify(t, 7, entities.ClassificationAdvice)

	admin := f.messenger.in(adminChatID)
	require.Len(t, admin, 4)
	card := admin[1]
	assert.Equal(t, consts.HeaderAdvice+"\n\nDetails", card.Text)
	for _, copied := range admin[2:] {
		assert.True(t, copied.Copied)
		assert.Nil(t, copied.Caption)
	}

	require.NoError(t, f.press(42, card.Key, publish(7)))

	posts := f.messenger.in(channelID)
	require.Len(t, posts, 3)
	assert.Equal(t, consts.HeaderAdvice+"\n\nDetails", posts[0].Text)
	assert.NotContains(t, posts[0].Text, first)
	assert.NotContains(t, posts[0].Text, second)
	assert.Nil(t, posts[1].Caption)
	assert.Nil(t, posts[2].Caption)
}

func TestPublish_IsAtMostOnce(t *testing.T) {
	t.Run("sequential", func(t *testing.T) {
		f := newFixture(t)
		f.draft(t, 7, textItem("Topic"))
		f.classify(t, 7, entities.ClassificationExpress)
		card := f.messenger.reviewCard(t)

		require.NoError(t, f.press(42, card.Key, publish(7)))
		require.NoError(t, f.press(43, card.Key, publish(7)))

		assert.Len(t, f.messenger.in(channelID), 1)
		assert.Equal(t, consts.AckAlreadyHandled, f.messenger.lastAck().Text)
		assert.Equal(t, 1, f.metrics.count("conflicts"))
	})

	t.Run("concurrent", func(t *testing.T) {
		f := newFixture(t)
		f.draft(t, 7, textItem("Topic"))
		f.classify(t, 7, entities.ClassificationExpress)
		card := f.messenger.reviewCard(t)

		var wg sync.WaitGroup
		for admin := int64(40); admin < 48; admin++ {
			wg.Add(1)
			go func(admin int64) {
				defer wg.Done()
				_ = f.press(admin, card.Key, publish(7))
			}(admin)
		}
		wg.Wait()

		assert.Len(t, f.messenger.in(channelID), 1)

		published := 0
		for _, a := range f.messenger.acks {
			switch a.Text {
			case consts.AckPublished:
				published++
			case consts.AckAlreadyHandled, consts.AckInProgress:
			default:
				if a.ID == "cb-publish" {
					t.Errorf("unexpected acknowledgement %q", a.Text)
				}
			}
		}
		assert.Equal(t, 1, published)
	})
}

func TestPublish_FailureKeepsSubmission(t *testing.T) {
	f := newFixture(t)
	f.draft(t, 7, textItem("Topic"))
	f.classify(t, 7, entities.ClassificationExpress)
	card := f.messenger.reviewCard(t)

	f.messenger.failSend = func(chatID int64, _ string) error {
		if chatID == channelID {
			return errPlatform
		}
		return nil
	}
	err := f.press(42, card.Key, publish(7))
	require.Error(t, err)
	assert.ErrorIs(t, err, moderrors.ErrCollaborator)
	assert.Equal(t, consts.AckFailed, f.messenger.lastAck().Text)
	assert.Equal(t, consts.TextPublishFailed, lastText(t, f, adminChatID))

	sub, err := f.store.FindSubmission(card.Key)
	require.NoError(t, err)
	assert.False(t, sub.Claimed)

	f.messenger.failSend = nil
	require.NoError(t, f.press(42, card.Key, publish(7)))
	assert.Equal(t, consts.AckPublished, f.messenger.lastAck().Text)
	assert.Len(t, f.messenger.in(channelID), 1)
}

func TestAdminActions_OnlyFromAdminChat(t *testing.T) {
	f := newFixture(t)
	f.draft(t, 7, textItem("Topic"))
	f.classify(t, 7, entities.ClassificationExpress)
	card := f.messenger.reviewCard(t)

	require.NoError(t, f.press(7, entities.MessageKey{ChatID: 7, MessageID: card.Key.MessageID}, publish(7)))
	assert.Equal(t, consts.AckNoAccess, f.messenger.lastAck().Text)
	assert.Empty(t, f.messenger.in(channelID))

	_, err := f.store.FindSubmission(card.Key)
	assert.NoError(t, err)
}

func TestAuthorizeAdminAction(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.uc.authorizeAdminAction(&dto.IncomingAction{Message: entities.MessageKey{ChatID: adminChatID, MessageID: 3}}))

	err := f.uc.authorizeAdminAction(&dto.IncomingAction{Message: entities.MessageKey{ChatID: 7, MessageID: 3}})
	assert.ErrorIs(t, err, moderrors.ErrNotAdminChat)

	err = f.uc.authorizeAdminAction(&dto.IncomingAction{})
	assert.ErrorIs(t, err, moderrors.ErrSubmissionNotFound)

	require.NoError(t, f.press(42, entities.MessageKey{}, publish(7)))
	assert.Equal(t, consts.AckAlreadyHandled, f.messenger.lastAck().Text)
}

func TestHandleIncomingAction_MalformedPayloadIsAcknowledged(t *testing.T) {
	f := newFixture(t)

	err := f.uc.HandleIncomingAction(context.Background(), &dto.IncomingAction{
		ID:      "cb-1",
		From:    author(7),
		Message: entities.MessageKey{ChatID: 7, MessageID: 1},
		Data:    "not json",
	})

	require.NoError(t, err)
	assert.Equal(t, ack{ID: "cb-1"}, f.messenger.lastAck())
}

// rejectFixture posts a sticker-only topic and opens the reject dialog as admin 42
func rejectFixture(t *testing.T) (f *fixture, card, sticker, prompt artifact) {
	t.Helper()

	f = newFixture(t)
	f.draft(t, 7, mediaItem(entities.KindSticker, ""))
	f.classify(t, 7, entities.ClassificationExpress)

	admin := f.messenger.in(adminChatID)
	require.Len(t, admin, 3)
	card, sticker = admin[1], admin[2]
	require.Equal(t, consts.HeaderExpress, card.Text)
	require.True(t, hasAction(card.Markup, consts.ActionPublish))
	require.True(t, sticker.Copied)

	require.NoError(t, f.press(42, card.Key, reject(7)))
	assert.Equal(t, consts.AckEnterReason, f.messenger.lastAck().Text)

	admin = f.messenger.in(adminChatID)
	prompt = admin[len(admin)-1]
	require.Equal(t, consts.TextRejectPrompt, prompt.Text)
	require.Equal(t, card.Key.MessageID, prompt.ReplyTo)
	return f, card, sticker, prompt
}

func TestReject_ReasonByReplyToAnyArtifact(t *testing.T) {
	for _, target := range []string{"card", "sticker", "prompt"} {
		t.Run(target, func(t *testing.T) {
			f, card, sticker, prompt := rejectFixture(t)
			replyTo := map[string]entities.MessageKey{"card": card.Key, "sticker": sticker.Key, "prompt": prompt.Key}[target]

			// a different admin answers, so only the reply key can resolve the context
			msg := f.adminMessage(43, replyTo, textItem("Too off-topic"))
			require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), msg))

			assert.Equal(t, "❌ Your topic was rejected.\nReason: Too off-topic", lastText(t, f, 7))

			edits := f.messenger.editsOf("text", card.Key)
			require.Len(t, edits, 1)
			annotated := edits[0]
			assert.Equal(t, consts.HeaderExpress+"\n\n🚫 Rejected. Reason: Too off-topic", annotated.Text)
			require.NotEmpty(t, annotated.Spans)
			assert.Equal(t, entities.Span{Type: "strikethrough", Offset: 0, Length: compositor.Length(consts.HeaderExpress)}, annotated.Spans[0])
			assert.Equal(t, entities.NoActions(), annotated.Markup)

			assert.Equal(t, consts.TextRejectRecorded, lastText(t, f, adminChatID))

			for _, k := range []entities.MessageKey{card.Key, sticker.Key, prompt.Key} {
				_, err := f.store.FindSubmission(k)
				assert.ErrorIs(t, err, moderrors.ErrSubmissionNotFound)
				_, err = f.store.ResolveRejection(k, 42)
				assert.ErrorIs(t, err, moderrors.ErrRejectionNotFound)
			}
			assert.Equal(t, []entities.EventType{entities.EventSubmissionCreated, entities.EventSubmissionRejected}, f.events.types())
		})
	}
}

func TestReject_ReasonBeforePromptResolvesByCard(t *testing.T) {
	f := newFixture(t)
	f.draft(t, 7, textItem("Topic"))
	f.classify(t, 7, entities.ClassificationExpress)
	card := f.messenger.reviewCard(t)

	f.messenger.failSend = func(_ int64, text string) error {
		if text == consts.TextRejectPrompt {
			return errPlatform
		}
		return nil
	}
	require.NoError(t, f.press(42, card.Key, reject(7)))
	f.messenger.failSend = nil

	for _, text := range f.messenger.textsTo(adminChatID) {
		require.NotEqual(t, consts.TextRejectPrompt, text)
	}

	msg := f.adminMessage(43, card.Key, textItem("Duplicate"))
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), msg))

	assert.Equal(t, "❌ Your topic was rejected.\nReason: Duplicate", lastText(t, f, 7))
}

func TestReject_ReasonWithoutReplyResolvesByAdmin(t *testing.T) {
	f, card, _, _ := rejectFixture(t)

	msg := f.adminMessage(42, entities.MessageKey{}, textItem("  Spam  "))
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), msg))

	assert.Equal(t, "❌ Your topic was rejected.\nReason: Spam", lastText(t, f, 7))
	assert.Len(t, f.messenger.editsOf("text", card.Key), 1)
}

func TestReject_NonTextReasonKeepsDialogOpen(t *testing.T) {
	f, card, _, _ := rejectFixture(t)

	sticker := f.adminMessage(42, card.Key, mediaItem(entities.KindSticker, ""))
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), sticker))
	assert.Equal(t, consts.TextRejectNeedText, lastText(t, f, adminChatID))

	_, err := f.store.ResolveRejection(card.Key, 0)
	require.NoError(t, err)

	reason := f.adminMessage(42, card.Key, textItem("Off-topic"))
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), reason))
	assert.Equal(t, "❌ Your topic was rejected.\nReason: Off-topic", lastText(t, f, 7))
}

func TestReject_UndeliveredReasonIsReportedToAdmin(t *testing.T) {
	f, card, _, _ := rejectFixture(t)
	f.messenger.failSend = func(chatID int64, _ string) error {
		if chatID == 7 {
			return errPlatform
		}
		return nil
	}

	msg := f.adminMessage(42, card.Key, textItem("Nope"))
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), msg))

	texts := f.messenger.textsTo(adminChatID)
	assert.Contains(t, texts, consts.TextAuthorUnreachable)
	assert.Equal(t, consts.TextRejectUndelivered, texts[len(texts)-1])
	_, err := f.store.FindSubmission(card.Key)
	assert.ErrorIs(t, err, moderrors.ErrSubmissionNotFound)
}

func TestReject_CardEditFailureFallsBackToReply(t *testing.T) {
	f, card, _, _ := rejectFixture(t)
	f.messenger.failEdit = errPlatform

	msg := f.adminMessage(42, card.Key, textItem("Nope"))
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), msg))

	var annotation *artifact
	for _, a := range f.messenger.in(adminChatID) {
		if a.Text == "🚫 Rejected. Reason: Nope" {
			annotation = &a
		}
	}
	require.NotNil(t, annotation)
	assert.Equal(t, card.Key.MessageID, annotation.ReplyTo)
	assert.NotEmpty(t, f.messenger.editsOf("actions", card.Key))
}

func TestReject_CancelReleasesSubmission(t *testing.T) {
	f, card, _, _ := rejectFixture(t)

	require.NoError(t, f.press(43, card.Key, publish(7)))
	assert.Equal(t, consts.AckInProgress, f.messenger.lastAck().Text)

	f.command(t, 42, adminChatID, "cancel", "")
	assert.Equal(t, consts.TextRejectCancelled, lastText(t, f, adminChatID))

	require.NoError(t, f.press(43, card.Key, publish(7)))
	assert.Equal(t, consts.AckPublished, f.messenger.lastAck().Text)
	assert.Len(t, f.messenger.in(channelID), 2, "header text and the sticker copy")
}

func TestPostLink(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "https://t.me/c/1234567890/5", f.uc.postLink(5))

	f.uc.cfg.ChannelUsername = "topics"
	assert.Equal(t, "https://t.me/topics/5", f.uc.postLink(5))
}
