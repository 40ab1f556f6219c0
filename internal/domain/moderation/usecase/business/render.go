package business

import (
	"context"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/compositor"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// rendering is the result of rendering a submission into a chat
type rendering struct {
	Primary   entities.MessageKey
	Auxiliary []entities.MessageKey
	Body      entities.Body
}

func header(classification entities.Classification) string {
	if classification == entities.ClassificationAdvice {
		return consts.HeaderAdvice
	}
	return consts.HeaderExpress
}

// composeBody returns the classification header followed by the joined text of every text-bearing item
func composeBody(classification entities.Classification, items []entities.ContentItem) (string, []entities.Span) {
	segments := make([]compositor.Segment, 0, len(items))
	for _, item := range items {
		if !item.HasText() {
			continue
		}
		segments = append(segments, compositor.Segment{Text: item.Text, Spans: item.Spans})
	}

	text, spans := compositor.Join(segments, compositor.Separator)
	if text == "" {
		return header(classification), nil
	}
	return compositor.Prefix(text, spans, header(classification)+compositor.Separator)
}

// captionCarrier returns the last item that can carry a caption, or -1
func captionCarrier(items []entities.ContentItem) int {
	carrier := -1
	for i, item := range items {
		if item.SupportsCaption {
			carrier = i
		}
	}
	return carrier
}

// withoutCaptions drops the items whose text travels as their own caption
func withoutCaptions(items []entities.ContentItem) []entities.ContentItem {
	out := make([]entities.ContentItem, 0, len(items))
	for _, item := range items {
		if item.SupportsCaption {
			continue
		}
		out = append(out, item)
	}
	return out
}

// render posts the submission into chatID and attaches markup to the primary artifact.
//
// A caption-capable item carries the composed body as its caption and is the
// only artifact. Otherwise the body is sent as text followed by copies of the
// media items in draft order. Copies keep their original captions, so the
// text body then holds only the plain text items. Once the primary artifact
// exists, failures of auxiliary copies are logged and skipped.
func (uc *UseCase) render(ctx context.Context, chatID int64, sub *entities.Submission, markup *entities.Markup) (*rendering, error) {
	text, spans := composeBody(sub.Classification, sub.Items)

	if carrier := captionCarrier(sub.Items); carrier >= 0 {
		if compositor.Length(text) <= consts.MaxCaptionLength {
			body := entities.Body{Text: text, Spans: spans, IsCaption: true}
			id, err := uc.messenger.CopyMessage(ctx, chatID, sub.Items[carrier].Source, deps.CopyOptions{Caption: &body, Markup: markup})
			if err != nil {
				return nil, err
			}
			return &rendering{Primary: entities.MessageKey{ChatID: chatID, MessageID: id}, Body: body}, nil
		}

		uc.logger.Debug().
			Int64("user_id", sub.Author.ID).
			Int("length", compositor.Length(text)).
			Msg("Composed caption too long, rendering body as text")

		text, spans = composeBody(sub.Classification, withoutCaptions(sub.Items))
	}

	text, spans = compositor.Truncate(text, spans, consts.MaxTextLength)
	body := entities.Body{Text: text, Spans: spans}

	id, err := uc.messenger.SendText(ctx, chatID, text, deps.SendOptions{Spans: spans, Markup: markup})
	if err != nil {
		return nil, err
	}

	r := &rendering{Primary: entities.MessageKey{ChatID: chatID, MessageID: id}, Body: body}
	for _, item := range sub.Items {
		if !item.IsMedia() {
			continue
		}
		copyID, err := uc.messenger.CopyMessage(ctx, chatID, item.Source, deps.CopyOptions{})
		if err != nil {
			uc.metrics.CollaboratorError("copy_message")
			uc.logger.Warn().
				Err(err).
				Int64("chat_id", chatID).
				Str("source", item.Source.String()).
				Msg("Failed to copy media item")
			continue
		}
		r.Auxiliary = append(r.Auxiliary, entities.MessageKey{ChatID: chatID, MessageID: copyID})
	}

	return r, nil
}
