package telegram

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// toIncomingMessage maps a platform message to the domain message
func toIncomingMessage(m *models.Message) *dto.IncomingMessage {
	msg := &dto.IncomingMessage{
		Key:                entities.MessageKey{ChatID: m.Chat.ID, MessageID: m.ID},
		ChatType:           string(m.Chat.Type),
		Content:            toContent(m),
		IsAutomaticForward: m.IsAutomaticForward,
	}
	if m.From != nil {
		msg.From = toAuthor(m.From)
	}
	if m.ReplyToMessage != nil {
		msg.ReplyTo = entities.MessageKey{ChatID: m.Chat.ID, MessageID: m.ReplyToMessage.ID}
	}
	if origin := m.ForwardOrigin; origin != nil && origin.Type == models.MessageOriginTypeChannel && origin.MessageOriginChannel != nil {
		msg.ForwardOrigin = &dto.ForwardOrigin{
			ChatID:    origin.MessageOriginChannel.Chat.ID,
			MessageID: origin.MessageOriginChannel.MessageID,
		}
	}
	if msg.Content.Kind == entities.KindText {
		msg.Command, msg.CommandArgs = parseCommand(m.Text)
	}
	return msg
}

// toIncomingAction maps a callback query; the message key stays zero when
// the platform no longer reports the message
func toIncomingAction(q *models.CallbackQuery) *dto.IncomingAction {
	action := &dto.IncomingAction{
		ID:   q.ID,
		From: toAuthor(&q.From),
		Data: q.Data,
	}
	switch {
	case q.Message.Message != nil:
		action.Message = entities.MessageKey{ChatID: q.Message.Message.Chat.ID, MessageID: q.Message.Message.ID}
	case q.Message.InaccessibleMessage != nil:
		action.Message = entities.MessageKey{ChatID: q.Message.InaccessibleMessage.Chat.ID, MessageID: q.Message.InaccessibleMessage.MessageID}
	}
	return action
}

func toIncomingJoinRequest(r *models.ChatJoinRequest) *dto.IncomingJoinRequest {
	return &dto.IncomingJoinRequest{
		ChatID: r.Chat.ID,
		From:   toAuthor(&r.From),
	}
}

func toAuthor(u *models.User) entities.Author {
	return entities.Author{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// toContent detects the kind of the message and takes its text or caption.
// Animations also carry a document, so they are checked first.
func toContent(m *models.Message) entities.ContentItem {
	kind := entities.KindOther
	switch {
	case len(m.Photo) > 0:
		kind = entities.KindPhoto
	case m.Video != nil:
		kind = entities.KindVideo
	case m.Animation != nil:
		kind = entities.KindAnimation
	case m.Document != nil:
		kind = entities.KindDocument
	case m.Audio != nil:
		kind = entities.KindAudio
	case m.Voice != nil:
		kind = entities.KindVoice
	case m.VideoNote != nil:
		kind = entities.KindVideoNote
	case m.Sticker != nil:
		kind = entities.KindSticker
	case m.Text != "":
		kind = entities.KindText
	}

	item := entities.ContentItem{
		Kind:            kind,
		SupportsCaption: kind.SupportsCaption(),
	}
	switch {
	case kind == entities.KindText:
		item.Text = m.Text
		item.Spans = toSpans(m.Entities)
	case item.SupportsCaption:
		item.Text = m.Caption
		item.Spans = toSpans(m.CaptionEntities)
	}
	return item
}

func toSpans(list []models.MessageEntity) []entities.Span {
	if len(list) == 0 {
		return nil
	}

	spans := make([]entities.Span, 0, len(list))
	for _, e := range list {
		span := entities.Span{
			Type:          string(e.Type),
			Offset:        e.Offset,
			Length:        e.Length,
			URL:           e.URL,
			Language:      e.Language,
			CustomEmojiID: e.CustomEmojiID,
		}
		if e.User != nil {
			span.UserID = e.User.ID
		}
		spans = append(spans, span)
	}
	return spans
}

// parseCommand splits "/name@bot args" into name and args
func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "\n")
	name, _, _ := strings.Cut(head, "@")
	if name == "" {
		return "", ""
	}
	return strings.ToLower(name), strings.TrimSpace(args)
}
