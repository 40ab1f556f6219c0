package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Conte777/moderation-bot/config"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// Constants for Telegram API
const (
	RequestTimeout = 30 * time.Second
	MaxRetries     = 3
	RetryDelay     = 2 * time.Second
)

// Messenger implements deps.Messenger on top of the Bot API
type Messenger struct {
	bot    *tgbot.Bot
	logger zerolog.Logger

	mu       sync.RWMutex
	username string
}

// NewMessenger creates a messenger over the bot
func NewMessenger(bot *Bot, cfg *config.TelegramConfig, logger zerolog.Logger) *Messenger {
	return &Messenger{
		bot:      bot.Raw(),
		username: cfg.BotUsername,
		logger:   logger.With().Str("component", "telegram-messenger").Logger(),
	}
}

// ResolveUsername fetches the bot username when it was not configured
func (m *Messenger) ResolveUsername(ctx context.Context) error {
	if m.BotUsername() != "" {
		return nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	me, err := m.bot.GetMe(reqCtx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	m.mu.Lock()
	m.username = me.Username
	m.mu.Unlock()

	m.logger.Info().Str("username", me.Username).Msg("Bot username resolved")
	return nil
}

// BotUsername implements deps.Messenger
func (m *Messenger) BotUsername() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.username
}

// SendText implements deps.Messenger
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string, opts deps.SendOptions) (int, error) {
	params := &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		Entities:    toEntities(opts.Spans),
		ReplyMarkup: toReplyMarkup(opts.Markup),
	}
	if opts.ReplyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID:                opts.ReplyTo,
			AllowSendingWithoutReply: true,
		}
	}

	var sent *models.Message
	err := m.withRetry(ctx, "send_message", chatID, func(ctx context.Context) error {
		var err error
		sent, err = m.bot.SendMessage(ctx, params)
		return err
	})
	if err != nil {
		return 0, err
	}
	return sent.ID, nil
}

// CopyMessage implements deps.Messenger
func (m *Messenger) CopyMessage(ctx context.Context, chatID int64, src entities.MessageKey, opts deps.CopyOptions) (int, error) {
	params := &tgbot.CopyMessageParams{
		ChatID:      chatID,
		FromChatID:  src.ChatID,
		MessageID:   src.MessageID,
		ReplyMarkup: toReplyMarkup(opts.Markup),
	}
	if opts.Caption != nil {
		params.Caption = opts.Caption.Text
		params.CaptionEntities = toEntities(opts.Caption.Spans)
	}

	var copied *models.MessageID
	err := m.withRetry(ctx, "copy_message", chatID, func(ctx context.Context) error {
		var err error
		copied, err = m.bot.CopyMessage(ctx, params)
		return err
	})
	if err != nil {
		return 0, err
	}
	return copied.ID, nil
}

// EditText implements deps.Messenger
func (m *Messenger) EditText(ctx context.Context, msg entities.MessageKey, text string, spans []entities.Span, markup *entities.Markup) error {
	params := &tgbot.EditMessageTextParams{
		ChatID:      msg.ChatID,
		MessageID:   msg.MessageID,
		Text:        text,
		Entities:    toEntities(spans),
		ReplyMarkup: toReplyMarkup(markup),
	}

	return m.withRetry(ctx, "edit_message_text", msg.ChatID, func(ctx context.Context) error {
		_, err := m.bot.EditMessageText(ctx, params)
		return ignoreNotModified(err)
	})
}

// EditCaption implements deps.Messenger
func (m *Messenger) EditCaption(ctx context.Context, msg entities.MessageKey, caption string, spans []entities.Span, markup *entities.Markup) error {
	params := &tgbot.EditMessageCaptionParams{
		ChatID:          msg.ChatID,
		MessageID:       msg.MessageID,
		Caption:         caption,
		CaptionEntities: toEntities(spans),
		ReplyMarkup:     toReplyMarkup(markup),
	}

	return m.withRetry(ctx, "edit_message_caption", msg.ChatID, func(ctx context.Context) error {
		_, err := m.bot.EditMessageCaption(ctx, params)
		return ignoreNotModified(err)
	})
}

// EditActions implements deps.Messenger
func (m *Messenger) EditActions(ctx context.Context, msg entities.MessageKey, markup *entities.Markup) error {
	if markup == nil {
		markup = entities.NoActions()
	}
	params := &tgbot.EditMessageReplyMarkupParams{
		ChatID:      msg.ChatID,
		MessageID:   msg.MessageID,
		ReplyMarkup: toReplyMarkup(markup),
	}

	return m.withRetry(ctx, "edit_message_reply_markup", msg.ChatID, func(ctx context.Context) error {
		_, err := m.bot.EditMessageReplyMarkup(ctx, params)
		return ignoreNotModified(err)
	})
}

// LookupMembership implements deps.Messenger
func (m *Messenger) LookupMembership(ctx context.Context, chatID, userID int64) (entities.MembershipStatus, error) {
	var member *models.ChatMember
	err := m.withRetry(ctx, "get_chat_member", chatID, func(ctx context.Context) error {
		var err error
		member, err = m.bot.GetChatMember(ctx, &tgbot.GetChatMemberParams{ChatID: chatID, UserID: userID})
		return err
	})
	if err != nil {
		return entities.MembershipUnknown, err
	}
	return toMembershipStatus(string(member.Type)), nil
}

// ApproveJoinRequest implements deps.Messenger
func (m *Messenger) ApproveJoinRequest(ctx context.Context, chatID, userID int64) error {
	return m.withRetry(ctx, "approve_chat_join_request", chatID, func(ctx context.Context) error {
		_, err := m.bot.ApproveChatJoinRequest(ctx, &tgbot.ApproveChatJoinRequestParams{ChatID: chatID, UserID: userID})
		return err
	})
}

// DeclineJoinRequest implements deps.Messenger
func (m *Messenger) DeclineJoinRequest(ctx context.Context, chatID, userID int64) error {
	return m.withRetry(ctx, "decline_chat_join_request", chatID, func(ctx context.Context) error {
		_, err := m.bot.DeclineChatJoinRequest(ctx, &tgbot.DeclineChatJoinRequestParams{ChatID: chatID, UserID: userID})
		return err
	})
}

// Unban implements deps.Messenger
func (m *Messenger) Unban(ctx context.Context, chatID, userID int64) error {
	return m.withRetry(ctx, "unban_chat_member", chatID, func(ctx context.Context) error {
		_, err := m.bot.UnbanChatMember(ctx, &tgbot.UnbanChatMemberParams{
			ChatID:       chatID,
			UserID:       userID,
			OnlyIfBanned: true,
		})
		return err
	})
}

// CreateJoinRequestLink implements deps.Messenger
func (m *Messenger) CreateJoinRequestLink(ctx context.Context, chatID int64, name string) (string, error) {
	var link *models.ChatInviteLink
	err := m.withRetry(ctx, "create_chat_invite_link", chatID, func(ctx context.Context) error {
		var err error
		link, err = m.bot.CreateChatInviteLink(ctx, &tgbot.CreateChatInviteLinkParams{
			ChatID:             chatID,
			Name:               name,
			CreatesJoinRequest: true,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return link.InviteLink, nil
}

// AcknowledgeAction implements deps.Messenger.
// Callback queries expire quickly, so there is no retry.
func (m *Messenger) AcknowledgeAction(ctx context.Context, actionID, text string) error {
	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := m.bot.AnswerCallbackQuery(reqCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: actionID,
		Text:            text,
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// withRetry runs fn with a request timeout and repeats it while the platform rate-limits us
func (m *Messenger) withRetry(ctx context.Context, operation string, chatID int64, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
		err = fn(reqCtx)
		cancel()

		if err == nil {
			break
		}
		delay, limited := retryDelay(err, attempt)
		if !limited {
			break
		}

		m.logger.Warn().
			Err(err).
			Str("operation", operation).
			Int64("chat_id", chatID).
			Int("attempt", attempt).
			Dur("retry_after", delay).
			Msg("Rate limit exceeded, retrying")

		if attempt < MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	if err != nil {
		m.logger.Debug().
			Err(err).
			Str("operation", operation).
			Int64("chat_id", chatID).
			Msg("Bot API call failed")
		return classifyError(err)
	}
	return nil
}

func toMembershipStatus(status string) entities.MembershipStatus {
	switch s := entities.MembershipStatus(status); s {
	case entities.MembershipCreator, entities.MembershipAdministrator, entities.MembershipMember,
		entities.MembershipRestricted, entities.MembershipLeft, entities.MembershipKicked:
		return s
	default:
		return entities.MembershipUnknown
	}
}

func toEntities(spans []entities.Span) []models.MessageEntity {
	if len(spans) == 0 {
		return nil
	}

	list := make([]models.MessageEntity, 0, len(spans))
	for _, s := range spans {
		e := models.MessageEntity{
			Type:          models.MessageEntityType(s.Type),
			Offset:        s.Offset,
			Length:        s.Length,
			URL:           s.URL,
			Language:      s.Language,
			CustomEmojiID: s.CustomEmojiID,
		}
		if s.UserID != 0 {
			e.User = &models.User{ID: s.UserID}
		}
		list = append(list, e)
	}
	return list
}

// toReplyMarkup converts domain markup. An empty inline markup clears the controls of a message.
func toReplyMarkup(markup *entities.Markup) models.ReplyMarkup {
	switch {
	case markup == nil:
		return nil
	case markup.RemoveKeyboard:
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	case len(markup.Keyboard) > 0:
		rows := make([][]models.KeyboardButton, 0, len(markup.Keyboard))
		for _, row := range markup.Keyboard {
			buttons := make([]models.KeyboardButton, 0, len(row))
			for _, text := range row {
				buttons = append(buttons, models.KeyboardButton{Text: text})
			}
			rows = append(rows, buttons)
		}
		return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(markup.Inline))
	for _, row := range markup.Inline {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data, URL: b.URL})
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func ignoreNotModified(err error) error {
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}
