// Package dto contains data transfer objects for the moderation domain
package dto

import (
	"encoding/json"
	"fmt"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// Chat types as reported by the platform
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSupergroup = "supergroup"
	ChatChannel    = "channel"
)

// ForwardOrigin is the channel post a message was forwarded from
type ForwardOrigin struct {
	ChatID    int64
	MessageID int
}

// IncomingMessage is a conversation message mapped from a platform update
type IncomingMessage struct {
	Key      entities.MessageKey
	ChatType string
	From     entities.Author

	// Content is the detected kind, text and formatting of the message.
	Content entities.ContentItem

	// Command is the bot command without slash and bot mention, CommandArgs the rest of the line.
	Command     string
	CommandArgs string

	// ReplyTo is the message this one replies to, zero when not a reply.
	ReplyTo entities.MessageKey

	ForwardOrigin      *ForwardOrigin
	IsAutomaticForward bool
}

// IsPrivate reports whether the message was sent in a private chat with the bot
func (m *IncomingMessage) IsPrivate() bool {
	return m.ChatType == ChatPrivate
}

// IsText reports whether the message is a plain text message
func (m *IncomingMessage) IsText() bool {
	return m.Content.Kind == entities.KindText
}

// IncomingAction is a pressed inline control
type IncomingAction struct {
	ID   string
	From entities.Author
	// Message is the message the control belongs to, zero when it is no longer accessible.
	Message entities.MessageKey
	Data    string
}

// IncomingJoinRequest is a request to join the channel
type IncomingJoinRequest struct {
	ChatID int64
	From   entities.Author
}

// ActionPayload is the data carried by an inline control
type ActionPayload struct {
	Type   string `json:"t"`
	Value  string `json:"v,omitempty"`
	UserID int64  `json:"uid,omitempty"`
	ChatID int64  `json:"cid,omitempty"`
}

// Encode returns the payload as control data
func (p ActionPayload) Encode() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// ParseActionPayload decodes control data
func ParseActionPayload(data string) (ActionPayload, error) {
	var p ActionPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return ActionPayload{}, fmt.Errorf("failed to decode action payload: %w", err)
	}
	if p.Type == "" {
		return ActionPayload{}, fmt.Errorf("action payload has no type")
	}
	return p, nil
}
