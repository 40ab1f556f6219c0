// Package entities contains domain entities of the moderation gateway
package entities

import "fmt"

// MessageKey identifies a message on the messaging platform
type MessageKey struct {
	ChatID    int64
	MessageID int
}

// String implements fmt.Stringer for logging
func (k MessageKey) String() string {
	return fmt.Sprintf("%d/%d", k.ChatID, k.MessageID)
}

// IsZero reports whether the key points at nothing
func (k MessageKey) IsZero() bool {
	return k.ChatID == 0 && k.MessageID == 0
}

// ContentKind is the platform kind of a submitted message
type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindVideo     ContentKind = "video"
	KindAnimation ContentKind = "animation"
	KindDocument  ContentKind = "document"
	KindAudio     ContentKind = "audio"
	KindVoice     ContentKind = "voice"
	KindVideoNote ContentKind = "video_note"
	KindSticker   ContentKind = "sticker"
	KindOther     ContentKind = "other"
)

// SupportsCaption reports whether the platform accepts a caption on this kind
func (k ContentKind) SupportsCaption() bool {
	switch k {
	case KindPhoto, KindVideo, KindAnimation, KindDocument, KindAudio, KindVoice:
		return true
	default:
		return false
	}
}

// Span is a formatting entity over a text.
// Offset and Length are measured in UTF-16 code units.
type Span struct {
	Type          string `json:"type"`
	Offset        int    `json:"offset"`
	Length        int    `json:"length"`
	URL           string `json:"url,omitempty"`
	UserID        int64  `json:"user_id,omitempty"`
	Language      string `json:"language,omitempty"`
	CustomEmojiID string `json:"custom_emoji_id,omitempty"`
}

// Shift returns a copy of the span moved by delta units
func (s Span) Shift(delta int) Span {
	s.Offset += delta
	return s
}

// ContentItem is one message of a draft
type ContentItem struct {
	Source          MessageKey  `json:"source"`
	Kind            ContentKind `json:"kind"`
	SupportsCaption bool        `json:"supports_caption"`
	Text            string      `json:"text,omitempty"`
	Spans           []Span      `json:"spans,omitempty"`
}

// IsMedia reports whether the item carries anything besides text
func (i ContentItem) IsMedia() bool {
	return i.Kind != KindText
}

// HasText reports whether the item contributes text to a composed body
func (i ContentItem) HasText() bool {
	return i.Text != ""
}
