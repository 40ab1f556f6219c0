package entities

import "time"

// ChannelPostLink maps a published channel post to its discussion-thread message
type ChannelPostLink struct {
	PostID              int
	DiscussionChatID    int64
	DiscussionMessageID int
	LinkedAt            time.Time
}

// Anchor returns the discussion message replies are attached to
func (l ChannelPostLink) Anchor() MessageKey {
	return MessageKey{ChatID: l.DiscussionChatID, MessageID: l.DiscussionMessageID}
}

// Comment is the text a stranger wants to publish anonymously
type Comment struct {
	Text  string
	Spans []Span
}

// PendingAnonymousReply is a user who followed a deep link and has not replied yet
type PendingAnonymousReply struct {
	UserID       int64
	TargetPostID int
	CreatedAt    time.Time
	// Held is the comment kept while the discussion link is unresolved.
	Held *Comment
}

// Clone returns a copy safe to hand out of the store
func (p *PendingAnonymousReply) Clone() *PendingAnonymousReply {
	c := *p
	if p.Held != nil {
		held := Comment{Text: p.Held.Text, Spans: append([]Span(nil), p.Held.Spans...)}
		c.Held = &held
	}
	return &c
}
