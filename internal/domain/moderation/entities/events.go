package entities

import (
	"strconv"
	"time"
)

// EventType names a moderation event on the event stream
type EventType string

const (
	EventSubmissionCreated     EventType = "submission.created"
	EventSubmissionPublished   EventType = "submission.published"
	EventSubmissionRejected    EventType = "submission.rejected"
	EventAnonymousReplyRelayed EventType = "anonymous_reply.relayed"
)

// ModerationEvent is an audit record of a moderation decision.
// Anonymous reply events never carry the replying user.
type ModerationEvent struct {
	Type           EventType      `json:"type"`
	SubmissionID   string         `json:"submission_id,omitempty"`
	AuthorID       int64          `json:"author_id,omitempty"`
	AdminID        int64          `json:"admin_id,omitempty"`
	Classification Classification `json:"classification,omitempty"`
	PostID         int            `json:"post_id,omitempty"`
	Items          int            `json:"items,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

// Key returns the partitioning key of the event
func (e ModerationEvent) Key() string {
	if e.SubmissionID != "" {
		return e.SubmissionID
	}
	return strconv.Itoa(e.PostID)
}
