package entities

import (
	"time"

	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
)

// DraftState is the per-user conversation state
type DraftState int

const (
	StateIdle DraftState = iota
	StateAwaitingFirstItem
	StateComposing
	StateAwaitingClassification
)

// String returns the state name used in logs
func (s DraftState) String() string {
	switch s {
	case StateAwaitingFirstItem:
		return "awaiting_first_item"
	case StateComposing:
		return "composing"
	case StateAwaitingClassification:
		return "awaiting_classification"
	default:
		return "idle"
	}
}

// DraftSession is the in-progress composition of one user.
// Submitted and cancelled sessions are removed from the store, which is Idle.
type DraftSession struct {
	UserID    int64
	State     DraftState
	Items     []ContentItem
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewDraftSession returns a session waiting for its first item
func NewDraftSession(userID int64, now time.Time) *DraftSession {
	return &DraftSession{
		UserID:    userID,
		State:     StateAwaitingFirstItem,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Append adds an item in arrival order.
// AwaitingFirstItem moves to Composing; Composing stays in Composing.
func (s *DraftSession) Append(item ContentItem, now time.Time) error {
	switch s.State {
	case StateAwaitingFirstItem, StateComposing:
		s.Items = append(s.Items, item)
		s.State = StateComposing
		s.UpdatedAt = now
		return nil
	default:
		return moderrors.ErrInvalidTransition
	}
}

// RequestClassification moves Composing to AwaitingClassification
func (s *DraftSession) RequestClassification(now time.Time) error {
	if s.State != StateComposing {
		return moderrors.ErrInvalidTransition
	}
	if len(s.Items) == 0 {
		return moderrors.ErrEmptyDraft
	}
	s.State = StateAwaitingClassification
	s.UpdatedAt = now
	return nil
}

// Freeze returns the items of a session that is ready for submission
func (s *DraftSession) Freeze() ([]ContentItem, error) {
	if s.State != StateAwaitingClassification {
		return nil, moderrors.ErrInvalidTransition
	}
	if len(s.Items) == 0 {
		return nil, moderrors.ErrEmptyDraft
	}
	items := make([]ContentItem, len(s.Items))
	copy(items, s.Items)
	return items, nil
}

// Clone returns a deep copy safe to hand out of the store
func (s *DraftSession) Clone() *DraftSession {
	c := *s
	c.Items = make([]ContentItem, len(s.Items))
	copy(c.Items, s.Items)
	return &c
}
