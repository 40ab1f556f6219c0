package entities

import (
	"time"

	"github.com/google/uuid"
)

// Classification is the author's choice that drives the published header
type Classification string

const (
	ClassificationAdvice  Classification = "advice"
	ClassificationExpress Classification = "express"
)

// Valid reports whether c is one of the two known classifications
func (c Classification) Valid() bool {
	return c == ClassificationAdvice || c == ClassificationExpress
}

// Author describes the user behind a submission
type Author struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Body is composed formatted text together with where it was rendered
type Body struct {
	Text      string
	Spans     []Span
	IsCaption bool
}

// Submission is a classified draft waiting for an admin decision
type Submission struct {
	ID             uuid.UUID
	Author         Author
	Classification Classification
	Items          []ContentItem
	ReviewCard     MessageKey
	AuxiliaryKeys  []MessageKey
	CardBody       Body
	CreatedAt      time.Time

	// Claimed is set while an admin action holds the submission.
	Claimed   bool
	ClaimedBy int64
}

// Keys returns every correlation key of the submission, primary first
func (s *Submission) Keys() []MessageKey {
	keys := make([]MessageKey, 0, len(s.AuxiliaryKeys)+1)
	keys = append(keys, s.ReviewCard)
	return append(keys, s.AuxiliaryKeys...)
}

// Clone returns a copy safe to hand out of the store
func (s *Submission) Clone() *Submission {
	c := *s
	c.Items = append([]ContentItem(nil), s.Items...)
	c.AuxiliaryKeys = append([]MessageKey(nil), s.AuxiliaryKeys...)
	c.CardBody.Spans = append([]Span(nil), s.CardBody.Spans...)
	return &c
}

// RejectionContext is an open reject dialog waiting for the admin's reason
type RejectionContext struct {
	ID           uuid.UUID
	SubmissionID uuid.UUID
	AuthorID     int64
	AdminID      int64
	ReviewCard   MessageKey
	CardBody     Body
	// Keys are the message keys a reply may arrive on; the admin fallback is AdminID.
	Keys      []MessageKey
	CreatedAt time.Time
}

// Clone returns a copy safe to hand out of the store
func (r *RejectionContext) Clone() *RejectionContext {
	c := *r
	c.Keys = append([]MessageKey(nil), r.Keys...)
	c.CardBody.Spans = append([]Span(nil), r.CardBody.Spans...)
	return &c
}
