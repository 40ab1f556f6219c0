// Package memory contains the in-process correlation store of the moderation domain.
// State lives for the lifetime of the process and is lost on restart.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
)

// Store keeps drafts, submissions, rejection contexts, discussion links and
// pending anonymous replies. Entities reachable under several keys are stored
// once and indexed by their generated id.
type Store struct {
	mu sync.Mutex

	sessions map[int64]*entities.DraftSession

	submissions    map[uuid.UUID]*entities.Submission
	submissionKeys map[entities.MessageKey]uuid.UUID

	rejections       map[uuid.UUID]*entities.RejectionContext
	rejectionKeys    map[entities.MessageKey]uuid.UUID
	rejectionByAdmin map[int64]uuid.UUID

	postLinks      map[int]entities.ChannelPostLink
	pendingReplies map[int64]*entities.PendingAnonymousReply
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sessions:         make(map[int64]*entities.DraftSession),
		submissions:      make(map[uuid.UUID]*entities.Submission),
		submissionKeys:   make(map[entities.MessageKey]uuid.UUID),
		rejections:       make(map[uuid.UUID]*entities.RejectionContext),
		rejectionKeys:    make(map[entities.MessageKey]uuid.UUID),
		rejectionByAdmin: make(map[int64]uuid.UUID),
		postLinks:        make(map[int]entities.ChannelPostLink),
		pendingReplies:   make(map[int64]*entities.PendingAnonymousReply),
	}
}

// StartSession replaces any session of the user with a fresh one
func (s *Store) StartSession(userID int64, now time.Time) *entities.DraftSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := entities.NewDraftSession(userID, now)
	s.sessions[userID] = session
	return session.Clone()
}

// Session returns a copy of the user's session
func (s *Store) Session(userID int64) (*entities.DraftSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	return session.Clone(), true
}

// UpdateSession applies fn to a copy of the user's session and stores the copy
// only when fn succeeds, so a rejected transition leaves the session untouched.
func (s *Store) UpdateSession(userID int64, fn func(*entities.DraftSession) error) (*entities.DraftSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, moderrors.ErrNoDraft
	}

	updated := session.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.sessions[userID] = updated
	return updated.Clone(), nil
}

// DeleteSession removes the user's session and reports whether one existed
func (s *Store) DeleteSession(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// SaveSubmission stores the submission under its review card and every auxiliary key
func (s *Store) SaveSubmission(sub *entities.Submission) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := sub.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	s.submissions[stored.ID] = stored
	for _, key := range stored.Keys() {
		if key.IsZero() {
			continue
		}
		s.submissionKeys[key] = stored.ID
	}
	return stored.ID
}

// FindSubmission resolves any correlation key of a submission
func (s *Store) FindSubmission(key entities.MessageKey) (*entities.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.lookupSubmission(key)
	if !ok {
		return nil, moderrors.ErrSubmissionNotFound
	}
	return sub.Clone(), nil
}

// ClaimSubmission marks the submission behind key as handled by adminID.
// Only one claim succeeds until the claim is released or the submission removed.
func (s *Store) ClaimSubmission(key entities.MessageKey, adminID int64) (*entities.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.lookupSubmission(key)
	if !ok {
		return nil, moderrors.ErrSubmissionNotFound
	}
	if sub.Claimed {
		return nil, moderrors.ErrSubmissionInProgress
	}
	sub.Claimed = true
	sub.ClaimedBy = adminID
	return sub.Clone(), nil
}

// ReleaseSubmission drops a claim so the submission can be handled again
func (s *Store) ReleaseSubmission(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.submissions[id]; ok {
		sub.Claimed = false
		sub.ClaimedBy = 0
	}
}

// RemoveSubmission deletes the submission and all of its keys
func (s *Store) RemoveSubmission(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeSubmission(id)
}

// SaveRejection stores the context under each of its keys and under its admin
func (s *Store) SaveRejection(rc *entities.RejectionContext) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rc.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	s.rejections[stored.ID] = stored
	for _, key := range stored.Keys {
		if key.IsZero() {
			continue
		}
		s.rejectionKeys[key] = stored.ID
	}
	if stored.AdminID != 0 {
		s.rejectionByAdmin[stored.AdminID] = stored.ID
	}
	return stored.ID
}

// AddRejectionKey registers one more key for an existing context
func (s *Store) AddRejectionKey(id uuid.UUID, key entities.MessageKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rc, ok := s.rejections[id]
	if !ok {
		return moderrors.ErrRejectionNotFound
	}
	rc.Keys = append(rc.Keys, key)
	s.rejectionKeys[key] = id
	return nil
}

// ResolveRejection finds the context a reason message belongs to: by the
// message it replies to first, then by the admin who sent it.
func (s *Store) ResolveRejection(replyTo entities.MessageKey, adminID int64) (*entities.RejectionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !replyTo.IsZero() {
		if id, ok := s.rejectionKeys[replyTo]; ok {
			if rc, ok := s.rejections[id]; ok {
				return rc.Clone(), nil
			}
		}
	}
	if id, ok := s.rejectionByAdmin[adminID]; ok {
		if rc, ok := s.rejections[id]; ok {
			return rc.Clone(), nil
		}
	}
	return nil, moderrors.ErrRejectionNotFound
}

// TakeRejection removes the context with every key pointing at it
func (s *Store) TakeRejection(id uuid.UUID) (*entities.RejectionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rc, ok := s.rejections[id]
	if !ok {
		return nil, moderrors.ErrRejectionNotFound
	}
	s.removeRejection(rc)
	return rc, nil
}

// CancelRejectionByAdmin removes the context the admin is expected to answer
func (s *Store) CancelRejectionByAdmin(adminID int64) (*entities.RejectionContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.rejectionByAdmin[adminID]
	if !ok {
		return nil, false
	}
	rc, ok := s.rejections[id]
	if !ok {
		delete(s.rejectionByAdmin, adminID)
		return nil, false
	}
	s.removeRejection(rc)
	return rc, true
}

// LinkDiscussion records where the post was echoed in the discussion chat.
// A link is never replaced once known. When the link is new, held replies for
// the post are detached from their pending entries and returned for relaying.
func (s *Store) LinkDiscussion(link entities.ChannelPostLink) (bool, []*entities.PendingAnonymousReply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.postLinks[link.PostID]; ok {
		return false, nil
	}
	s.postLinks[link.PostID] = link

	var held []*entities.PendingAnonymousReply
	for userID, pending := range s.pendingReplies {
		if pending.TargetPostID != link.PostID || pending.Held == nil {
			continue
		}
		held = append(held, pending)
		delete(s.pendingReplies, userID)
	}
	return true, held
}

// DiscussionLink returns the discussion location of a published post
func (s *Store) DiscussionLink(postID int) (entities.ChannelPostLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.postLinks[postID]
	return link, ok
}

// SetPendingReply stores the user's pending reply, replacing an earlier one
func (s *Store) SetPendingReply(p *entities.PendingAnonymousReply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingReplies[p.UserID] = p.Clone()
}

// PendingReply returns a copy of the user's pending reply
func (s *Store) PendingReply(userID int64) (*entities.PendingAnonymousReply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pendingReplies[userID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// ResolveReply looks up where the user's comment should go. When the target
// post is linked the link is returned and the pending entry is left for the
// caller to clear after delivery. Otherwise the comment is held on the entry
// and ErrDiscussionNotLinked is returned with it.
func (s *Store) ResolveReply(userID int64, comment entities.Comment) (*entities.PendingAnonymousReply, *entities.ChannelPostLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pendingReplies[userID]
	if !ok {
		return nil, nil, moderrors.ErrNoPendingReply
	}
	if link, ok := s.postLinks[p.TargetPostID]; ok {
		return p.Clone(), &link, nil
	}

	held := comment
	held.Spans = append([]entities.Span(nil), comment.Spans...)
	p.Held = &held
	return p.Clone(), nil, moderrors.ErrDiscussionNotLinked
}

// DeletePendingReply removes the user's pending reply
func (s *Store) DeletePendingReply(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.pendingReplies[userID]
	delete(s.pendingReplies, userID)
	return ok
}

// PurgeExpiredReplies removes pending replies created before cutoff
func (s *Store) PurgeExpiredReplies(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for userID, p := range s.pendingReplies {
		if p.CreatedAt.Before(cutoff) {
			delete(s.pendingReplies, userID)
			purged++
		}
	}
	return purged
}

// PurgeExpiredLinks removes discussion links recorded before cutoff.
// Links a pending reply still targets are kept.
func (s *Store) PurgeExpiredLinks(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	targeted := make(map[int]struct{}, len(s.pendingReplies))
	for _, p := range s.pendingReplies {
		targeted[p.TargetPostID] = struct{}{}
	}

	purged := 0
	for postID, link := range s.postLinks {
		if _, ok := targeted[postID]; ok || !link.LinkedAt.Before(cutoff) {
			continue
		}
		delete(s.postLinks, postID)
		purged++
	}
	return purged
}

// PendingReplies returns the number of pending anonymous replies
func (s *Store) PendingReplies() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pendingReplies)
}

func (s *Store) lookupSubmission(key entities.MessageKey) (*entities.Submission, bool) {
	id, ok := s.submissionKeys[key]
	if !ok {
		return nil, false
	}
	sub, ok := s.submissions[id]
	return sub, ok
}

func (s *Store) removeSubmission(id uuid.UUID) bool {
	sub, ok := s.submissions[id]
	if !ok {
		return false
	}
	for _, key := range sub.Keys() {
		if s.submissionKeys[key] == id {
			delete(s.submissionKeys, key)
		}
	}
	delete(s.submissions, id)
	return true
}

func (s *Store) removeRejection(rc *entities.RejectionContext) {
	for _, key := range rc.Keys {
		if s.rejectionKeys[key] == rc.ID {
			delete(s.rejectionKeys, key)
		}
	}
	if s.rejectionByAdmin[rc.AdminID] == rc.ID {
		delete(s.rejectionByAdmin, rc.AdminID)
	}
	delete(s.rejections, rc.ID)
}
