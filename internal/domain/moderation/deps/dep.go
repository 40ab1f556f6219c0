// Package deps contains interface definitions for the moderation domain dependencies
package deps

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// SendOptions are optional parts of an outgoing text message
type SendOptions struct {
	Spans   []entities.Span
	Markup  *entities.Markup
	ReplyTo int
}

// CopyOptions are optional parts of a copied message
type CopyOptions struct {
	// Caption replaces the original caption when set.
	Caption *entities.Body
	Markup  *entities.Markup
}

// Messenger is the capability interface of the messaging platform.
// Every method is a remote call; errors are wrapped platform failures.
type Messenger interface {
	// SendText sends a text message and returns its id
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (int, error)

	// CopyMessage copies src into chatID and returns the id of the copy
	CopyMessage(ctx context.Context, chatID int64, src entities.MessageKey, opts CopyOptions) (int, error)

	// EditText replaces the text of a message
	EditText(ctx context.Context, msg entities.MessageKey, text string, spans []entities.Span, markup *entities.Markup) error

	// EditCaption replaces the caption of a media message
	EditCaption(ctx context.Context, msg entities.MessageKey, caption string, spans []entities.Span, markup *entities.Markup) error

	// EditActions replaces the inline controls of a message
	EditActions(ctx context.Context, msg entities.MessageKey, markup *entities.Markup) error

	// LookupMembership returns the status of userID in chatID
	LookupMembership(ctx context.Context, chatID, userID int64) (entities.MembershipStatus, error)

	// ApproveJoinRequest approves a pending join request
	ApproveJoinRequest(ctx context.Context, chatID, userID int64) error

	// DeclineJoinRequest declines a pending join request
	DeclineJoinRequest(ctx context.Context, chatID, userID int64) error

	// Unban lifts a ban so the user may request access again
	Unban(ctx context.Context, chatID, userID int64) error

	// CreateJoinRequestLink creates an invite link that files a join request
	CreateJoinRequestLink(ctx context.Context, chatID int64, name string) (string, error)

	// AcknowledgeAction answers an action event, optionally with a short notice
	AcknowledgeAction(ctx context.Context, actionID, text string) error

	// BotUsername returns the username deep links point at
	BotUsername() string
}

// Store is the correlation store of drafts, submissions and anonymous replies
type Store interface {
	StartSession(userID int64, now time.Time) *entities.DraftSession
	Session(userID int64) (*entities.DraftSession, bool)
	UpdateSession(userID int64, fn func(*entities.DraftSession) error) (*entities.DraftSession, error)
	DeleteSession(userID int64) bool

	SaveSubmission(sub *entities.Submission) uuid.UUID
	FindSubmission(key entities.MessageKey) (*entities.Submission, error)
	ClaimSubmission(key entities.MessageKey, adminID int64) (*entities.Submission, error)
	ReleaseSubmission(id uuid.UUID)
	RemoveSubmission(id uuid.UUID) bool

	SaveRejection(rc *entities.RejectionContext) uuid.UUID
	AddRejectionKey(id uuid.UUID, key entities.MessageKey) error
	ResolveRejection(replyTo entities.MessageKey, adminID int64) (*entities.RejectionContext, error)
	TakeRejection(id uuid.UUID) (*entities.RejectionContext, error)
	CancelRejectionByAdmin(adminID int64) (*entities.RejectionContext, bool)

	LinkDiscussion(link entities.ChannelPostLink) (bool, []*entities.PendingAnonymousReply)
	DiscussionLink(postID int) (entities.ChannelPostLink, bool)
	PurgeExpiredLinks(cutoff time.Time) int

	SetPendingReply(p *entities.PendingAnonymousReply)
	PendingReply(userID int64) (*entities.PendingAnonymousReply, bool)
	ResolveReply(userID int64, comment entities.Comment) (*entities.PendingAnonymousReply, *entities.ChannelPostLink, error)
	DeletePendingReply(userID int64) bool
	PurgeExpiredReplies(cutoff time.Time) int
	PendingReplies() int
}

// EventPublisher sends moderation events to the event stream
type EventPublisher interface {
	// Publish sends the event; delivery is best-effort for callers
	Publish(ctx context.Context, event *entities.ModerationEvent) error

	// Close closes the publisher
	Close() error
}

// Recorder collects moderation metrics
type Recorder interface {
	DraftStarted()
	SubmissionCreated(classification entities.Classification)
	SubmissionPublished()
	SubmissionRejected()
	PublishConflict()
	AnonymousReply(result string)
	DiscussionLinked()
	CollaboratorError(operation string)
	SetPendingReplies(n int)
}
