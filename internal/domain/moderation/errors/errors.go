// Package errors contains domain-specific errors for the moderation domain
package errors

import (
	pkgerrors "github.com/Conte777/moderation-bot/pkg/errors"
)

// Domain errors for moderation operations
var (
	ErrInvalidTransition    = pkgerrors.NewValidationError("action is not allowed in the current draft state")
	ErrEmptyDraft           = pkgerrors.NewValidationError("draft has no content")
	ErrNoDraft              = pkgerrors.NewNotFoundError("no draft in progress")
	ErrSubmissionNotFound   = pkgerrors.NewNotFoundError("submission not found or already handled")
	ErrSubmissionInProgress = pkgerrors.NewConflictError("submission is being handled by another admin")
	ErrRejectionNotFound    = pkgerrors.NewNotFoundError("rejection context not found")
	ErrDiscussionNotLinked  = pkgerrors.NewNotFoundError("discussion thread is not linked yet")
	ErrInvalidReplyToken    = pkgerrors.NewValidationError("invalid anonymous reply token")
	ErrNoPendingReply       = pkgerrors.NewNotFoundError("no pending anonymous reply")
	ErrNotAdminChat         = pkgerrors.NewPermissionError("action is only available in the admin chat")
	ErrCollaborator         = pkgerrors.NewInternalError("messaging platform call failed")
	ErrActionExpired        = pkgerrors.NewValidationError("action is too old to acknowledge")
	ErrRecipientUnreachable = pkgerrors.NewPermissionError("recipient blocked the bot or never started it")
)
