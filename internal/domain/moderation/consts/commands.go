// Package consts contains constants for the moderation domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Bot commands
var (
	CommandStart  = Command{Name: "start", Description: "Start the bot"}
	CommandCancel = Command{Name: "cancel", Description: "Cancel the current action"}
	CommandDone   = Command{Name: "done", Description: "Finish the draft"}
	CommandID     = Command{Name: "id", Description: "Show the chat id"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandCancel,
	CommandDone,
	CommandID,
}

// Action types carried by inline controls
const (
	ActionChoose        = "choose"
	ActionComposeDone   = "compose_done"
	ActionComposeCancel = "compose_cancel"
	ActionPublish       = "publish"
	ActionReject        = "reject"
	ActionApprove       = "approve"
	ActionDecline       = "decline"
	ActionUnban         = "unban"
)

// AdminActions can only be used from the admin chat
var AdminActions = map[string]bool{
	ActionPublish: true,
	ActionReject:  true,
	ActionApprove: true,
	ActionDecline: true,
	ActionUnban:   true,
}

// ReplyTokenPrefix starts the deep-link payload of an anonymous reply
const ReplyTokenPrefix = "anon"

// Text limits of the platform in UTF-16 units
const (
	MaxTextLength    = 4096
	MaxCaptionLength = 1024
)

// Anonymous reply outcomes reported to metrics
const (
	ReplyRelayed = "relayed"
	ReplyHeld    = "held"
	ReplyFailed  = "failed"
)
