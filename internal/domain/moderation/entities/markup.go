package entities

// Button is one control of an inline keyboard. Exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Markup describes the controls attached to a message
type Markup struct {
	Inline [][]Button
	// Keyboard is a persistent reply keyboard of plain text buttons.
	Keyboard [][]string
	// RemoveKeyboard hides a previously shown reply keyboard.
	RemoveKeyboard bool
}

// NoActions is the markup that strips every inline control from a message
func NoActions() *Markup {
	return &Markup{Inline: [][]Button{}}
}

// MembershipStatus is the platform status of a user in the channel
type MembershipStatus string

const (
	MembershipCreator       MembershipStatus = "creator"
	MembershipAdministrator MembershipStatus = "administrator"
	MembershipMember        MembershipStatus = "member"
	MembershipRestricted    MembershipStatus = "restricted"
	MembershipLeft          MembershipStatus = "left"
	MembershipKicked        MembershipStatus = "kicked"
	MembershipUnknown       MembershipStatus = "unknown"
)

// IsMember reports whether the status grants access to propose topics
func (s MembershipStatus) IsMember() bool {
	switch s {
	case MembershipCreator, MembershipAdministrator, MembershipMember:
		return true
	default:
		return false
	}
}
