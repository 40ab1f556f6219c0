package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// isMember checks channel membership. A failed lookup counts as "not a member".
func (uc *UseCase) isMember(ctx context.Context, userID int64) bool {
	status, err := uc.messenger.LookupMembership(ctx, uc.cfg.ChannelID, userID)
	if err != nil {
		uc.logger.Warn().
			Err(err).
			Int64("user_id", userID).
			Msg("Membership lookup failed, treating user as non-member")
		return false
	}
	return status.IsMember()
}

// showMenu sends the keyboard matching the user's membership. An empty text
// uses the default menu text.
func (uc *UseCase) showMenu(ctx context.Context, chatID, userID int64, text string) error {
	if uc.isMember(ctx, userID) {
		if text == "" {
			text = consts.TextMemberMenu
		}
		uc.reply(ctx, chatID, text, deps.SendOptions{Markup: memberMenu()})
		return nil
	}

	if text == "" {
		text = consts.TextNonMemberHint
	}
	uc.reply(ctx, chatID, text, deps.SendOptions{Markup: nonMemberMenu()})
	return nil
}

func memberMenu() *entities.Markup {
	return &entities.Markup{Keyboard: [][]string{{consts.ButtonPropose}}}
}

func nonMemberMenu() *entities.Markup {
	return &entities.Markup{Keyboard: [][]string{{consts.ButtonRequestAccess}}}
}

func composeMenu() *entities.Markup {
	return &entities.Markup{Inline: [][]entities.Button{
		{{Text: consts.ButtonDone, Data: dto.ActionPayload{Type: consts.ActionComposeDone}.Encode()}},
		{{Text: consts.ButtonCancel, Data: dto.ActionPayload{Type: consts.ActionComposeCancel}.Encode()}},
	}}
}

func classificationMenu() *entities.Markup {
	return &entities.Markup{Inline: [][]entities.Button{
		{{Text: consts.ButtonAdvice, Data: dto.ActionPayload{Type: consts.ActionChoose, Value: string(entities.ClassificationAdvice)}.Encode()}},
		{{Text: consts.ButtonExpress, Data: dto.ActionPayload{Type: consts.ActionChoose, Value: string(entities.ClassificationExpress)}.Encode()}},
	}}
}

func reviewMenu(authorID int64) *entities.Markup {
	return &entities.Markup{Inline: [][]entities.Button{{
		{Text: consts.ButtonPublish, Data: dto.ActionPayload{Type: consts.ActionPublish, UserID: authorID}.Encode()},
		{Text: consts.ButtonReject, Data: dto.ActionPayload{Type: consts.ActionReject, UserID: authorID}.Encode()},
	}}}
}

// handle renders the user as @username, falling back to the id
func handle(user entities.Author) string {
	if user.Username != "" {
		return user.Username
	}
	return fmt.Sprint(user.ID)
}

func fmtUser(format string, user entities.Author) string {
	return fmt.Sprintf(format, handle(user), user.ID)
}

func fullName(user entities.Author) string {
	name := strings.TrimSpace(strings.Join([]string{user.FirstName, user.LastName}, " "))
	if name == "" {
		return "—"
	}
	return name
}
