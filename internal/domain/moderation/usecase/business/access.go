package business

import (
	"context"
	"fmt"

	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// RequestAccess answers the "request channel access" button
func (uc *UseCase) RequestAccess(ctx context.Context, msg *dto.IncomingMessage) error {
	status, err := uc.messenger.LookupMembership(ctx, uc.cfg.ChannelID, msg.From.ID)
	if err != nil {
		uc.logger.Warn().Err(err).Int64("user_id", msg.From.ID).Msg("Membership lookup failed")
		status = entities.MembershipUnknown
	}

	switch {
	case status == entities.MembershipKicked:
		uc.reply(ctx, msg.Key.ChatID, consts.TextBanned, deps.SendOptions{})
		markup := &entities.Markup{Inline: [][]entities.Button{{
			{Text: consts.ButtonUnban, Data: dto.ActionPayload{Type: consts.ActionUnban, UserID: msg.From.ID}.Encode()},
		}}}
		uc.reply(ctx, uc.cfg.AdminChatID, fmtUser(consts.TextBannedRequest, msg.From), deps.SendOptions{Markup: markup})
		return nil

	case status.IsMember():
		uc.reply(ctx, msg.Key.ChatID, consts.TextAlreadyMember, deps.SendOptions{Markup: memberMenu()})
		return nil
	}

	name := fmt.Sprintf("req_%d_%d", msg.From.ID, uc.now().Unix())
	link, err := uc.messenger.CreateJoinRequestLink(ctx, uc.cfg.ChannelID, name)
	if err != nil {
		uc.reply(ctx, msg.Key.ChatID, consts.TextJoinLinkFailed, deps.SendOptions{})
		return uc.collaboratorFailure(err, "create_invite_link", msg.From.ID)
	}

	markup := &entities.Markup{Inline: [][]entities.Button{{{Text: consts.ButtonJoin, URL: link}}}}
	uc.reply(ctx, msg.Key.ChatID, consts.TextJoinLink, deps.SendOptions{Markup: markup})
	uc.reply(ctx, uc.cfg.AdminChatID, fmtUser(consts.TextAccessRequest, msg.From), deps.SendOptions{})

	uc.logger.Info().Int64("user_id", msg.From.ID).Msg("Join request link issued")
	return nil
}

// ApproveJoinRequest approves the request carried by the card's payload
func (uc *UseCase) ApproveJoinRequest(ctx context.Context, card entities.MessageKey, payload dto.ActionPayload) (string, error) {
	if err := uc.messenger.ApproveJoinRequest(ctx, payload.ChatID, payload.UserID); err != nil {
		return consts.AckFailed, uc.collaboratorFailure(err, "approve_join_request", payload.UserID)
	}
	uc.stripActions(ctx, card)

	uc.notifyUser(ctx, payload.UserID, consts.TextAccessApproved, deps.SendOptions{})
	uc.notifyUser(ctx, payload.UserID, consts.TextWelcomeMember, deps.SendOptions{Markup: memberMenu()})

	uc.logger.Info().Int64("user_id", payload.UserID).Msg("Join request approved")
	return consts.AckDone, nil
}

// DeclineJoinRequest declines the request carried by the card's payload
func (uc *UseCase) DeclineJoinRequest(ctx context.Context, card entities.MessageKey, payload dto.ActionPayload) (string, error) {
	if err := uc.messenger.DeclineJoinRequest(ctx, payload.ChatID, payload.UserID); err != nil {
		return consts.AckFailed, uc.collaboratorFailure(err, "decline_join_request", payload.UserID)
	}
	uc.stripActions(ctx, card)

	uc.notifyUser(ctx, payload.UserID, consts.TextAccessDeclined, deps.SendOptions{})

	uc.logger.Info().Int64("user_id", payload.UserID).Msg("Join request declined")
	return consts.AckDone, nil
}

// UnbanUser lifts the channel ban of the user in the payload
func (uc *UseCase) UnbanUser(ctx context.Context, card entities.MessageKey, payload dto.ActionPayload) (string, error) {
	if err := uc.messenger.Unban(ctx, uc.cfg.ChannelID, payload.UserID); err != nil {
		return consts.AckFailed, uc.collaboratorFailure(err, "unban", payload.UserID)
	}
	uc.stripActions(ctx, card)

	uc.notifyUser(ctx, payload.UserID, consts.TextUnbanned, deps.SendOptions{Markup: nonMemberMenu()})

	uc.logger.Info().Int64("user_id", payload.UserID).Msg("User unbanned")
	return consts.AckDone, nil
}

// notifyUser sends a best-effort private message; users who never started the bot are common here
func (uc *UseCase) notifyUser(ctx context.Context, userID int64, text string, opts deps.SendOptions) {
	if _, err := uc.messenger.SendText(ctx, userID, text, opts); err != nil {
		uc.logger.Debug().Err(err).Int64("user_id", userID).Msg("Failed to notify user")
	}
}
