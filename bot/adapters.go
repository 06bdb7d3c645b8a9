package bot

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// discordAdapter implements the engine's Actions and Directory interfaces on
// top of the discordgo session. The mute role is resolved by name per call;
// role changes on the guild take effect without a restart.
type discordAdapter struct {
	session      *discordgo.Session
	muteRoleName string
}

func (d *discordAdapter) muteRoleID(guildID string) (string, error) {
	roles, err := d.session.GuildRoles(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to list roles for guild %s: %w", guildID, err)
	}
	for _, role := range roles {
		if role.Name == d.muteRoleName {
			return role.ID, nil
		}
	}
	return "", fmt.Errorf("mute role %q not found in guild %s", d.muteRoleName, guildID)
}

func (d *discordAdapter) ApplyTimeout(guildID, userID string, until time.Time, reason string) error {
	return d.session.GuildMemberTimeout(guildID, userID, &until)
}

func (d *discordAdapter) RemoveTimeout(guildID, userID string) error {
	return d.session.GuildMemberTimeout(guildID, userID, nil)
}

func (d *discordAdapter) AddMuteRole(guildID, userID string) error {
	roleID, err := d.muteRoleID(guildID)
	if err != nil {
		return err
	}
	return d.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (d *discordAdapter) RemoveMuteRole(guildID, userID string) error {
	roleID, err := d.muteRoleID(guildID)
	if err != nil {
		return err
	}
	return d.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (d *discordAdapter) Ban(guildID, userID, reason string, deleteDays int) error {
	return d.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays)
}

func (d *discordAdapter) Unban(guildID, userID string) error {
	return d.session.GuildBanDelete(guildID, userID)
}

func (d *discordAdapter) Kick(guildID, userID, reason string) error {
	return d.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (d *discordAdapter) IsTimedOut(guildID, userID string) (bool, error) {
	member, err := d.session.GuildMember(guildID, userID)
	if err != nil {
		return false, err
	}
	until := member.CommunicationDisabledUntil
	return until != nil && until.After(time.Now()), nil
}

func (d *discordAdapter) HasMuteRole(guildID, userID string) (bool, error) {
	roleID, err := d.muteRoleID(guildID)
	if err != nil {
		return false, err
	}
	member, err := d.session.GuildMember(guildID, userID)
	if err != nil {
		return false, err
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}

// IsBot resolves through the user endpoint rather than guild membership so
// the check also works for users who already left the guild (unban targets).
func (d *discordAdapter) IsBot(userID string) (bool, error) {
	user, err := d.session.User(userID)
	if err != nil {
		return false, err
	}
	return user.Bot, nil
}

func (d *discordAdapter) IsBanned(guildID, userID string) (bool, error) {
	_, err := d.session.GuildBan(guildID, userID)
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// inviteLister adapts the session to the attribution tracker.
type inviteLister struct {
	session *discordgo.Session
}

func (l *inviteLister) GuildInvites(guildID string) ([]model.InviteInfo, error) {
	raw, err := l.session.GuildInvites(guildID)
	if err != nil {
		return nil, err
	}
	out := make([]model.InviteInfo, 0, len(raw))
	for _, inv := range raw {
		info := model.InviteInfo{
			Code:      inv.Code,
			Uses:      inv.Uses,
			MaxUses:   inv.MaxUses,
			Temporary: inv.Temporary,
			MaxAge:    inv.MaxAge,
		}
		if inv.Inviter != nil {
			info.InviterID = inv.Inviter.ID
			info.InviterTag = inv.Inviter.String()
		}
		if inv.Channel != nil {
			info.ChannelID = inv.Channel.ID
		}
		out = append(out, info)
	}
	return out, nil
}

func (l *inviteLister) VanityURLCode(guildID string) (string, error) {
	guild, err := l.session.Guild(guildID)
	if err != nil {
		return "", err
	}
	return guild.VanityURLCode, nil
}
