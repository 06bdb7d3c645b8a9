package handlers

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

// HandleMemberJoin resolves invite attribution (which blocks for the settle
// delay), posts the join audit entry, sends a welcome DM and re-applies an
// outstanding mute when the member rejoined under one.
func HandleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	go func() {
		attribution := b.Invites.ResolveJoin(m.GuildID, m.User.ID)

		created, _ := discordgo.SnowflakeTimestamp(m.User.ID)
		embed := &discordgo.MessageEmbed{
			Title:     "Member Activity",
			Color:     0x00FF00,
			Thumbnail: &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("512")},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Type", Value: "Member Join", Inline: true},
				{Name: "User Tag", Value: m.User.String(), Inline: true},
				{Name: "User Id", Value: m.User.ID, Inline: true},
				{Name: "Account Created", Value: created.Format("2006-01-02"), Inline: true},
				{Name: "Joined Server", Value: time.Now().Format("2006-01-02"), Inline: true},
				{Name: "Joined via Invite", Value: attribution.Code, Inline: true},
				{Name: "Inviter", Value: attribution.InviterTag, Inline: true},
			},
			Timestamp: time.Now().Format(time.RFC3339),
			Footer:    &discordgo.MessageEmbedFooter{Text: "Server Log"},
		}
		b.Audit.SendEmbed(embed, model.AuditEvent{
			GuildID:   m.GuildID,
			Kind:      "MemberJoin",
			SubjectID: m.User.ID,
			Details:   fmt.Sprintf("Joined via %s (inviter: %s)", attribution.Code, attribution.InviterTag),
		})

		guildName := m.GuildID
		if guild, err := s.Guild(m.GuildID); err == nil {
			guildName = guild.Name
		}
		welcome := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Welcome to %s!", guildName),
			Description: "We are glad to have you. Please read the rules to get access to the rest of the server.",
			Color:       0x00FF00,
		}
		if utils.SendPrivateEmbed(s, m.User.ID, welcome) == model.DMBlocked {
			b.Audit.Audit(model.AuditEntry{
				GuildID:   m.GuildID,
				Title:     "Welcome DM Blocked",
				Kind:      "DMFailure",
				SubjectID: m.User.ID,
				Color:     0xFFA500,
				Extra: []model.AuditField{
					{Name: "Detail", Value: "User's privacy settings do not allow direct messages."},
				},
			})
		}

		b.Engine.ReapplyOnRejoin(m.User.ID)
	}()
}

// HandleMemberLeave posts the leave audit entry, annotated with the
// attribution captured at the member's join.
func HandleMemberLeave(s *discordgo.Session, m *discordgo.GuildMemberRemove, b *bot.Bot) {
	attribution, ok := b.Invites.ConsumeLeave(m.User.ID)
	if !ok {
		attribution = model.UnknownJoin()
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Type", Value: "Member Leave", Inline: true},
		{Name: "User Tag", Value: m.User.String(), Inline: true},
		{Name: "User Id", Value: m.User.ID, Inline: true},
		{Name: "Left Server", Value: time.Now().Format("2006-01-02"), Inline: true},
		{Name: "Joined via Invite", Value: attribution.Code, Inline: true},
		{Name: "Inviter", Value: attribution.InviterTag, Inline: true},
	}
	if !m.JoinedAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Joined Server", Value: m.JoinedAt.Format("2006-01-02"), Inline: true,
		})
	}

	b.Audit.SendEmbed(&discordgo.MessageEmbed{
		Title:     "Member Activity",
		Color:     0xFF0000,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("512")},
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Server Log"},
	}, model.AuditEvent{
		GuildID:   m.GuildID,
		Kind:      "MemberLeave",
		SubjectID: m.User.ID,
		Details:   fmt.Sprintf("Joined via %s (inviter: %s)", attribution.Code, attribution.InviterTag),
	})
}
