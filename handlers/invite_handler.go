package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
)

// HandleInviteCreate refreshes the guild snapshot and logs the new invite.
func HandleInviteCreate(s *discordgo.Session, e *discordgo.InviteCreate, b *bot.Bot) {
	if err := b.Invites.Refresh(e.GuildID); err != nil {
		log.Printf("Error refreshing invite snapshot after create: %v", err)
	}

	inviterID, inviterTag := "", model.UnknownAttribution
	if e.Inviter != nil {
		inviterID, inviterTag = e.Inviter.ID, e.Inviter.String()
	}

	b.Audit.SendEmbed(&discordgo.MessageEmbed{
		Title: "Channel Activity",
		Color: 0xFFA500,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: "Invite Create", Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s> (%s)", e.ChannelID, e.ChannelID), Inline: true},
			{Name: "Inviter", Value: fmt.Sprintf("%s (%s)", inviterTag, inviterID), Inline: true},
			{Name: "Invite Code", Value: e.Code, Inline: true},
			{Name: "Invite URL", Value: "https://discord.gg/" + e.Code, Inline: true},
			{Name: "Uses", Value: fmt.Sprintf("%d/%d", e.Uses, e.MaxUses), Inline: true},
			{Name: "Max Age (minutes)", Value: fmt.Sprintf("%d", e.MaxAge/60), Inline: true},
			{Name: "Temporary", Value: fmt.Sprintf("%t", e.Temporary), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Server Log"},
	}, model.AuditEvent{
		GuildID: e.GuildID,
		Kind:    "InviteCreate",
		ActorID: inviterID,
		Details: fmt.Sprintf("Invite %s created in channel %s", e.Code, e.ChannelID),
	})
}

// HandleInviteDelete refreshes the guild snapshot and logs the removal.
func HandleInviteDelete(s *discordgo.Session, e *discordgo.InviteDelete, b *bot.Bot) {
	if err := b.Invites.Refresh(e.GuildID); err != nil {
		log.Printf("Error refreshing invite snapshot after delete: %v", err)
	}

	code := e.Code
	if code == "" {
		code = model.UnknownAttribution
	}

	b.Audit.SendEmbed(&discordgo.MessageEmbed{
		Title: "Channel Activity",
		Color: 0xFF0000,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Type", Value: "Invite Delete", Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s> (%s)", e.ChannelID, e.ChannelID), Inline: true},
			{Name: "Invite Code", Value: code, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Server Log"},
	}, model.AuditEvent{
		GuildID: e.GuildID,
		Kind:    "InviteDelete",
		Details: fmt.Sprintf("Invite %s deleted from channel %s", code, e.ChannelID),
	})
}
