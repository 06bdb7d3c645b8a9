package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

// HandleClear bulk-deletes up to 100 recent messages in the channel.
func HandleClear(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member.Permissions&discordgo.PermissionManageMessages == 0 {
		utils.SendErrorResponse(s, i, "You require the \"Manage Messages\" permission to use this command.")
		return
	}

	number := intOpt(optionMap(i), "number")
	if number == nil || *number <= 0 || *number > 100 {
		utils.SendErrorResponse(s, i, "The number of messages to clear must be between 1 and 100.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	messages, err := s.ChannelMessages(i.ChannelID, *number, "", "", "")
	if err != nil {
		log.Printf("Error fetching messages for clear: %v", err)
		utils.SendFollowUp(s, i.Interaction, "An error occurred while clearing messages.")
		return
	}

	// Bulk delete rejects messages older than two weeks.
	cutoff := time.Now().Add(-14 * 24 * time.Hour)
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Timestamp.After(cutoff) {
			ids = append(ids, msg.ID)
		}
	}
	if len(ids) > 0 {
		if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
			log.Printf("Error bulk deleting messages: %v", err)
			utils.SendFollowUp(s, i.Interaction, "An error occurred while clearing messages.")
			return
		}
	}

	b.Audit.Audit(model.AuditEntry{
		GuildID: i.GuildID,
		Title:   "Clear Messages",
		Kind:    "MessageClear",
		ActorID: i.Member.User.ID,
		Color:   0xFFA500,
		Extra: []model.AuditField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s> (%s)", i.ChannelID, i.ChannelID)},
			{Name: "Number of Messages", Value: fmt.Sprintf("%d", len(ids))},
		},
	})
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Successfully cleared %d messages.", len(ids)))
}

// HandleSlowmode sets the channel's per-user rate limit. Counts against the
// moderator's punitive rate limit check without being recorded.
func HandleSlowmode(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member.Permissions&discordgo.PermissionManageChannels == 0 {
		utils.SendErrorResponse(s, i, "You require the \"Manage Channels\" permission to use this command.")
		return
	}
	if b.Engine.CheckRateLimit(i.Member.User.ID) {
		utils.SendErrorResponse(s, i, fmt.Sprintf("You have issued %d punishments in the past hour. Please wait before punishing again.", b.Config.Settings.RateLimitMax))
		return
	}

	opts := optionMap(i)
	duration := intOpt(opts, "duration")
	reason := stringOpt(opts, "reason")
	if reason == "" {
		reason = "No reason provided"
	}
	if duration == nil || *duration < 0 || *duration > 21600 {
		utils.SendErrorResponse(s, i, "Slowmode duration must be between 0 and 21600 seconds.")
		return
	}

	if _, err := s.ChannelEdit(i.ChannelID, &discordgo.ChannelEdit{RateLimitPerUser: duration}); err != nil {
		log.Printf("Error setting slowmode: %v", err)
		utils.SendErrorResponse(s, i, "Failed to set slowmode.")
		return
	}

	b.Audit.Audit(model.AuditEntry{
		GuildID: i.GuildID,
		Title:   "Slowmode Updated",
		Kind:    "Slowmode",
		ActorID: i.Member.User.ID,
		Reason:  reason,
		Color:   0xFFA500,
		Extra: []model.AuditField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s> (%s)", i.ChannelID, i.ChannelID)},
			{Name: "Duration", Value: fmt.Sprintf("%d seconds", *duration)},
		},
	})

	state := "disabled"
	if *duration > 0 {
		state = fmt.Sprintf("set to %d seconds", *duration)
	}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Slowmode %s.", state))
}

// HandleLockChannel toggles the SendMessages deny bit on the configured
// role's channel overwrite.
func HandleLockChannel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, lock bool) {
	if i.Member.Permissions&discordgo.PermissionManageChannels == 0 {
		utils.SendErrorResponse(s, i, "You require the \"Manage Channels\" permission to use this command.")
		return
	}

	roleID := b.Config.Settings.LockRoleID
	if roleID == "" {
		utils.SendErrorResponse(s, i, "No lock role is configured.")
		return
	}

	reason := stringOpt(optionMap(i), "reason")
	if reason == "" {
		reason = "No reason provided"
	}

	channel, err := s.Channel(i.ChannelID)
	if err != nil {
		log.Printf("Error fetching channel %s: %v", i.ChannelID, err)
		utils.SendErrorResponse(s, i, "An error occurred while executing the command.")
		return
	}

	var allow, deny int64
	for _, ow := range channel.PermissionOverwrites {
		if ow.Type == discordgo.PermissionOverwriteTypeRole && ow.ID == roleID {
			allow, deny = ow.Allow, ow.Deny
			break
		}
	}
	locked := deny&discordgo.PermissionSendMessages != 0
	if lock && locked {
		utils.SendErrorResponse(s, i, "Channel is already locked for this role.")
		return
	}
	if !lock && !locked {
		utils.SendErrorResponse(s, i, "Channel is already unlocked for this role.")
		return
	}

	if lock {
		allow &^= discordgo.PermissionSendMessages
		deny |= discordgo.PermissionSendMessages
	} else {
		deny &^= discordgo.PermissionSendMessages
	}

	if allow == 0 && deny == 0 {
		err = s.ChannelPermissionDelete(i.ChannelID, roleID)
	} else {
		err = s.ChannelPermissionSet(i.ChannelID, roleID, discordgo.PermissionOverwriteTypeRole, allow, deny)
	}
	if err != nil {
		log.Printf("Error updating channel overwrite: %v", err)
		utils.SendErrorResponse(s, i, "Failed to update the channel.")
		return
	}

	action, title, color := "unlocked", "Channel Unlocked", 0x008000
	if lock {
		action, title, color = "locked", "Channel Locked", 0xFF0000
	}
	b.Audit.Audit(model.AuditEntry{
		GuildID: i.GuildID,
		Title:   title,
		Kind:    "ChannelLock",
		ActorID: i.Member.User.ID,
		Reason:  reason,
		Color:   color,
		Extra: []model.AuditField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s> (%s)", i.ChannelID, i.ChannelID)},
			{Name: "Role", Value: fmt.Sprintf("<@&%s> (%s)", roleID, roleID)},
		},
	})
	utils.SendSimpleResponse(s, i, fmt.Sprintf("Channel %s for role <@&%s>.", action, roleID))
}
