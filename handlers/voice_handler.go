package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
)

// HandleVoiceStateUpdate watches the configured voice channel. A member who
// stays past the notify delay triggers a role ping in the notification
// channel; leaving cancels the pending timer and removes the ping message.
func HandleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate, b *bot.Bot) {
	settings := b.Config.Settings
	if settings.VoiceChannelID == "" || settings.VoiceNotifyChannelID == "" {
		return
	}

	var before string
	if v.BeforeUpdate != nil {
		before = v.BeforeUpdate.ChannelID
	}
	joined := v.ChannelID == settings.VoiceChannelID && before != settings.VoiceChannelID
	left := v.ChannelID != settings.VoiceChannelID && before == settings.VoiceChannelID

	switch {
	case joined:
		scheduleVoiceNotify(s, v.GuildID, v.UserID, b)
	case left:
		cancelVoiceNotify(s, v.UserID, b)
	}
}

func scheduleVoiceNotify(s *discordgo.Session, guildID, userID string, b *bot.Bot) {
	settings := b.Config.Settings
	timer := time.AfterFunc(settings.VoiceNotifyDelay(), func() {
		b.VoiceMu.Lock()
		delete(b.VoiceTimers, userID)
		b.VoiceMu.Unlock()

		// Only notify if the member is still in the channel.
		state, err := s.State.VoiceState(guildID, userID)
		if err != nil || state == nil || state.ChannelID != settings.VoiceChannelID {
			return
		}

		msg, err := s.ChannelMessageSendComplex(settings.VoiceNotifyChannelID, &discordgo.MessageSend{
			Content: fmt.Sprintf("<@&%s>", settings.VoiceNotifyRoleID),
			Embeds: []*discordgo.MessageEmbed{{
				Color: 0xFFA500,
				Description: fmt.Sprintf("<@%s> has been in the voice channel for more than %d seconds.",
					userID, settings.VoiceNotifySeconds),
			}},
		})
		if err != nil {
			log.Printf("Error sending voice notification for %s: %v", userID, err)
			return
		}

		b.VoiceMu.Lock()
		b.VoiceNotices[userID] = msg.ID
		b.VoiceMu.Unlock()

		b.Audit.Audit(model.AuditEntry{
			GuildID:   guildID,
			Title:     "Voice Presence",
			Kind:      "VoicePresence",
			SubjectID: userID,
			Color:     0xFFA500,
			Extra: []model.AuditField{
				{Name: "Channel", Value: fmt.Sprintf("<#%s>", settings.VoiceChannelID)},
			},
		})
	})

	b.VoiceMu.Lock()
	if old, ok := b.VoiceTimers[userID]; ok {
		old.Stop()
	}
	b.VoiceTimers[userID] = timer
	b.VoiceMu.Unlock()
}

func cancelVoiceNotify(s *discordgo.Session, userID string, b *bot.Bot) {
	b.VoiceMu.Lock()
	if timer, ok := b.VoiceTimers[userID]; ok {
		timer.Stop()
		delete(b.VoiceTimers, userID)
	}
	messageID, hasNotice := b.VoiceNotices[userID]
	if hasNotice {
		delete(b.VoiceNotices, userID)
	}
	b.VoiceMu.Unlock()

	if hasNotice {
		if err := s.ChannelMessageDelete(b.Config.Settings.VoiceNotifyChannelID, messageID); err != nil {
			log.Printf("Error deleting voice notification message: %v", err)
		}
	}
}
