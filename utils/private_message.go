package utils

import (
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/model"
)

// SendPrivateEmbed sends a direct message with an embed to a user and
// classifies the outcome. A user who disallows DMs from the bot is a
// distinct, non-retryable result, never an error to escalate.
func SendPrivateEmbed(s *discordgo.Session, userID string, embed *discordgo.MessageEmbed) model.DMStatus {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		log.Printf("Error creating private channel with user %s: %v", userID, err)
		return model.DMFailed
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		if dmBlocked(err) {
			return model.DMBlocked
		}
		log.Printf("Error sending private message to user %s: %v", userID, err)
		return model.DMFailed
	}
	return model.DMDelivered
}

func dmBlocked(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser
	}
	return false
}
