package handlers

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/punishment"
	"moderation-bot/utils"
)

// HandleIssue is the glue for timeout/mute/ban/kick: option parsing, the
// bot-target guard, the engine call and the confirmation reply. All
// lifecycle decisions live in the engine.
func HandleIssue(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, kind model.PunishmentKind) {
	opts := optionMap(i)
	target := userOpt(s, i, "user")
	if target == nil {
		utils.SendErrorResponse(s, i, "Target user not found.")
		return
	}

	reason := stringOpt(opts, "reason")
	var duration *int
	switch kind {
	case model.KindTimeout, model.KindMute, model.KindBan:
		duration = intOpt(opts, "duration")
	}

	if err := b.Engine.Issue(target.ID, i.Member.User.ID, kind, reason, duration); err != nil {
		respondEngineError(s, i, err)
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("%s (%s)", target.String(), target.ID)},
	}
	switch kind {
	case model.KindTimeout, model.KindMute, model.KindBan:
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Duration", Value: model.DurationText(kind, duration),
		})
	}
	respondModeration(s, i, fmt.Sprintf("User was successfully %s.", pastTense(kind)), reason, fields)
}

// HandleReverse is the glue for untimeout/unmute/unban.
func HandleReverse(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, kind model.PunishmentKind) {
	opts := optionMap(i)
	target := userOpt(s, i, "user")
	if target == nil {
		utils.SendErrorResponse(s, i, "Target user not found.")
		return
	}

	reason := stringOpt(opts, "reason")
	if err := b.Engine.Reverse(target.ID, i.Member.User.ID, kind, reason); err != nil {
		respondEngineError(s, i, err)
		return
	}

	respondModeration(s, i, fmt.Sprintf("User was successfully %s.", pastTense(kind)), reason, []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("%s (%s)", target.String(), target.ID)},
	})
}

// HandlePunishmentList renders the subject's full history.
func HandlePunishmentList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	target := userOpt(s, i, "user")
	if target == nil {
		utils.SendErrorResponse(s, i, "Target user not found.")
		return
	}

	history := b.Engine.GetHistory(target.ID)
	if len(history) == 0 {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("There is no punishment history for %s.", target.String()))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Punishment History for %s", target.String()),
		Description: fmt.Sprintf("Here is the punishment history for %s:", target.String()),
		Color:       0xFFA500,
	}
	for _, rec := range history {
		reason := rec.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("Punishment Type: %s", rec.Kind),
			Value: fmt.Sprintf("Moderator: <@%s>\nTimestamp: %s\nReason: %s\nDuration: %s",
				rec.ModeratorID, rec.Timestamp.Format("2006-01-02 15:04:05"), reason, rec.DurationText()),
		})
	}
	utils.SendEphemeralEmbed(s, i, embed)
}

func respondModeration(s *discordgo.Session, i *discordgo.InteractionCreate, description, reason string, fields []*discordgo.MessageEmbedField) {
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:  "Moderator",
		Value: fmt.Sprintf("%s (%s)", i.Member.User.String(), i.Member.User.ID),
	})
	if reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: reason})
	}
	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Description: description,
		Color:       0x00FF00,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

// respondEngineError maps the engine's error taxonomy onto replies:
// rejections verbatim, everything else as the generic execution failure.
func respondEngineError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if rej, ok := punishment.IsRejection(err); ok {
		utils.SendErrorResponse(s, i, rej.Msg)
		return
	}
	utils.SendErrorResponse(s, i, "An error occurred while executing the command.")
}

func pastTense(kind model.PunishmentKind) string {
	switch kind {
	case model.KindTimeout:
		return "timed out"
	case model.KindUntimeout:
		return "released from timeout"
	case model.KindMute:
		return "muted"
	case model.KindUnmute:
		return "unmuted"
	case model.KindBan:
		return "banned"
	case model.KindUnban:
		return "unbanned"
	case model.KindKick:
		return "kicked"
	}
	return string(kind)
}
