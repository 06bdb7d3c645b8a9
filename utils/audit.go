package utils

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"moderation-bot/model"
	"moderation-bot/utils/database"
)

// AuditLogger posts audit embeds to the configured log channel and mirrors
// each one as a durable row in the audit event database. It also delivers
// subject DMs, which makes it the engine's Notifier.
type AuditLogger struct {
	Session   *discordgo.Session
	ChannelID string
	DB        *sqlx.DB
}

func NewAuditLogger(s *discordgo.Session, channelID string, db *sqlx.DB) *AuditLogger {
	return &AuditLogger{Session: s, ChannelID: channelID, DB: db}
}

// Audit renders the entry as a log-channel embed and persists it. Failures
// on either path are logged and never propagate.
func (a *AuditLogger) Audit(e model.AuditEntry) {
	fields := make([]*discordgo.MessageEmbedField, 0, len(e.Extra)+3)
	if e.SubjectID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "User", Value: fmt.Sprintf("<@%s> (%s)", e.SubjectID, e.SubjectID)})
	}
	if e.ActorID != "" {
		actor := e.ActorTag
		if actor == "" {
			actor = fmt.Sprintf("<@%s>", e.ActorID)
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Moderator", Value: fmt.Sprintf("%s (%s)", actor, e.ActorID)})
	}
	for _, f := range e.Extra {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value})
	}
	if e.Reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: e.Reason})
	}

	embed := &discordgo.MessageEmbed{
		Title:     e.Title,
		Color:     e.Color,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Server Log"},
	}

	a.SendEmbed(embed, model.AuditEvent{
		GuildID:   e.GuildID,
		Kind:      e.Kind,
		ActorID:   e.ActorID,
		SubjectID: e.SubjectID,
		Details:   entryDetails(e),
	})
}

// SendEmbed posts a prebuilt embed to the log channel and records the
// matching event row. Used directly by the event handlers for embeds with
// custom layout (join/leave, invites, channel activity).
func (a *AuditLogger) SendEmbed(embed *discordgo.MessageEmbed, event model.AuditEvent) {
	if a.ChannelID != "" {
		if _, err := a.Session.ChannelMessageSendEmbed(a.ChannelID, embed); err != nil {
			log.Printf("Error sending audit embed to log channel: %v", err)
		}
	}

	if a.DB != nil {
		event.Timestamp = time.Now().Unix()
		if _, err := database.AddEvent(a.DB, event); err != nil {
			log.Printf("Error persisting audit event: %v", err)
		}
	}
}

// NotifySubject delivers a sanction notice to the subject over DM.
func (a *AuditLogger) NotifySubject(userID string, n model.Notice) model.DMStatus {
	fields := []*discordgo.MessageEmbedField{}
	if n.Reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: n.Reason})
	}
	if n.EndsAt != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Ends", Value: n.EndsAt.Format(time.RFC1123)})
	}

	embed := &discordgo.MessageEmbed{
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return SendPrivateEmbed(a.Session, userID, embed)
}

func entryDetails(e model.AuditEntry) string {
	parts := []string{e.Title}
	for _, f := range e.Extra {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Value))
	}
	if e.Reason != "" {
		parts = append(parts, "Reason: "+e.Reason)
	}
	return strings.Join(parts, " | ")
}
