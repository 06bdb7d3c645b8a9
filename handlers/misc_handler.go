package handlers

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"moderation-bot/bot"
	"moderation-bot/commands"
	"moderation-bot/model"
	"moderation-bot/utils"
	"moderation-bot/utils/database"
)

func HandleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defs := commands.GenerateCommands()
	fields := make([]*discordgo.MessageEmbedField, 0, len(defs))
	for _, cmd := range defs {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "/" + cmd.Name,
			Value:  cmd.Description,
			Inline: true,
		})
	}

	utils.SendEphemeralEmbed(s, i, &discordgo.MessageEmbed{
		Title:  "Available Commands",
		Color:  0x5865F2,
		Fields: fields,
	})
}

func HandleDM(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	target := userOpt(s, i, "user")
	message := stringOpt(opts, "message")
	if target == nil || message == "" {
		utils.SendErrorResponse(s, i, "A user and a message are required.")
		return
	}
	if target.Bot {
		utils.SendErrorResponse(s, i, "You cannot send a DM to a bot.")
		return
	}

	status := b.Audit.NotifySubject(target.ID, model.Notice{
		Title:       "Message from the moderators",
		Description: message,
		Color:       0x5865F2,
	})
	switch status {
	case model.DMBlocked:
		utils.SendErrorResponse(s, i, "Could not send the DM: the user does not accept direct messages.")
		return
	case model.DMFailed:
		utils.SendErrorResponse(s, i, "Could not send the DM.")
		return
	}

	b.Audit.Audit(model.AuditEntry{
		GuildID:   i.GuildID,
		Title:     "DM Command Used",
		Kind:      "DMSent",
		ActorID:   i.Member.User.ID,
		ActorTag:  i.Member.User.String(),
		SubjectID: target.ID,
		Color:     0x5865F2,
		Extra: []model.AuditField{
			{Name: "Message", Value: message},
		},
	})

	utils.SendEphemeralEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "DM Sent",
		Description: fmt.Sprintf("Message delivered to <@%s>.", target.ID),
		Color:       0x008000,
	})
}

func HandleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	cpuUsage := "n/a"
	if len(cpuPercent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	events, err := database.CountEvents(b.EventDB)
	if err != nil {
		events = 0
	}

	embed := &discordgo.MessageEmbed{
		Title: "Bot Status",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Uptime", Value: utils.FormatUptime(time.Since(b.StartTime)), Inline: false},
			{Name: "WebSocket Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Go Version", Value: runtime.Version(), Inline: true},
			{Name: "OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			{Name: "CPU Cores", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "CPU Usage", Value: cpuUsage, Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true},
			{Name: "Audit Events", Value: fmt.Sprintf("%d", events), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Status checked at " + time.Now().Format("15:04"),
		},
	}

	utils.SendEmbedResponse(s, i, embed)
}

func HandleReloadCommands(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}

	if err := b.RefreshCommands(); err != nil {
		log.Printf("Error reloading commands: %v", err)
		utils.SendFollowUp(s, i.Interaction, "Failed to reload commands.")
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Reloaded %d commands.", len(b.RegisteredCommands)))
}
