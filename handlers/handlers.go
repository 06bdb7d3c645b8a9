package handlers

import (
	"github.com/bwmarrin/discordgo"

	"moderation-bot/bot"
	"moderation-bot/model"
	"moderation-bot/utils"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		HandleMemberJoin(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		HandleMemberLeave(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.InviteCreate) {
		HandleInviteCreate(s, e, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.InviteDelete) {
		HandleInviteDelete(s, e, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		HandleVoiceStateUpdate(s, v, b)
	})
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	issue := func(kind model.PunishmentKind) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleIssue(s, i, b, kind)
		}
	}
	reverse := func(kind model.PunishmentKind) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleReverse(s, i, b, kind)
		}
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"timeout":   issue(model.KindTimeout),
		"mute":      issue(model.KindMute),
		"ban":       issue(model.KindBan),
		"kick":      issue(model.KindKick),
		"untimeout": reverse(model.KindUntimeout),
		"unmute":    reverse(model.KindUnmute),
		"unban":     reverse(model.KindUnban),
		"clear": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleClear(s, i, b)
		},
		"slowmode": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleSlowmode(s, i, b)
		},
		"lockchannel": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleLockChannel(s, i, b, true)
		},
		"unlockchannel": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleLockChannel(s, i, b, false)
		},
		"dm": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleDM(s, i, b)
		},
		"punishmentlist": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandlePunishmentList(s, i, b)
		},
		"help": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleHelp(s, i)
		},
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleStatus(s, i, b)
		},
		"reloadcommands": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleReloadCommands(s, i, b)
		},
	}
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
		h(s, i)
		return
	}
	utils.SendErrorResponse(s, i, "Unknown command.")
}
