package commands

import "github.com/bwmarrin/discordgo"

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func reasonOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for action",
		Required:    required,
	}
}

// GenerateCommands returns the full slash-command set registered for the
// moderation guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "Show available commands",
		},
		{
			Name:        "timeout",
			Description: "Timeout a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to target"),
				reasonOption(true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Duration in minutes",
					Required:    true,
				},
			},
		},
		{
			Name:        "untimeout",
			Description: "Remove timeout from a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to target"),
				reasonOption(false),
			},
		},
		{
			Name:        "mute",
			Description: "Mute a user (role-based)",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to target"),
				reasonOption(true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Duration in days (omit for permanent)",
					Required:    false,
				},
			},
		},
		{
			Name:        "unmute",
			Description: "Unmute a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to target"),
				reasonOption(false),
			},
		},
		{
			Name:        "ban",
			Description: "Ban a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to target"),
				reasonOption(false),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Days of messages to delete (max 7)",
					Required:    false,
				},
			},
		},
		{
			Name:        "unban",
			Description: "Unban a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to target"),
				reasonOption(false),
			},
		},
		{
			Name:        "kick",
			Description: "Kick a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to target"),
				reasonOption(false),
			},
		},
		{
			Name:        "clear",
			Description: "Clear messages in the channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "number",
					Description: "Number of messages to clear",
					Required:    true,
				},
			},
		},
		{
			Name:        "slowmode",
			Description: "Apply slowmode to the current channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Duration of slowmode in seconds (0 to disable)",
					Required:    true,
				},
				reasonOption(false),
			},
		},
		{
			Name:        "lockchannel",
			Description: "Locks the current channel for the configured role",
			Options: []*discordgo.ApplicationCommandOption{
				reasonOption(false),
			},
		},
		{
			Name:        "unlockchannel",
			Description: "Unlocks the current channel for the configured role",
			Options: []*discordgo.ApplicationCommandOption{
				reasonOption(false),
			},
		},
		{
			Name:        "dm",
			Description: "Send a direct message to a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to send DM"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "The message to send",
					Required:    true,
				},
			},
		},
		{
			Name:        "punishmentlist",
			Description: "View punishment history of a user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user to view punishment history"),
			},
		},
		{
			Name:        "status",
			Description: "Check the bot status",
		},
		{
			Name:        "reloadcommands",
			Description: "Reload application commands",
		},
	}
}
