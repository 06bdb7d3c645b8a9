package handlers

import "github.com/bwmarrin/discordgo"

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *int {
	if opt, ok := opts[name]; ok {
		v := int(opt.IntValue())
		return &v
	}
	return nil
}

func userOpt(s *discordgo.Session, i *discordgo.InteractionCreate, name string) *discordgo.User {
	if opt, ok := optionMap(i)[name]; ok {
		return opt.UserValue(s)
	}
	return nil
}
