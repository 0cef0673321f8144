package discord

import (
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// options del comando o del primer subcomando
func cmdOptions(ic *discordgo.InteractionCreate) []*discordgo.ApplicationCommandInteractionDataOption {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return nil
	}
	opts := ic.ApplicationCommandData().Options
	for _, o := range opts {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			return append(opts[:0:0], o.Options...)
		}
	}
	return opts
}

func findOpt(ic *discordgo.InteractionCreate, name string, typ discordgo.ApplicationCommandOptionType) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, o := range cmdOptions(ic) {
		if o.Name == name && o.Type == typ {
			return o, true
		}
	}
	return nil, false
}

func optBool(ic *discordgo.InteractionCreate, name string) (bool, bool) {
	if o, ok := findOpt(ic, name, discordgo.ApplicationCommandOptionBoolean); ok {
		return o.BoolValue(), true
	}
	return false, false
}

// optChannel devuelve sólo el ID (no hace falta resolver el canal).
func optChannel(ic *discordgo.InteractionCreate, name string) (string, bool) {
	o, ok := findOpt(ic, name, discordgo.ApplicationCommandOptionChannel)
	if !ok {
		return "", false
	}
	id, ok := o.Value.(string)
	return id, ok && id != ""
}

func subcmdName(ic *discordgo.InteractionCreate) (string, bool) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return "", false
	}
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			return o.Name, true
		}
	}
	return "", false
}

func userID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}

// truncate a n runas (labels de select: máx 100)
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
