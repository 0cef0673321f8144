package discord

import "github.com/bwmarrin/discordgo"

var adminPerm = int64(discordgo.PermissionManageChannels)

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:                     "scan",
		Description:              "Escanea los canales del servidor y arma el inventario",
		DefaultMemberPermissions: &adminPerm,
	},
	{
		Name:                     "broadcast",
		Description:              "Avisa en cada canal del inventario que se va a archivar",
		DefaultMemberPermissions: &adminPerm,
	},
	{
		Name:                     "archive",
		Description:              "Archiva los canales notificados que ya vencieron",
		DefaultMemberPermissions: &adminPerm,
	},
	{
		Name:                     "inventory",
		Description:              "Muestra el inventario de canales (paginado)",
		DefaultMemberPermissions: &adminPerm,
	},
	{
		Name:                     "config",
		Description:              "Ver o cambiar la configuración del barrido (admins)",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "show", Description: "Ver configuración"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "notify",
				Description: "Canal donde se publican los reportes del auto-archivo",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Canal de reportes",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "archive-add",
				Description: "Agrega una categoría de archivo (se excluye del scan)",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "category",
					Description:  "Categoría",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "archive-remove",
				Description: "Quita una categoría de archivo",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "category",
					Description:  "Categoría",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "auto-archive",
				Description: "Activa o desactiva el archivo automático",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "true = archivar solo",
					Required:    true,
				}},
			},
		},
	},
}
