package def

import (
	"github.com/bwmarrin/discordgo"
)

var moderatorPermission int64 = discordgo.PermissionManageMessages

// BackupCommand forces a snapshot.
var BackupCommand = &discordgo.ApplicationCommand{
	Name:                     "backup",
	Description:              "Guarda una copia de seguridad del estado ahora",
	DefaultMemberPermissions: &moderatorPermission,
}

// ColaCommand shows the publication queue and can discard an item.
var ColaCommand = &discordgo.ApplicationCommand{
	Name:                     "cola",
	Description:              "Muestra la cola de publicación",
	DefaultMemberPermissions: &moderatorPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "descartar",
			Description: "ID de un elemento pendiente o en cola para descartarlo",
			Required:    false,
		},
	},
}
