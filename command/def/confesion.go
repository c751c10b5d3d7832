package def

import (
	"github.com/bwmarrin/discordgo"
)

var dmAllowed = true

// ConfesionCommand shows the submission rules.
var ConfesionCommand = &discordgo.ApplicationCommand{
	Name:         "confesion",
	Description:  "Muestra las reglas para enviar confesiones",
	DMPermission: &dmAllowed,
}

// PreguntaCommand sends a question to the moderators.
var PreguntaCommand = &discordgo.ApplicationCommand{
	Name:         "pregunta",
	Description:  "Envía una pregunta anónima a los moderadores",
	DMPermission: &dmAllowed,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "texto",
			Description: "Tu pregunta",
			Required:    true,
			MaxLength:   1500,
		},
	},
}

// MisConfesionesCommand shows the caller their own record.
var MisConfesionesCommand = &discordgo.ApplicationCommand{
	Name:         "mis-confesiones",
	Description:  "Muestra tu historial y si puedes enviar confesiones ahora",
	DMPermission: &dmAllowed,
}
