package def

import (
	"confessions/model"

	"github.com/bwmarrin/discordgo"
)

// EncuestaCommand submits a poll for moderation.
var EncuestaCommand = &discordgo.ApplicationCommand{
	Name:         "encuesta",
	Description:  "Envía una encuesta anónima a moderación",
	DMPermission: &dmAllowed,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "pregunta",
			Description: "La pregunta de la encuesta",
			Required:    true,
			MaxLength:   300,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "opciones",
			Description: "Opciones separadas por |, por ejemplo: Sí | No | Tal vez",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "anonima",
			Description: "Ocultar quién vota (por defecto sí)",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "multiple",
			Description: "Permitir varias respuestas",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tipo",
			Description: "Tipo de encuesta",
			Required:    false,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Normal", Value: model.PollRegular},
				{Name: "Quiz", Value: model.PollQuiz},
			},
		},
	},
}
