package command

import (
	"confessions/command/def"

	"github.com/bwmarrin/discordgo"
)

// UserCommands are registered globally so they work in DMs.
var UserCommands = []*discordgo.ApplicationCommand{
	def.ConfesionCommand,
	def.PreguntaCommand,
	def.EncuestaCommand,
	def.MisConfesionesCommand,
}

// ModerationCommands are registered on the guild that owns the moderation channel.
var ModerationCommands = []*discordgo.ApplicationCommand{
	def.BackupCommand,
	def.ColaCommand,
}
