package my

import (
	"strconv"
	"time"

	"confessions/db"
	"confessions/throttle"

	"github.com/bwmarrin/discordgo"
)

const msgCanSubmit = "✅ Puedes enviar confesiones."

// statusLine describes whether the user may submit right now.
func statusLine(d throttle.Decision) string {
	if err := d.Err(); err != nil {
		return err.(*throttle.Denial).Message()
	}
	return msgCanSubmit
}

// BuildProfileEmbed renders a user's own moderation counters.
func BuildProfileEmbed(user *discordgo.User, stats *db.UserStats, d throttle.Decision, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    user.Username,
			IconURL: user.AvatarURL(""),
		},
		Title:       "Mis confesiones",
		Description: statusLine(d),
		Color:       0x5865F2, // Discord Blurple
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Solo tú puedes ver esto"},
	}
	if stats == nil {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Historial", Value: "No disponible"}}
		return embed
	}
	if stats.SubmittedCount == 0 {
		embed.Description += "\n\nTodavía no has enviado ninguna confesión."
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Enviadas", Value: strconv.Itoa(stats.SubmittedCount), Inline: true},
		{Name: "Publicadas", Value: strconv.Itoa(stats.PublishedCount), Inline: true},
		{Name: "Rechazadas", Value: strconv.Itoa(stats.RejectedCount), Inline: true},
		{Name: "Sanciones", Value: strconv.Itoa(stats.BanCount), Inline: true},
	}
	return embed
}
