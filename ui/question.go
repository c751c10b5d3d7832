package ui

import (
	"fmt"

	"confessions/action"
	"confessions/model"

	"github.com/bwmarrin/discordgo"
)

// QuestionEmbed renders a question for moderators, with the reply once answered.
func QuestionEmbed(q model.Question, reply string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("❓ Nueva pregunta (ID: %s)", q.ID),
		Description: q.Text,
		Color:       ColorPending,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usuario", Value: fmt.Sprintf("%d", q.AskerID), Inline: true},
		},
	}
	if reply != "" {
		embed.Color = ColorApproved
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "✅ Respondida", Value: reply})
	}
	return embed
}

// QuestionComponents are the buttons for an open question.
func QuestionComponents(q model.Question) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Responder",
					Style:    discordgo.PrimaryButton,
					CustomID: action.ForQuestion(action.Reply, q).String(),
					Emoji:    &discordgo.ComponentEmoji{Name: "💬"},
				},
				discordgo.Button{
					Label:    "Sancionar",
					Style:    discordgo.SecondaryButton,
					CustomID: action.ForQuestion(action.Sanction, q).String(),
					Emoji:    &discordgo.ComponentEmoji{Name: "⚖️"},
				},
			},
		},
	}
}

// QuestionSanctionComponents offers ban durations for the asker.
func QuestionSanctionComponents(q model.Question, hours []int) []discordgo.MessageComponent {
	ids := make([]string, 0, len(hours))
	labels := make([]string, 0, len(hours))
	for _, h := range hours {
		ids = append(ids, action.ConfirmQuestionSanction(q, h).String())
		labels = append(labels, durationLabel(h))
	}
	return durationRows(ids, labels, action.ForQuestion(action.Cancel, q).String())
}
