// Package ui builds the Discord embeds and buttons shown to moderators and
// the messages posted to the public channel.
package ui

import (
	"fmt"
	"strings"

	"confessions/action"
	"confessions/model"

	"github.com/bwmarrin/discordgo"
)

// Embed colors.
const (
	ColorPending  = 0xFFFF00
	ColorApproved = 0x00FF00
	ColorQueued   = 0x3498DB
	ColorRejected = 0xFF0000
	ColorSanction = 0xFF8C00
	ColorNeutral  = 0x95A5A6
)

// Status is the outcome line appended to a reviewed submission.
type Status struct {
	Text  string
	Color int
}

var (
	StatusApproved  = Status{"✅ Aprobada y publicada", ColorApproved}
	StatusQueued    = Status{"🕒 Añadida a la cola de publicación", ColorQueued}
	StatusRejected  = Status{"❌ Rechazada", ColorRejected}
	StatusDiscarded = Status{"🗑️ Descartada", ColorNeutral}
)

// SanctionedStatus describes a confirmed ban.
func SanctionedStatus(hours int) Status {
	return Status{fmt.Sprintf("⚖️ Usuario sancionado por %d hora(s)", hours), ColorSanction}
}

// kindTitle names a content variant for moderators.
func kindTitle(c model.Content) string {
	switch c.(type) {
	case model.Poll:
		return "📊 Nueva encuesta"
	case model.Voice:
		return "🎵 Nueva audio confesión"
	default:
		return "📝 Nueva confesión"
	}
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// describe renders the content body for the moderation message.
func describe(c model.Content) string {
	switch v := c.(type) {
	case model.Text:
		return v.Body
	case model.Voice:
		return fmt.Sprintf("Duración: %d segundos\nTamaño: %d bytes\nArchivo: %s", v.DurationSeconds, v.SizeBytes, v.MediaRef)
	case model.Poll:
		var b strings.Builder
		fmt.Fprintf(&b, "Pregunta: %s\n\nOpciones:\n", v.Question)
		for _, opt := range v.Options {
			fmt.Fprintf(&b, "• %s\n", opt)
		}
		fmt.Fprintf(&b, "\nTipo: %s\nAnónima: %s\nMúltiples respuestas: %s", v.Kind, yesNo(v.Anonymous), yesNo(v.MultipleAnswers))
		return b.String()
	}
	return ""
}

// SubmissionEmbed renders a submission for the moderation channel. A nil
// status means it is still awaiting a decision.
func SubmissionEmbed(sub model.Submission, status *Status) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (ID: %s)", kindTitle(sub.Content), sub.ID),
		Description: describe(sub.Content),
		Color:       ColorPending,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usuario", Value: fmt.Sprintf("%d", sub.SubmitterID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Enviada • %s", sub.SubmittedAt.UTC().Format("2006-01-02 15:04 MST")),
		},
	}
	if status != nil {
		WithStatus(embed, *status)
	}
	return embed
}

// WithStatus recolors embed and appends the outcome line.
func WithStatus(embed *discordgo.MessageEmbed, status Status) *discordgo.MessageEmbed {
	embed.Color = status.Color
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Estado", Value: status.Text})
	return embed
}

// ReviewComponents are the decision buttons for a pending submission.
func ReviewComponents(sub model.Submission) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Aprobar",
					Style:    discordgo.SuccessButton,
					CustomID: action.ForSubmission(action.Approve, sub).String(),
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				},
				discordgo.Button{
					Label:    "A la cola",
					Style:    discordgo.PrimaryButton,
					CustomID: action.ForSubmission(action.Queue, sub).String(),
					Emoji:    &discordgo.ComponentEmoji{Name: "🕒"},
				},
				discordgo.Button{
					Label:    "Rechazar",
					Style:    discordgo.DangerButton,
					CustomID: action.ForSubmission(action.Reject, sub).String(),
					Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				},
				discordgo.Button{
					Label:    "Sancionar",
					Style:    discordgo.SecondaryButton,
					CustomID: action.ForSubmission(action.Sanction, sub).String(),
					Emoji:    &discordgo.ComponentEmoji{Name: "⚖️"},
				},
			},
		},
	}
}

// SanctionPrompt is the text shown above the duration buttons.
func SanctionPrompt(userID int64, priorSanctions int) string {
	text := fmt.Sprintf("⏰ Selecciona el tiempo de sanción para el usuario %d:", userID)
	if priorSanctions > 0 {
		text += fmt.Sprintf("\nSanciones anteriores: %d", priorSanctions)
	}
	return text
}

// SanctionComponents offers one button per duration plus a cancel button.
func SanctionComponents(sub model.Submission, hours []int) []discordgo.MessageComponent {
	buttons := make([]string, 0, len(hours))
	labels := make([]string, 0, len(hours))
	for _, h := range hours {
		buttons = append(buttons, action.ConfirmSubmissionSanction(sub, h).String())
		labels = append(labels, durationLabel(h))
	}
	return durationRows(buttons, labels, action.ForSubmission(action.Cancel, sub).String())
}

func durationLabel(h int) string {
	if h == 1 {
		return "1 hora"
	}
	return fmt.Sprintf("%d horas", h)
}

// durationRows lays out duration buttons five per row, then the cancel row.
func durationRows(ids, labels []string, cancelID string) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(ids); start += 5 {
		end := min(start+5, len(ids))
		row := discordgo.ActionsRow{}
		for i := start; i < end; i++ {
			row.Components = append(row.Components, discordgo.Button{
				Label:    labels[i],
				Style:    discordgo.DangerButton,
				CustomID: ids[i],
			})
		}
		rows = append(rows, row)
	}
	rows = append(rows, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Cancelar",
				Style:    discordgo.SecondaryButton,
				CustomID: cancelID,
				Emoji:    &discordgo.ComponentEmoji{Name: "↩️"},
			},
		},
	})
	return rows
}
