package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"confessions/model"

	"github.com/bwmarrin/discordgo"
)

const queuePreviewItems = 10

// QueueEmbed lists the publication queue for moderators.
func QueueEmbed(queue []model.Submission, pending int) *discordgo.MessageEmbed {
	var b strings.Builder
	if len(queue) == 0 {
		b.WriteString("La cola está vacía.")
	}
	for n, sub := range queue {
		if n == queuePreviewItems {
			fmt.Fprintf(&b, "… y %d más", len(queue)-queuePreviewItems)
			break
		}
		fmt.Fprintf(&b, "%d. `%s` • %s • %s\n", n+1, sub.ID, sub.Content.Type(), preview(sub.Content, 60))
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 Cola de publicación (%d)", len(queue)),
		Description: b.String(),
		Color:       ColorQueued,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Pendientes de revisión: %d", pending),
		},
	}
}

func preview(c model.Content, max int) string {
	var s string
	switch v := c.(type) {
	case model.Text:
		s = v.Body
	case model.Poll:
		s = v.Question
	case model.Voice:
		s = fmt.Sprintf("audio %d bytes", v.SizeBytes)
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}
