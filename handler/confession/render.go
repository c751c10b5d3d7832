package confession

import (
	"confessions/action"
	"confessions/model"
	"confessions/moderation"
	"confessions/ui"

	"github.com/bwmarrin/discordgo"
)

var noComponents = []discordgo.MessageComponent{}

// renderOutcome rebuilds the moderation message after a decision.
func renderOutcome(o moderation.Outcome) *discordgo.WebhookEdit {
	sub := o.Submission
	var (
		status     *ui.Status
		content    = ""
		components = noComponents
	)

	switch o.Verb {
	case action.Approve:
		status = &ui.StatusApproved
	case action.Queue:
		status = &ui.StatusQueued
	case action.Reject:
		status = &ui.StatusRejected
	case action.Sanction:
		if o.Hours > 0 {
			s := ui.SanctionedStatus(o.Hours)
			status = &s
		} else {
			content = ui.SanctionPrompt(sub.SubmitterID, o.PriorSanctions)
			components = ui.SanctionComponents(sub, o.BanChoices)
		}
	case action.Cancel:
		components = ui.ReviewComponents(sub)
	}

	embeds := []*discordgo.MessageEmbed{ui.SubmissionEmbed(sub, status)}
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}
}

// renderQuestionSanctionMenu shows the ban durations under a question.
func renderQuestionSanctionMenu(q model.Question, hours []int) *discordgo.WebhookEdit {
	content := ui.SanctionPrompt(q.AskerID, 0)
	embeds := []*discordgo.MessageEmbed{ui.QuestionEmbed(q, "")}
	components := ui.QuestionSanctionComponents(q, hours)
	return &discordgo.WebhookEdit{Content: &content, Embeds: &embeds, Components: &components}
}

// renderQuestionOpen restores the reply and sanction buttons.
func renderQuestionOpen(q model.Question) *discordgo.WebhookEdit {
	content := ""
	embeds := []*discordgo.MessageEmbed{ui.QuestionEmbed(q, "")}
	components := ui.QuestionComponents(q)
	return &discordgo.WebhookEdit{Content: &content, Embeds: &embeds, Components: &components}
}

// renderQuestionSanctioned closes a question whose asker was banned.
func renderQuestionSanctioned(q model.Question, hours int) *discordgo.WebhookEdit {
	content := ""
	embeds := []*discordgo.MessageEmbed{ui.WithStatus(ui.QuestionEmbed(q, ""), ui.SanctionedStatus(hours))}
	return &discordgo.WebhookEdit{Content: &content, Embeds: &embeds, Components: &noComponents}
}
