package confession

import (
	"context"

	"confessions/action"
	"confessions/model"
	"confessions/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const replyInputID = "respuesta"

// moderationButton handles the decision buttons under a submission.
func (h *Handler) moderationButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	a, ok := h.authorizedAction(s, i)
	if !ok {
		return
	}
	if !h.deferUpdate(s, i) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
		defer cancel()

		out, err := h.Workflow.Dispatch(ctx, a, h.now())
		if err != nil {
			h.fail(s, i, a, err)
			return
		}
		h.edit(s, i, renderOutcome(out))
	}()
}

// questionButton handles the reply and sanction buttons under a question.
func (h *Handler) questionButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	a, ok := h.authorizedAction(s, i)
	if !ok {
		return
	}

	if a.Verb == action.Reply {
		if err := h.Relay.BeginReply(utils.InteractionUserID(i), a.ID, h.now()); err != nil {
			h.respondEphemeral(s, i, errorMessage(err))
			return
		}
		if err := s.InteractionRespond(i.Interaction, replyModalResponse(a.ID)); err != nil {
			h.Log.Error().Err(err).Str("id", a.ID).Msg("could not open reply modal")
		}
		return
	}

	if !h.deferUpdate(s, i) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
		defer cancel()

		var (
			edit *discordgo.WebhookEdit
			q    model.Question
			err  error
		)
		switch {
		case a.ConfirmsSanction():
			q, _, err = h.Relay.SanctionAsker(ctx, a.ID, a.Hours, h.now())
			if err == nil {
				edit = renderQuestionSanctioned(q, a.Hours)
			}
		case a.Verb == action.Sanction:
			q, err = h.Relay.Question(a.ID)
			if err == nil {
				edit = renderQuestionSanctionMenu(q, h.Relay.BanChoices())
			}
		case a.Verb == action.Cancel:
			q, err = h.Relay.Question(a.ID)
			if err == nil {
				edit = renderQuestionOpen(q)
			}
		default:
			h.followup(s, i, msgInvalidAction)
			return
		}
		if err != nil {
			h.fail(s, i, a, err)
			return
		}
		h.edit(s, i, edit)
	}()
}

// replyModalResponse collects a moderator's answer to a question.
func replyModalResponse(questionID string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: action.Action{Domain: action.DomainQuestion, Verb: action.Reply, ID: questionID}.String(),
			Title:    "Responder pregunta",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    replyInputID,
							Label:       "Respuesta",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "Escribe la respuesta que recibirá el usuario...",
							Required:    true,
							MaxLength:   1800,
						},
					},
				},
			},
		},
	}
}

// replySubmit sends the answer typed in the reply modal.
func (h *Handler) replySubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !utils.CheckAuth(i, h.ModerationChannelID) {
		h.respondEphemeral(s, i, msgModerationOnly)
		return
	}
	data := i.ModalSubmitData()
	questionID, err := replyTarget(data.CustomID)
	if err != nil {
		h.Log.Warn().Err(err).Str("custom_id", data.CustomID).Msg("bad reply modal")
		h.respondEphemeral(s, i, msgInvalidAction)
		return
	}
	text := modalValue(data, replyInputID)
	moderatorID := utils.InteractionUserID(i)

	if !h.deferEphemeral(s, i) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
		defer cancel()

		msg := msgReplySent
		if _, err := h.Relay.ReplyFromSession(ctx, moderatorID, questionID, text, h.now()); err != nil {
			h.Log.Info().Err(err).Int64("moderator", moderatorID).Msg("reply not sent")
			msg = errorMessage(err)
		}
		h.edit(s, i, &discordgo.WebhookEdit{Content: utils.StringPtr(msg)})
	}()
}

// replyTarget is the question a reply modal was opened for.
func replyTarget(customID string) (string, error) {
	a, err := action.Parse(customID)
	if err != nil {
		return "", err
	}
	if a.Domain != action.DomainQuestion || a.Verb != action.Reply {
		return "", errors.Wrapf(action.ErrMalformed, "not a reply form: %s", customID)
	}
	return a.ID, nil
}

// modalValue finds a text input by custom id.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// authorizedAction parses the button token after checking the channel.
func (h *Handler) authorizedAction(s *discordgo.Session, i *discordgo.InteractionCreate) (action.Action, bool) {
	if !utils.CheckAuth(i, h.ModerationChannelID) {
		h.respondEphemeral(s, i, msgModerationOnly)
		return action.Action{}, false
	}
	a, err := action.Parse(i.MessageComponentData().CustomID)
	if err != nil {
		h.Log.Warn().Err(err).Str("custom_id", i.MessageComponentData().CustomID).Msg("bad action token")
		h.respondEphemeral(s, i, msgInvalidAction)
		return action.Action{}, false
	}
	return a, true
}

func (h *Handler) fail(s *discordgo.Session, i *discordgo.InteractionCreate, a action.Action, err error) {
	h.Log.Info().Err(err).Str("action", a.String()).Msg("action failed")
	h.followup(s, i, errorMessage(err))
}
