package confession

import (
	"context"
	"strings"

	"confessions/model"
	"confessions/moderation"
	"confessions/relay"
	"confessions/throttle"
	"confessions/ui"
	"confessions/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const maxPollOptions = 10

var errTooManyOptions = errors.New("poll has too many options")

const msgHowTo = "\n\nEnvíame por mensaje privado tu confesión en texto o un audio. Para encuestas usa /encuesta."

func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range i.ApplicationCommandData().Options {
		opts[opt.Name] = opt
	}
	return opts
}

// pollFromOptions builds a poll from the /encuesta arguments. Options are
// separated by '|'. Polls are anonymous unless the user says otherwise.
func pollFromOptions(question, rawOptions string, anonymous *bool, multiple bool, kind string) (model.Poll, error) {
	var options []string
	for _, o := range strings.Split(rawOptions, "|") {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	if len(options) > maxPollOptions {
		return model.Poll{}, errors.Wrapf(errTooManyOptions, "%d options", len(options))
	}
	if kind == "" {
		kind = model.PollRegular
	}
	p := model.Poll{
		Question:        strings.TrimSpace(question),
		Options:         options,
		Anonymous:       anonymous == nil || *anonymous,
		MultipleAnswers: multiple,
		Kind:            kind,
	}
	if err := p.Validate(); err != nil {
		return model.Poll{}, err
	}
	return p, nil
}

// rulesMessage is the /confesion reply. A banned user sees the ban first.
func rulesMessage(d throttle.Decision) string {
	var denial *throttle.Denial
	if err := d.Err(); errors.As(err, &denial) && denial.Reason == throttle.ReasonBanned {
		return denial.Message() + "\n\n" + msgRules + msgHowTo
	}
	return msgRules + msgHowTo
}

func (h *Handler) confesionCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	d := h.Guard.Check(utils.InteractionUserID(i), h.now())
	h.respondEphemeral(s, i, rulesMessage(d))
}

func (h *Handler) preguntaCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var text string
	if opt, ok := commandOptions(i)["texto"]; ok {
		text = opt.StringValue()
	}
	userID := utils.InteractionUserID(i)
	if !h.deferEphemeral(s, i) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
		defer cancel()

		msg := relay.AskedMessage
		if _, err := h.Relay.Ask(ctx, userID, text, h.now()); err != nil {
			h.Log.Debug().Err(err).Int64("user", userID).Msg("question not accepted")
			msg = errorMessage(err)
		}
		h.edit(s, i, &discordgo.WebhookEdit{Content: utils.StringPtr(msg)})
	}()
}

func (h *Handler) encuestaCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := commandOptions(i)
	var (
		question, raw, kind string
		anonymous           *bool
		multiple            bool
	)
	if o, ok := opts["pregunta"]; ok {
		question = o.StringValue()
	}
	if o, ok := opts["opciones"]; ok {
		raw = o.StringValue()
	}
	if o, ok := opts["anonima"]; ok {
		v := o.BoolValue()
		anonymous = &v
	}
	if o, ok := opts["multiple"]; ok {
		multiple = o.BoolValue()
	}
	if o, ok := opts["tipo"]; ok {
		kind = o.StringValue()
	}

	poll, err := pollFromOptions(question, raw, anonymous, multiple, kind)
	if err != nil {
		h.respondEphemeral(s, i, errorMessage(err))
		return
	}
	userID := utils.InteractionUserID(i)
	if !h.deferEphemeral(s, i) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
		defer cancel()

		msg := moderation.ReceiptMessage(poll)
		if _, err := h.Workflow.Submit(ctx, userID, poll, h.now()); err != nil {
			h.Log.Debug().Err(err).Int64("user", userID).Msg("poll not accepted")
			msg = errorMessage(err)
		}
		h.edit(s, i, &discordgo.WebhookEdit{Content: utils.StringPtr(msg)})
	}()
}

func (h *Handler) backupCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !utils.CheckAuth(i, h.ModerationChannelID) {
		h.respondEphemeral(s, i, msgModerationOnly)
		return
	}
	if !h.deferEphemeral(s, i) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
		defer cancel()

		msg := msgBackupDone
		if err := h.Backup.Save(ctx); err != nil {
			h.Log.Error().Err(err).Msg("manual backup failed")
			msg = msgBackupFailed
		}
		h.edit(s, i, &discordgo.WebhookEdit{Content: utils.StringPtr(msg)})
	}()
}

func (h *Handler) colaCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !utils.CheckAuth(i, h.ModerationChannelID) {
		h.respondEphemeral(s, i, msgModerationOnly)
		return
	}

	if opt, ok := commandOptions(i)["descartar"]; ok {
		id := strings.TrimSpace(opt.StringValue())
		ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
		defer cancel()
		sub, err := h.Workflow.Discard(ctx, id, h.now())
		if err != nil {
			h.respondEphemeral(s, i, errorMessage(err))
			return
		}
		h.respondEmbed(s, i, ui.SubmissionEmbed(sub, &ui.StatusDiscarded))
		return
	}

	h.respondEmbed(s, i, ui.QueueEmbed(h.Store.Queue(), len(h.Store.Pending())))
}
