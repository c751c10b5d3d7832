package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strconv"

	"confessions/model"
	"confessions/ui"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// ErrUnsupportedContent is returned for a content variant the transport cannot publish.
var ErrUnsupportedContent = errors.New("unsupported content type")

// Discord implements Gateway on a discordgo session.
type Discord struct {
	session      *discordgo.Session
	publicID     string
	moderationID string
	pollHours    int
}

// NewDiscord binds the gateway to the public and moderation channels.
func NewDiscord(s *discordgo.Session, publicChannelID, moderationChannelID string, pollHours int) *Discord {
	if pollHours <= 0 {
		pollHours = 24
	}
	return &Discord{
		session:      s,
		publicID:     publicChannelID,
		moderationID: moderationChannelID,
		pollHours:    pollHours,
	}
}

func (d *Discord) Publish(ctx context.Context, content model.Content) error {
	switch c := content.(type) {
	case model.Text:
		_, err := d.session.ChannelMessageSend(d.publicID, ui.PublicText(c), discordgo.WithContext(ctx))
		return errors.Wrap(err, "send text")
	case model.Voice:
		return d.publishVoice(ctx, c)
	case model.Poll:
		_, err := d.session.RequestWithBucketID(
			http.MethodPost,
			discordgo.EndpointChannelMessages(d.publicID),
			pollMessage(c, d.pollHours),
			discordgo.EndpointChannelMessages(d.publicID),
			discordgo.WithContext(ctx),
		)
		return errors.Wrap(err, "send poll")
	}
	return errors.Wrapf(ErrUnsupportedContent, "%T", content)
}

// publishVoice downloads the original attachment and uploads it again so the
// public message carries no link back to the submitter's DM.
func (d *Discord) publishVoice(ctx context.Context, v model.Voice) error {
	if err := v.Validate(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.MediaRef, nil)
	if err != nil {
		return errors.Wrap(err, "build download request")
	}
	resp, err := d.session.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "download voice")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download voice: status %d", resp.StatusCode)
	}
	audio, err := readVoice(resp.Body, resp.ContentLength)
	if err != nil {
		return err
	}

	name := path.Base(req.URL.Path)
	if name == "" || name == "/" || name == "." {
		name = "confesion.ogg"
	}
	_, err = d.session.ChannelMessageSendComplex(d.publicID, &discordgo.MessageSend{
		Content: ui.VoiceCaption,
		Files: []*discordgo.File{{
			Name:        name,
			ContentType: resp.Header.Get("Content-Type"),
			Reader:      bytes.NewReader(audio),
		}},
	}, discordgo.WithContext(ctx))
	return errors.Wrap(err, "upload voice")
}

// readVoice buffers a download, refusing anything over model.MaxVoiceBytes
// instead of uploading a truncated clip.
func readVoice(r io.Reader, contentLength int64) ([]byte, error) {
	if contentLength > model.MaxVoiceBytes {
		return nil, errors.Wrapf(model.ErrVoiceTooLarge, "download of %d bytes", contentLength)
	}
	audio, err := io.ReadAll(io.LimitReader(r, model.MaxVoiceBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "download voice")
	}
	if len(audio) > model.MaxVoiceBytes {
		return nil, errors.Wrap(model.ErrVoiceTooLarge, "download exceeded limit")
	}
	return audio, nil
}

func (d *Discord) Notify(ctx context.Context, userID int64, text string) error {
	ch, err := d.session.UserChannelCreate(strconv.FormatInt(userID, 10), discordgo.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "open dm")
	}
	_, err = d.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx))
	return errors.Wrap(err, "send dm")
}

func (d *Discord) PresentSubmission(ctx context.Context, sub model.Submission) error {
	_, err := d.session.ChannelMessageSendComplex(d.moderationID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{ui.SubmissionEmbed(sub, nil)},
		Components: ui.ReviewComponents(sub),
	}, discordgo.WithContext(ctx))
	return errors.Wrap(err, "send review message")
}

func (d *Discord) PresentQuestion(ctx context.Context, q model.Question) (string, error) {
	msg, err := d.session.ChannelMessageSendComplex(d.moderationID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{ui.QuestionEmbed(q, "")},
		Components: ui.QuestionComponents(q),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", errors.Wrap(err, "send question")
	}
	return msg.ID, nil
}

func (d *Discord) MarkQuestionAnswered(ctx context.Context, q model.Question, reply string) error {
	if q.InboxRef == "" {
		return nil
	}
	embeds := []*discordgo.MessageEmbed{ui.QuestionEmbed(q, reply)}
	components := []discordgo.MessageComponent{}
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         q.InboxRef,
		Channel:    d.moderationID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "edit question %s", q.ID)
}

// Discord poll payload. Discord has no quiz or anonymous mode, so those
// flags only show up in the moderation view.
type pollMedia struct {
	Text string `json:"text"`
}

type pollAnswer struct {
	Media pollMedia `json:"poll_media"`
}

type pollRequest struct {
	Question         pollMedia    `json:"question"`
	Answers          []pollAnswer `json:"answers"`
	Duration         int          `json:"duration"`
	AllowMultiselect bool         `json:"allow_multiselect"`
	LayoutType       int          `json:"layout_type"`
}

type pollMessageSend struct {
	Poll pollRequest `json:"poll"`
}

func pollMessage(p model.Poll, hours int) pollMessageSend {
	answers := make([]pollAnswer, 0, len(p.Options))
	for _, opt := range p.Options {
		answers = append(answers, pollAnswer{Media: pollMedia{Text: opt}})
	}
	return pollMessageSend{Poll: pollRequest{
		Question:         pollMedia{Text: p.Question},
		Answers:          answers,
		Duration:         hours,
		AllowMultiselect: p.MultipleAnswers,
		LayoutType:       1,
	}}
}
