package confession

import (
	"context"
	"strings"
	"unicode/utf8"

	"confessions/model"
	"confessions/moderation"
	"confessions/utils"

	"github.com/bwmarrin/discordgo"
)

// contentFromMessage extracts a submission from a DM. Audio attachments win
// over text.
func contentFromMessage(m *discordgo.Message) (model.Content, bool) {
	for _, att := range m.Attachments {
		if strings.HasPrefix(att.ContentType, "audio/") {
			return model.Voice{MediaRef: att.URL, SizeBytes: int64(att.Size)}, true
		}
	}
	if text := strings.TrimSpace(m.Content); text != "" {
		return model.Text{Body: text}, true
	}
	return nil, false
}

// MessageCreate handles confessions sent to the bot by DM.
func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return
	}

	content, ok := contentFromMessage(m.Message)
	if !ok {
		h.reply(s, m.ChannelID, msgUnsupported)
		return
	}
	if t, isText := content.(model.Text); isText && utf8.RuneCountInString(t.Body) > maxTextLength {
		h.reply(s, m.ChannelID, msgTooLong)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
	defer cancel()

	sub, err := h.Workflow.Submit(ctx, utils.ParseSnowflake(m.Author.ID), content, h.now())
	if err != nil {
		h.Log.Debug().Err(err).Str("user", m.Author.ID).Msg("submission not accepted")
		h.reply(s, m.ChannelID, errorMessage(err))
		return
	}
	h.reply(s, m.ChannelID, moderation.ReceiptMessage(sub.Content))
}

func (h *Handler) reply(s *discordgo.Session, channelID, text string) {
	if _, err := s.ChannelMessageSend(channelID, text); err != nil {
		h.Log.Warn().Err(err).Str("channel", channelID).Msg("reply failed")
	}
}
