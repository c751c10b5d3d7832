package bot

import (
	"confessions/handler"
	"confessions/handler/confession"

	"github.com/bwmarrin/discordgo"
)

func registerEventHandlers(s *discordgo.Session, h *confession.Handler) {
	s.AddHandler(handler.OnInteractionCreate)
	s.AddHandler(h.MessageCreate)
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		h.Log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("connected to discord")
	})

	// 设置必要的intents
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
}
