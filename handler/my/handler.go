// Package my serves the personal panel where a user sees their own record.
package my

import (
	"context"
	"time"

	"confessions/db"
	"confessions/throttle"
	"confessions/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// StatsSource looks up a user's counters.
type StatsSource interface {
	GetUserStats(ctx context.Context, userID int64) (db.UserStats, error)
}

// Handler answers /mis-confesiones.
type Handler struct {
	stats StatsSource
	guard *throttle.Guard
	log   zerolog.Logger
	now   func() time.Time
}

// New creates the handler. stats may be nil when no ledger is configured.
func New(stats StatsSource, guard *throttle.Guard, log zerolog.Logger) *Handler {
	return &Handler{
		stats: stats,
		guard: guard,
		log:   log.With().Str("component", "my").Logger(),
		now:   time.Now,
	}
}

// Panel builds the embed for one user.
func (h *Handler) Panel(ctx context.Context, user *discordgo.User) *discordgo.MessageEmbed {
	userID := utils.ParseSnowflake(user.ID)
	now := h.now()

	var stats *db.UserStats
	if h.stats != nil {
		s, err := h.stats.GetUserStats(ctx, userID)
		if err != nil {
			h.log.Error().Err(err).Int64("user", userID).Msg("Error getting user stats")
		} else {
			stats = &s
		}
	}
	return BuildProfileEmbed(user, stats, h.guard.Check(userID, now), now)
}

// MyCommandHandler handles the slash command.
func (h *Handler) MyCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := utils.InteractionUser(i)
	if user == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{h.Panel(ctx, user)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Error responding with panel")
	}
}
