package utils

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// StringPtr returns a pointer to the given string.
// This is a helper function for discordgo fields that require a *string.
func StringPtr(s string) *string {
	return &s
}

// InteractionUser returns the user behind an interaction, in a guild or a DM.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// ParseSnowflake converts a Discord id to int64. Invalid ids become 0.
func ParseSnowflake(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// InteractionUserID returns the numeric id of the interaction's user.
func InteractionUserID(i *discordgo.InteractionCreate) int64 {
	u := InteractionUser(i)
	if u == nil {
		return 0
	}
	return ParseSnowflake(u.ID)
}
