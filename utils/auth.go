package utils

import "github.com/bwmarrin/discordgo"

// CheckAuth 检查交互是否来自审核频道
// Moderation is open to anyone who can see the moderation channel.
func CheckAuth(i *discordgo.InteractionCreate, moderationChannelID string) bool {
	return moderationChannelID != "" && i.ChannelID == moderationChannelID
}
