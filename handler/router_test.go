package handler

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func componentInteraction(customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
	}}
}

func TestHandlerKey(t *testing.T) {
	assert.Equal(t, "mod", handlerKey("mod:ok:text:abc"))
	assert.Equal(t, "q", handlerKey("q:res:1"))
	assert.Equal(t, "plain", handlerKey("plain"))
}

func TestOnInteractionCreateRoutesByPrefix(t *testing.T) {
	var got []string
	AddComponentHandler("test-mod", func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		got = append(got, i.MessageComponentData().CustomID)
	})
	AddCommandHandler("test-cmd", func(*discordgo.Session, *discordgo.InteractionCreate) {
		got = append(got, "command")
	})

	OnInteractionCreate(nil, componentInteraction("test-mod:ok:text:1"))
	OnInteractionCreate(nil, componentInteraction("unknown:ok"))
	OnInteractionCreate(nil, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: "test-cmd"},
	}})

	assert.Equal(t, []string{"test-mod:ok:text:1", "command"}, got)
}
