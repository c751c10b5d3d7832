package handler

import (
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// HandlerFunc handles one interaction.
type HandlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

var (
	mu                sync.RWMutex
	commandHandlers   = make(map[string]HandlerFunc)
	componentHandlers = make(map[string]HandlerFunc)
	modalHandlers     = make(map[string]HandlerFunc)
)

// AddCommandHandler registers a handler for a slash command.
func AddCommandHandler(name string, handler HandlerFunc) {
	mu.Lock()
	defer mu.Unlock()
	commandHandlers[name] = handler
}

// AddComponentHandler registers a handler for message components whose
// custom id starts with prefix followed by ':'.
func AddComponentHandler(prefix string, handler HandlerFunc) {
	mu.Lock()
	defer mu.Unlock()
	componentHandlers[prefix] = handler
}

// AddModalHandler registers a handler for modal submissions, keyed the same
// way as components.
func AddModalHandler(prefix string, handler HandlerFunc) {
	mu.Lock()
	defer mu.Unlock()
	modalHandlers[prefix] = handler
}

// handlerKey is the part of a custom id before the first ':'.
func handlerKey(customID string) string {
	key, _, _ := strings.Cut(customID, ":")
	return key
}

func lookup(table map[string]HandlerFunc, key string) (HandlerFunc, bool) {
	mu.RLock()
	defer mu.RUnlock()
	h, ok := table[key]
	return h, ok
}

// OnInteractionCreate is the main interaction router.
// It should be registered as the primary interaction handler on the session.
func OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := lookup(commandHandlers, i.ApplicationCommandData().Name); ok {
			handler(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if handler, ok := lookup(componentHandlers, handlerKey(i.MessageComponentData().CustomID)); ok {
			handler(s, i)
		}
	case discordgo.InteractionModalSubmit:
		if handler, ok := lookup(modalHandlers, handlerKey(i.ModalSubmitData().CustomID)); ok {
			handler(s, i)
		}
	}
}
