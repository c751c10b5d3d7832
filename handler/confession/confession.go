// Package confession connects Discord events to the moderation workflow,
// the question relay and the backup manager.
package confession

import (
	"time"

	"confessions/backup"
	"confessions/command/def"
	"confessions/handler"
	"confessions/moderation"
	"confessions/relay"
	"confessions/store"
	"confessions/throttle"

	"github.com/rs/zerolog"
)

// maxTextLength leaves room for the public prefix under Discord's 2000 limit.
const maxTextLength = 1900

// Deps are the services the handlers drive.
type Deps struct {
	Workflow            *moderation.Workflow
	Relay               *relay.Relay
	Store               *store.Store
	Guard               *throttle.Guard
	Backup              *backup.Manager
	ModerationChannelID string
	// Timeout bounds the work started by one Discord event.
	Timeout time.Duration
	Log     zerolog.Logger
}

// Handler holds the Discord event handlers.
type Handler struct {
	Deps
	now func() time.Time
}

// New creates the handlers.
func New(deps Deps) *Handler {
	if deps.Timeout <= 0 {
		deps.Timeout = 30 * time.Second
	}
	deps.Log = deps.Log.With().Str("component", "discord").Logger()
	return &Handler{Deps: deps, now: time.Now}
}

// RegisterHandlers registers the interaction handlers with the router.
func (h *Handler) RegisterHandlers() {
	handler.AddCommandHandler(def.ConfesionCommand.Name, h.confesionCommand)
	handler.AddCommandHandler(def.PreguntaCommand.Name, h.preguntaCommand)
	handler.AddCommandHandler(def.EncuestaCommand.Name, h.encuestaCommand)
	handler.AddCommandHandler(def.BackupCommand.Name, h.backupCommand)
	handler.AddCommandHandler(def.ColaCommand.Name, h.colaCommand)

	// 审核按钮
	handler.AddComponentHandler("mod", h.moderationButton)
	handler.AddComponentHandler("q", h.questionButton)
	handler.AddModalHandler("q", h.replySubmit)
}
