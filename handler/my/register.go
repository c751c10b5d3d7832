package my

import (
	"confessions/command/def"
	"confessions/handler"
)

// RegisterHandlers registers the personal panel command.
func (h *Handler) RegisterHandlers() {
	handler.AddCommandHandler(def.MisConfesionesCommand.Name, h.MyCommandHandler)
}
