package confession

import (
	"confessions/gateway"
	"confessions/model"
	"confessions/moderation"
	"confessions/relay"
	"confessions/throttle"

	"github.com/pkg/errors"
)

const (
	msgRules = "No se permitirán:\n\n" +
		"Política\nOfensas sin sentido\n" +
		"Mención repetida de una misma persona\n" +
		"Datos privados ajenos sin consentimiento"
	msgUnsupported      = "⚠️ Solo acepto confesiones en texto, audio o encuestas con /encuesta."
	msgTooLong          = "⚠️ Tu confesión es demasiado larga (máximo 1900 caracteres)."
	msgModerationOnly   = "❌ Este comando solo funciona en el canal de moderación."
	msgBackupDone       = "💾 Backup realizado exitosamente!"
	msgBackupFailed     = "❌ Error guardando backup."
	msgReplySent        = "✅ Respuesta enviada."
	msgInvalidAction    = "❌ Acción no válida."
	msgAlreadyProcessed = "⚠️ Este elemento ya fue procesado."
	msgQuestionGone     = "⚠️ Esta pregunta ya fue respondida o eliminada."
	msgNoSession        = "⚠️ Tu sesión de respuesta expiró. Pulsa «Responder» de nuevo."
	msgStaleSession     = "⚠️ Abriste otra respuesta después de esta. Pulsa «Responder» de nuevo en esta pregunta."
	msgEmpty            = "⚠️ El texto no puede estar vacío."
	msgBadPoll          = "⚠️ La encuesta necesita una pregunta y entre 2 y 10 opciones separadas por |."
	msgVoiceTooLarge    = "⚠️ El audio supera el límite de 25 MB."
	msgBadDuration      = "❌ Duración de sanción no válida."
	msgDelivery         = "❌ No se pudo completar la acción en Discord. Inténtalo de nuevo."
	msgUnexpected       = "❌ Ocurrió un error inesperado."
)

// errorMessage maps workflow errors to the text shown to the user.
func errorMessage(err error) string {
	var denial *throttle.Denial
	switch {
	case errors.As(err, &denial):
		return denial.Message()
	case errors.Is(err, moderation.ErrAlreadyProcessed):
		return msgAlreadyProcessed
	case errors.Is(err, relay.ErrQuestionGone):
		return msgQuestionGone
	case errors.Is(err, relay.ErrNoSession):
		return msgNoSession
	case errors.Is(err, relay.ErrStaleSession):
		return msgStaleSession
	case errors.Is(err, relay.ErrEmptyReply), errors.Is(err, model.ErrEmptyContent):
		return msgEmpty
	case errors.Is(err, model.ErrTooFewOptions), errors.Is(err, errTooManyOptions):
		return msgBadPoll
	case errors.Is(err, model.ErrVoiceTooLarge):
		return msgVoiceTooLarge
	case errors.Is(err, throttle.ErrInvalidDuration):
		return msgBadDuration
	case gateway.IsDelivery(err):
		return msgDelivery
	}
	return msgUnexpected
}
