package moderation

import "fmt"

// Texts sent privately to submitters.
const (
	msgReceivedText  = "✋ Tu confesión ha sido enviada a moderación."
	msgReceivedPoll  = "✋ Tu encuesta ha sido enviada a moderación."
	msgReceivedVoice = "✋ Tu audio ha sido enviado a moderación."
	msgApproved      = "✅ Tu confesión ha sido aprobada y publicada."
	msgQueued        = "🕒 Tu confesión ha sido aprobada y añadida a la cola de publicación."
	msgRejected      = "❌ Tu confesión ha sido rechazada."
)

func msgSanctioned(hours int) string {
	return fmt.Sprintf("🚫 Has sido sancionado por %d hora(s) por enviar contenido inapropiado.", hours)
}
