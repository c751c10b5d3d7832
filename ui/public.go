package ui

import "confessions/model"

// VoiceCaption accompanies a published voice confession.
const VoiceCaption = "🎵 Confesión anónima en audio"

// PublicText is the public-channel message for a text confession.
func PublicText(t model.Text) string {
	return "📢 Confesión anónima:\n\n" + t.Body
}
