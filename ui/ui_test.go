package ui

import (
	"strings"
	"testing"
	"time"

	"confessions/action"
	"confessions/model"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sub = model.Submission{
	ID:          "abc",
	Content:     model.Poll{Question: "¿Playa o montaña?", Options: []string{"Playa", "Montaña"}, Anonymous: true, Kind: model.PollRegular},
	SubmitterID: 77,
	SubmittedAt: time.Unix(1_700_000_000, 0),
	State:       model.StatePendingReview,
}

func customIDs(rows []discordgo.MessageComponent) []string {
	var out []string
	for _, row := range rows {
		for _, c := range row.(discordgo.ActionsRow).Components {
			out = append(out, c.(discordgo.Button).CustomID)
		}
	}
	return out
}

func TestSubmissionEmbed(t *testing.T) {
	embed := SubmissionEmbed(sub, nil)
	assert.Equal(t, "📊 Nueva encuesta (ID: abc)", embed.Title)
	assert.Contains(t, embed.Description, "• Playa\n• Montaña")
	assert.Contains(t, embed.Description, "Anónima: Sí")
	assert.Contains(t, embed.Description, "Múltiples respuestas: No")
	assert.Equal(t, ColorPending, embed.Color)

	done := SubmissionEmbed(sub, &StatusApproved)
	assert.Equal(t, ColorApproved, done.Color)
	assert.Equal(t, StatusApproved.Text, done.Fields[len(done.Fields)-1].Value)
}

func TestReviewComponentsRoundTrip(t *testing.T) {
	ids := customIDs(ReviewComponents(sub))
	require.Len(t, ids, 4)
	for _, id := range ids {
		a, err := action.Parse(id)
		require.NoError(t, err, id)
		assert.Equal(t, "abc", a.ID)
		assert.Equal(t, model.ContentPoll, a.Kind)
	}
}

func TestSanctionComponents(t *testing.T) {
	hours := []int{1, 2, 4, 24, 48, 72}
	rows := SanctionComponents(sub, hours)
	require.Len(t, rows, 3, "five per row plus the cancel row")

	ids := customIDs(rows)
	require.Len(t, ids, 7)
	a, err := action.Parse(ids[3])
	require.NoError(t, err)
	assert.True(t, a.ConfirmsSanction())
	assert.Equal(t, 24, a.Hours)
	assert.Equal(t, int64(77), a.UserID)
	assert.Equal(t, "mod:cancel:poll:abc", ids[6])
}

func TestSanctionPrompt(t *testing.T) {
	assert.Equal(t, "⏰ Selecciona el tiempo de sanción para el usuario 77:", SanctionPrompt(77, 0))
	assert.Contains(t, SanctionPrompt(77, 3), "Sanciones anteriores: 3")
}

func TestQuestionRendering(t *testing.T) {
	q := model.Question{ID: "q1", AskerID: 5, Text: "¿Hay reunión?"}
	assert.Equal(t, []string{"q:res:q1", "q:ban:q1"}, customIDs(QuestionComponents(q)))

	answered := QuestionEmbed(q, "Sí, el lunes")
	assert.Equal(t, ColorApproved, answered.Color)
	assert.Equal(t, "Sí, el lunes", answered.Fields[len(answered.Fields)-1].Value)

	ids := customIDs(QuestionSanctionComponents(q, []int{1, 2}))
	assert.Equal(t, []string{"q:ban:q1:1:5", "q:ban:q1:2:5", "q:cancel:q1"}, ids)
}

func TestPublicText(t *testing.T) {
	assert.Equal(t, "📢 Confesión anónima:\n\nhola", PublicText(model.Text{Body: "hola"}))
}

func TestQueueEmbed(t *testing.T) {
	var queue []model.Submission
	for i := range 12 {
		s := sub
		s.ID = strings.Repeat("x", i+1)
		s.Content = model.Text{Body: strings.Repeat("palabra ", 20)}
		queue = append(queue, s)
	}

	embed := QueueEmbed(queue, 2)
	assert.Equal(t, "📋 Cola de publicación (12)", embed.Title)
	assert.Contains(t, embed.Description, "… y 2 más")
	assert.Contains(t, embed.Description, "…\n")
	assert.Equal(t, "Pendientes de revisión: 2", embed.Footer.Text)

	assert.Equal(t, "La cola está vacía.", QueueEmbed(nil, 0).Description)
}
