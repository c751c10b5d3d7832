package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"confessions/gateway/gatewaytest"
	"confessions/model"
	"confessions/store"
	"confessions/throttle"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	asker     int64 = 11
	moderator int64 = 99
)

var t0 = time.Unix(5000, 0)

func newRelay(t *testing.T) (*Relay, *store.Store, *throttle.Guard, *gatewaytest.Fake) {
	t.Helper()
	st := store.New()
	guard := throttle.NewGuard(time.Minute, []int{1, 2, 4, 24})
	fake := gatewaytest.New()
	return New(st, guard, fake, 15*time.Minute), st, guard, fake
}

func TestAsk_PresentsWithInboxRef(t *testing.T) {
	r, st, _, fake := newRelay(t)
	text := gofakeit.Sentence(8)

	q, err := r.Ask(context.Background(), asker, text, t0)
	require.NoError(t, err)
	assert.Equal(t, "inbox-"+q.ID, q.InboxRef)
	require.Len(t, fake.Questions, 1)
	assert.Equal(t, text, fake.Questions[0].Text)

	stored, err := st.GetQuestion(q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.InboxRef, stored.InboxRef)
	assert.Equal(t, model.QuestionAwaitingReply, stored.State)
}

func TestAsk_Throttled(t *testing.T) {
	r, _, guard, _ := newRelay(t)
	_, err := guard.Ban(asker, 1, t0)
	require.NoError(t, err)

	_, err = r.Ask(context.Background(), asker, "¿hola?", t0.Add(time.Minute))
	var denial *throttle.Denial
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, throttle.ReasonBanned, denial.Reason)
}

func TestAsk_DeliveryFailureDropsQuestion(t *testing.T) {
	r, st, guard, fake := newRelay(t)
	fake.FailPresent(1)

	_, err := r.Ask(context.Background(), asker, "¿hola?", t0)
	require.Error(t, err)
	assert.Empty(t, st.Questions())
	assert.True(t, guard.Check(asker, t0).Allowed)
}

func TestAsk_Empty(t *testing.T) {
	r, _, _, _ := newRelay(t)
	_, err := r.Ask(context.Background(), asker, "   ", t0)
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestReplyFromSession(t *testing.T) {
	r, st, _, fake := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "¿Cuándo es el evento?", t0)
	require.NoError(t, err)

	require.NoError(t, r.BeginReply(moderator, q.ID, t0))
	assert.True(t, r.HasSession(moderator, t0.Add(time.Minute)))

	answered, err := r.ReplyFromSession(context.Background(), moderator, q.ID, "El viernes.", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.QuestionAnswered, answered.State)

	assert.Equal(t, []string{msgReply("El viernes.")}, fake.NoticesFor(asker))
	require.Len(t, fake.Answers, 1)
	assert.Equal(t, gatewaytest.Answer{QuestionID: q.ID, Reply: "El viernes."}, fake.Answers[0])
	assert.Empty(t, st.Questions())
	assert.False(t, r.HasSession(moderator, t0.Add(time.Minute)))
}

func TestCompleteReply_OnlyOneWins(t *testing.T) {
	r, _, _, fake := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "¿?", t0)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.CompleteReply(context.Background(), q.ID, gofakeit.Word())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			assert.ErrorIs(t, err, ErrQuestionGone, "reply %d", i)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Len(t, fake.NoticesFor(asker), 1)
}

func TestCompleteReply_NotifyFailureStillAnswers(t *testing.T) {
	r, st, _, fake := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "¿?", t0)
	require.NoError(t, err)
	fake.FailNotify(1)

	_, err = r.CompleteReply(context.Background(), q.ID, "sí")
	require.NoError(t, err)
	assert.Empty(t, st.Questions())
	assert.Len(t, fake.Answers, 1)
}

func TestBeginReply_UnknownQuestion(t *testing.T) {
	r, _, _, _ := newRelay(t)
	assert.ErrorIs(t, r.BeginReply(moderator, "nope", t0), ErrQuestionGone)
}

func TestSessionExpiry(t *testing.T) {
	r, _, _, _ := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "¿?", t0)
	require.NoError(t, err)
	require.NoError(t, r.BeginReply(moderator, q.ID, t0))
	require.NoError(t, r.BeginReply(moderator+1, q.ID, t0.Add(10*time.Minute)))

	assert.Equal(t, 1, r.Expire(t0.Add(15*time.Minute)))
	assert.False(t, r.HasSession(moderator, t0.Add(15*time.Minute)))
	assert.True(t, r.HasSession(moderator+1, t0.Add(15*time.Minute)))

	_, err = r.ReplyFromSession(context.Background(), moderator, q.ID, "tarde", t0.Add(15*time.Minute))
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = r.ReplyFromSession(context.Background(), moderator+1, q.ID, "tarde", t0.Add(26*time.Minute))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCancelReply(t *testing.T) {
	r, _, _, _ := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "¿?", t0)
	require.NoError(t, err)
	require.NoError(t, r.BeginReply(moderator, q.ID, t0))

	assert.True(t, r.CancelReply(moderator))
	assert.False(t, r.CancelReply(moderator))
	_, err = r.ReplyFromSession(context.Background(), moderator, q.ID, "x", t0)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSanctionAsker(t *testing.T) {
	r, st, guard, fake := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "spam", t0)
	require.NoError(t, err)
	require.NoError(t, r.BeginReply(moderator, q.ID, t0))

	_, until, err := r.SanctionAsker(context.Background(), q.ID, 4, t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(4*time.Hour), until)
	assert.Empty(t, st.Questions())
	assert.False(t, r.HasSession(moderator, t0))
	assert.Equal(t, []string{msgSanctioned(4)}, fake.NoticesFor(asker))

	d := guard.Check(asker, t0.Add(time.Hour))
	assert.Equal(t, throttle.ReasonBanned, d.Reason)

	_, _, err = r.SanctionAsker(context.Background(), q.ID, 4, t0)
	assert.ErrorIs(t, err, ErrQuestionGone)
}

func TestSanctionAsker_InvalidDurationKeepsQuestion(t *testing.T) {
	r, st, _, _ := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "spam", t0)
	require.NoError(t, err)

	_, _, err = r.SanctionAsker(context.Background(), q.ID, 5, t0)
	assert.ErrorIs(t, err, throttle.ErrInvalidDuration)
	assert.Len(t, st.Questions(), 1)
}

func TestReplyFromSession_OtherQuestionIsRefused(t *testing.T) {
	r, st, _, fake := newRelay(t)
	first, err := r.Ask(context.Background(), asker, "¿Uno?", t0)
	require.NoError(t, err)
	second, err := r.Ask(context.Background(), asker+11, "¿Dos?", t0)
	require.NoError(t, err)

	require.NoError(t, r.BeginReply(moderator, first.ID, t0))
	require.NoError(t, r.BeginReply(moderator, second.ID, t0.Add(time.Second)))

	// the form opened for the first question is submitted after the second was opened
	_, err = r.ReplyFromSession(context.Background(), moderator, first.ID, "respuesta para uno", t0.Add(time.Minute))
	assert.ErrorIs(t, err, ErrStaleSession)
	assert.Empty(t, fake.NoticesFor(asker))
	assert.Empty(t, fake.NoticesFor(asker+11))
	assert.Len(t, st.Questions(), 2)
	assert.True(t, r.HasSession(moderator, t0.Add(time.Minute)))

	answered, err := r.ReplyFromSession(context.Background(), moderator, second.ID, "respuesta para dos", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, second.ID, answered.ID)
	assert.Equal(t, []string{msgReply("respuesta para dos")}, fake.NoticesFor(asker+11))
}

func TestSanctionAsker_ConcurrentClicksBanOnce(t *testing.T) {
	r, _, _, fake := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "spam", t0)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := r.SanctionAsker(context.Background(), q.ID, 2, t0)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			assert.ErrorIs(t, err, ErrQuestionGone)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, []string{msgSanctioned(2)}, fake.NoticesFor(asker))
}

func TestSanctionAsker_AfterReplyIsRefused(t *testing.T) {
	r, _, guard, fake := newRelay(t)
	q, err := r.Ask(context.Background(), asker, "¿?", t0)
	require.NoError(t, err)

	_, err = r.CompleteReply(context.Background(), q.ID, "sí")
	require.NoError(t, err)

	_, _, err = r.SanctionAsker(context.Background(), q.ID, 1, t0)
	assert.ErrorIs(t, err, ErrQuestionGone)
	assert.True(t, guard.Check(asker, t0.Add(2*time.Minute)).Allowed)
	assert.Equal(t, []string{msgReply("sí")}, fake.NoticesFor(asker))
}

type slowQuestionInbox struct {
	*gatewaytest.Fake
}

func (g slowQuestionInbox) PresentQuestion(ctx context.Context, q model.Question) (string, error) {
	time.Sleep(20 * time.Millisecond)
	return g.Fake.PresentQuestion(ctx, q)
}

func TestAsk_ConcurrentQuestionsInsideWindow(t *testing.T) {
	st := store.New()
	guard := throttle.NewGuard(time.Minute, []int{1})
	r := New(st, guard, slowQuestionInbox{gatewaytest.New()}, time.Minute)

	var wg sync.WaitGroup
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Ask(context.Background(), asker, gofakeit.Sentence(6), t0.Add(time.Duration(i)*time.Second))
		}()
	}
	wg.Wait()

	assert.Len(t, st.Questions(), 1)
}
