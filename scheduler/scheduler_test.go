package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"confessions/action"
	"confessions/gateway"
	"confessions/gateway/gatewaytest"
	"confessions/model"
	"confessions/moderation"
	"confessions/store"
	"confessions/throttle"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1_700_000_000, 0)

func queued(t *testing.T, st *store.Store, bodies ...string) []string {
	t.Helper()
	var out []string
	for i, b := range bodies {
		id, err := st.Create(model.Text{Body: b}, int64(i+1), t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		require.NoError(t, st.EnqueueForPublication(id))
		out = append(out, id)
	}
	return out
}

func queueIDs(st *store.Store) []string {
	var out []string
	for _, sub := range st.Queue() {
		out = append(out, sub.ID)
	}
	return out
}

func TestTick_EmptyQueue(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	s := New(st, fake, time.Minute)

	published, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, published)
	assert.Zero(t, fake.PublishedCount())
}

func TestTick_PublishesInFIFOOrder(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	s := New(st, fake, time.Minute)
	ids := queued(t, st, "A", "B", "C")

	for range ids {
		published, err := s.Tick(context.Background())
		require.NoError(t, err)
		assert.True(t, published)
	}

	assert.Equal(t, []model.Content{
		model.Text{Body: "A"}, model.Text{Body: "B"}, model.Text{Body: "C"},
	}, fake.Published)
	assert.Zero(t, st.QueueLen())
	for _, id := range ids {
		_, err := st.Get(id)
		assert.ErrorIs(t, err, store.ErrNotFound)
	}
}

func TestTick_FailureRequeuesAtFrontWithConcurrentEnqueue(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	s := New(st, fake, time.Minute)
	ids := queued(t, st, "A", "B", "C")

	d, err := st.Create(model.Text{Body: "D"}, 9, t0.Add(time.Minute))
	require.NoError(t, err)

	fake.FailPublish(1)
	fake.PublishHook = func(model.Content) {
		// D arrives while A is being published
		assert.NoError(t, st.EnqueueForPublication(d))
		assert.Equal(t, []string{ids[0], ids[1], ids[2], d}, queueIDs(st))
	}

	published, err := s.Tick(context.Background())
	require.Error(t, err)
	assert.False(t, published)
	assert.Equal(t, []string{ids[0], ids[1], ids[2], d}, queueIDs(st))

	fake.PublishHook = nil
	published, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, published)
	assert.Equal(t, []model.Content{model.Text{Body: "A"}}, fake.Published)
	assert.Equal(t, []string{ids[1], ids[2], d}, queueIDs(st))
}

func TestTick_RecordsPublication(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	ledger := &countingLedger{}
	s := New(st, fake, time.Minute, WithLedger(ledger))
	queued(t, st, "A")

	_, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{model.DecisionPublished}, ledger.decisions)
}

type countingLedger struct {
	mu        sync.Mutex
	decisions []string
}

func (l *countingLedger) Record(_ context.Context, e model.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decisions = append(l.decisions, e.Decision)
	return nil
}

func (l *countingLedger) Sanctions(context.Context, int64) (int, error) { return 0, nil }

func TestQueuedPollIsPublishedOnNextTick(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	wf := moderation.New(st, throttle.NewGuard(time.Minute, []int{1, 2, 4, 24}), fake)
	s := New(st, fake, time.Minute)

	poll := model.Poll{Question: "¿Cuál?", Options: []string{"A", "B"}, Anonymous: true, Kind: model.PollRegular}
	sub, err := wf.Submit(context.Background(), 7, poll, t0)
	require.NoError(t, err)

	_, err = wf.Dispatch(context.Background(), action.ForSubmission(action.Queue, sub), t0)
	require.NoError(t, err)
	assert.Zero(t, fake.PublishedCount())
	assert.Equal(t, []string{sub.ID}, queueIDs(st))

	published, err := s.Tick(context.Background())
	require.NoError(t, err)
	require.True(t, published)
	require.Len(t, fake.Published, 1)
	got, ok := fake.Published[0].(model.Poll)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, got.Options)
}

func TestRegister_SkipsOverlappingRuns(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	s := New(st, fake, 30*time.Minute)
	queued(t, st, "A", "B")

	c := cron.New()
	_, err := s.Register(context.Background(), c)
	require.NoError(t, err)
	entries := c.Entries()
	require.Len(t, entries, 1)

	release := make(chan struct{})
	entered := make(chan struct{})
	fake.PublishHook = func(model.Content) {
		close(entered)
		<-release
	}

	done := make(chan struct{})
	go func() {
		entries[0].Job.Run()
		close(done)
	}()
	<-entered

	// second run while the first is blocked is skipped
	entries[0].Job.Run()

	close(release)
	<-done
	assert.Equal(t, 1, fake.PublishedCount())
	assert.Equal(t, 1, st.QueueLen())
}

// ctxPublisher fails like a real transport once its context is done.
type ctxPublisher struct {
	*gatewaytest.Fake
}

func (p ctxPublisher) Publish(ctx context.Context, c model.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Fake.Publish(ctx, c)
}

func TestRegister_RunningTickOutlivesCancel(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	s := New(st, ctxPublisher{fake}, 30*time.Minute)
	queued(t, st, "A")

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New()
	_, err := s.Register(ctx, c)
	require.NoError(t, err)

	// shutdown cancels the context and then waits for the job
	cancel()
	c.Entries()[0].Job.Run()

	assert.Equal(t, 1, fake.PublishedCount())
	assert.Zero(t, st.QueueLen())
}

type slowPublisher struct {
	*gatewaytest.Fake
}

func (p slowPublisher) Publish(ctx context.Context, c model.Content) error {
	time.Sleep(60 * time.Millisecond)
	return p.Fake.Publish(ctx, c)
}

func TestTick_LatePublishIsNotRepeated(t *testing.T) {
	st := store.New()
	fake := gatewaytest.New()
	s := New(st, gateway.WithTimeout(slowPublisher{fake}, 20*time.Millisecond), time.Minute)
	queued(t, st, "A")

	published, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, published)

	published, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, published)
	assert.Equal(t, 1, fake.PublishedCount())
}
