package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"confessions/observability"
	"confessions/store"
	"confessions/throttle"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Manager saves and restores the store and throttle state.
type Manager struct {
	store    *store.Store
	guard    *throttle.Guard
	storage  Storage
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewManager creates a manager writing to storage every interval.
func NewManager(st *store.Store, guard *throttle.Guard, storage Storage, interval time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		store:    st,
		guard:    guard,
		storage:  storage,
		interval: interval,
		log:      log.With().Str("component", "backup").Logger(),
		now:      time.Now,
	}
}

// Save writes one snapshot. Failures are counted and returned; the in-memory
// state stays authoritative either way.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	snap := Build(m.store.Export(), m.guard.Export(), m.now())
	data, err := Encode(snap)
	if err == nil {
		err = m.storage.Write(ctx, data)
	}
	observability.SnapshotDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.SnapshotFailuresTotal.Inc()
		m.log.Error().Err(err).Msg("snapshot failed")
		return err
	}

	m.log.Info().
		Int("pending", len(snap.PendingItems)).
		Int("queued", len(snap.PublicationQueue)).
		Int("questions", len(snap.PendingQuestions)).
		Msg("💾 snapshot saved")
	return nil
}

// Load restores the last snapshot. It reports false on a cold start.
func (m *Manager) Load(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.storage.Read(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		m.log.Info().Msg("no snapshot found, starting empty")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	snap, err := Decode(data, m.log)
	if err != nil {
		return false, err
	}
	st, th := snap.Restore(m.log)
	m.store.Import(st)
	m.guard.Import(th)
	observability.QueueDepth.Set(float64(m.store.QueueLen()))

	m.log.Info().
		Int("pending", len(st.Items)).
		Int("queued", len(st.Queue)).
		Int("questions", len(st.Questions)).
		Str("taken_at", snap.Timestamp).
		Msg("📂 snapshot loaded")
	return true, nil
}

// Register schedules Save on c.
func (m *Manager) Register(ctx context.Context, c *cron.Cron) (cron.EntryID, error) {
	ctx = context.WithoutCancel(ctx)
	job := cron.NewChain(
		cron.Recover(observability.CronLogger(m.log)),
		cron.SkipIfStillRunning(observability.CronLogger(m.log)),
	).Then(cron.FuncJob(func() {
		_ = m.Save(ctx)
	}))
	return c.AddJob(fmt.Sprintf("@every %s", m.interval), job)
}
