// Package scheduler publishes queued submissions one at a time on a fixed
// interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"confessions/gateway"
	"confessions/model"
	"confessions/moderation"
	"confessions/observability"
	"confessions/store"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler drains the publication queue.
type Scheduler struct {
	store    *store.Store
	pub      gateway.Publisher
	interval time.Duration
	audit    moderation.Audit
	log      zerolog.Logger

	// ticks never overlap, even when Tick is called outside cron
	mu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLedger records every queued publication in l.
func WithLedger(l moderation.Ledger) Option {
	return func(s *Scheduler) { s.audit = moderation.Audit{Ledger: l} }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// New creates a scheduler publishing through pub every interval.
func New(st *store.Store, pub gateway.Publisher, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{store: st, pub: pub, interval: interval, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "scheduler").Logger()
	return s
}

// Tick publishes the queue front. A failed publish puts the item back at the
// front so it is retried next tick. Tick reports whether something was published.
func (s *Scheduler) Tick(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { observability.QueueDepth.Set(float64(s.store.QueueLen())) }()

	sub, ok := s.store.DequeueNextForPublication()
	if !ok {
		return false, nil
	}

	if err := s.pub.Publish(ctx, sub.Content); err != nil {
		s.store.RequeueFront(sub)
		observability.DeliveryFailuresTotal.WithLabelValues("publish").Inc()
		s.log.Error().Err(err).Str("id", sub.ID).Msg("scheduled publish failed, requeued at front")
		return false, errors.Wrapf(err, "publish %s", sub.ID)
	}

	committed, err := s.store.Commit(sub.ID, model.StatePublished)
	if err != nil {
		// published but the item vanished meanwhile; nothing to roll back
		s.log.Warn().Err(err).Str("id", sub.ID).Msg("commit after publish failed")
		return true, nil
	}
	observability.PublishedTotal.WithLabelValues("queue").Inc()
	sub = committed

	if err := s.audit.Record(ctx, model.AuditEntry{
		ItemID:   sub.ID,
		Kind:     sub.Content.Type(),
		UserID:   sub.SubmitterID,
		Decision: model.DecisionPublished,
		At:       time.Now(),
	}); err != nil {
		s.log.Warn().Err(err).Str("id", sub.ID).Msg("audit write failed")
	}
	s.log.Info().Str("id", sub.ID).Int("remaining", s.store.QueueLen()).Msg("published from queue")
	return true, nil
}

// Register adds the tick to c. A tick still running when the next one is due
// makes cron skip that run. Cancelling ctx does not abort a running tick;
// stopping the cron waits for it instead.
func (s *Scheduler) Register(ctx context.Context, c *cron.Cron) (cron.EntryID, error) {
	ctx = context.WithoutCancel(ctx)
	job := cron.NewChain(
		cron.Recover(observability.CronLogger(s.log)),
		cron.SkipIfStillRunning(observability.CronLogger(s.log)),
	).Then(cron.FuncJob(func() {
		_, _ = s.Tick(ctx)
	}))
	return c.AddJob(fmt.Sprintf("@every %s", s.interval), job)
}
