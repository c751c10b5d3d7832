// Package throttle gates user submissions behind temporary bans and a
// per-user rate limit.
package throttle

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Reason explains why a user was refused.
type Reason string

const (
	ReasonBanned      Reason = "banned"
	ReasonRateLimited Reason = "rate_limited"
)

// ErrInvalidDuration is returned by Ban for a duration outside the configured choices.
var ErrInvalidDuration = errors.New("ban duration is not one of the configured choices")

// Decision is the result of Check.
type Decision struct {
	Allowed    bool
	Reason     Reason
	RetryAfter time.Duration
}

// Err converts a refusal into a *Denial, or returns nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &Denial{Reason: d.Reason, RetryAfter: d.RetryAfter}
}

// Denial is the user-facing error for a refused submission or question.
type Denial struct {
	Reason     Reason
	RetryAfter time.Duration
}

func (d *Denial) Error() string {
	return fmt.Sprintf("throttle: %s, retry after %s", d.Reason, d.RetryAfter)
}

// Seconds is the remaining wait rounded down to the second.
func (d *Denial) Seconds() int {
	return int(d.RetryAfter / time.Second)
}

// Message is the text shown to the user.
func (d *Denial) Message() string {
	if d.Reason == ReasonBanned {
		total := d.Seconds()
		return fmt.Sprintf("🚫 Estás baneado. Tiempo restante: %dh %dm", total/3600, (total%3600)/60)
	}
	return fmt.Sprintf("⏰ Por favor espera %d segundos antes de enviar otra confesión.", d.Seconds())
}

// State is the exported form of the guard's tables.
type State struct {
	LastSubmission map[int64]time.Time
	BannedUntil    map[int64]time.Time
}

// Guard holds per-user ban and rate-limit records. It is safe for concurrent use.
type Guard struct {
	mu        sync.Mutex
	window    time.Duration
	durations []int
	last      map[int64]time.Time
	bans      map[int64]time.Time
}

// NewGuard creates a guard enforcing window between submissions and
// accepting the given ban durations in hours.
func NewGuard(window time.Duration, banHours []int) *Guard {
	return &Guard{
		window:    window,
		durations: slices.Clone(banHours),
		last:      make(map[int64]time.Time),
		bans:      make(map[int64]time.Time),
	}
}

// BanDurations returns the accepted ban durations in hours.
func (g *Guard) BanDurations() []int { return slices.Clone(g.durations) }

// Check evaluates the ban first, then the rate limit. An expired ban is
// evicted on the way; nothing else is modified.
func (g *Guard) Check(userID int64, now time.Time) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkLocked(userID, now)
}

func (g *Guard) checkLocked(userID int64, now time.Time) Decision {
	if until, ok := g.bans[userID]; ok {
		if now.Before(until) {
			return Decision{Reason: ReasonBanned, RetryAfter: until.Sub(now)}
		}
		delete(g.bans, userID)
	}

	if last, ok := g.last[userID]; ok {
		if elapsed := now.Sub(last); elapsed < g.window {
			return Decision{Reason: ReasonRateLimited, RetryAfter: g.window - elapsed}
		}
	}

	return Decision{Allowed: true}
}

// Reservation is a rate-limit stamp taken by Reserve.
type Reservation struct {
	g       *Guard
	userID  int64
	stamp   time.Time
	prev    time.Time
	hadPrev bool
}

// Reserve checks the user and, when allowed, stamps the submission under the
// same lock, so a second concurrent attempt sees the stamp. The reservation
// is nil when the user was refused.
func (g *Guard) Reserve(userID int64, now time.Time) (Decision, *Reservation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	d := g.checkLocked(userID, now)
	if !d.Allowed {
		return d, nil
	}
	prev, hadPrev := g.last[userID]
	g.last[userID] = now
	return d, &Reservation{g: g, userID: userID, stamp: now, prev: prev, hadPrev: hadPrev}
}

// Cancel gives the stamp back, restoring the previous one. A stamp replaced
// since the reservation is left alone. Cancel on nil does nothing.
func (r *Reservation) Cancel() {
	if r == nil {
		return
	}
	r.g.mu.Lock()
	defer r.g.mu.Unlock()

	if cur, ok := r.g.last[r.userID]; !ok || !cur.Equal(r.stamp) {
		return
	}
	if r.hadPrev {
		r.g.last[r.userID] = r.prev
	} else {
		delete(r.g.last, r.userID)
	}
}

// RecordSubmission stamps the user's last successful submission.
func (g *Guard) RecordSubmission(userID int64, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[userID] = now
}

// Ban suspends the user for hours from now. A new ban replaces the previous one.
func (g *Guard) Ban(userID int64, hours int, now time.Time) (time.Time, error) {
	if !slices.Contains(g.durations, hours) {
		return time.Time{}, errors.Wrapf(ErrInvalidDuration, "%d hours", hours)
	}

	until := now.Add(time.Duration(hours) * time.Hour)

	g.mu.Lock()
	g.bans[userID] = until
	g.mu.Unlock()

	return until, nil
}

// BannedUntil returns the end of the user's active ban, if any.
func (g *Guard) BannedUntil(userID int64, now time.Time) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	until, ok := g.bans[userID]
	if !ok || !now.Before(until) {
		return time.Time{}, false
	}
	return until, true
}

// Sweep drops expired bans and rate-limit stamps older than the window.
// It returns the number of entries removed.
func (g *Guard) Sweep(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for id, until := range g.bans {
		if !now.Before(until) {
			delete(g.bans, id)
			removed++
		}
	}
	for id, last := range g.last {
		if now.Sub(last) >= g.window {
			delete(g.last, id)
			removed++
		}
	}
	return removed
}

// Export copies the guard's tables.
func (g *Guard) Export() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := State{
		LastSubmission: make(map[int64]time.Time, len(g.last)),
		BannedUntil:    make(map[int64]time.Time, len(g.bans)),
	}
	for id, t := range g.last {
		st.LastSubmission[id] = t
	}
	for id, t := range g.bans {
		st.BannedUntil[id] = t
	}
	return st
}

// Import replaces the guard's tables with st.
func (g *Guard) Import(st State) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last = make(map[int64]time.Time, len(st.LastSubmission))
	g.bans = make(map[int64]time.Time, len(st.BannedUntil))
	for id, t := range st.LastSubmission {
		g.last[id] = t
	}
	for id, t := range st.BannedUntil {
		g.bans[id] = t
	}
}
