// Package relay forwards user questions to the moderators and carries their
// replies back.
package relay

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"confessions/gateway"
	"confessions/model"
	"confessions/moderation"
	"confessions/observability"
	"confessions/store"
	"confessions/throttle"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrQuestionGone is returned when the question was already answered or removed.
	ErrQuestionGone = errors.New("question no longer awaiting a reply")
	// ErrNoSession is returned when a moderator has no open reply session.
	ErrNoSession = errors.New("no open reply session")
	// ErrStaleSession is returned when the moderator's open session is for
	// another question than the one being answered.
	ErrStaleSession = errors.New("reply session belongs to another question")
	// ErrEmptyReply is returned for a blank reply or question.
	ErrEmptyReply = errors.New("text is empty")
)

func msgReply(text string) string {
	return "💬 Respuesta de los moderadores:\n\n" + text
}

func msgSanctioned(hours int) string {
	return fmt.Sprintf("🚫 Has sido sancionado por %d hora(s) por enviar contenido inapropiado.", hours)
}

// AskedMessage is the acknowledgement shown to the asker.
const AskedMessage = "📨 Tu pregunta ha sido enviada a los moderadores."

type session struct {
	questionID string
	started    time.Time
}

// Relay owns the per-moderator reply sessions. Questions live in the store.
type Relay struct {
	store *store.Store
	guard *throttle.Guard
	gw    gateway.Gateway
	ttl   time.Duration
	audit moderation.Audit
	log   zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]session
}

// Option configures a Relay.
type Option func(*Relay)

// WithLedger records answers and sanctions in l.
func WithLedger(l moderation.Ledger) Option {
	return func(r *Relay) { r.audit = moderation.Audit{Ledger: l} }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Relay) { r.log = log }
}

// New creates a relay whose reply sessions expire after ttl.
func New(st *store.Store, guard *throttle.Guard, gw gateway.Gateway, ttl time.Duration, opts ...Option) *Relay {
	r := &Relay{
		store:    st,
		guard:    guard,
		gw:       gw,
		ttl:      ttl,
		log:      zerolog.Nop(),
		sessions: make(map[int64]session),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("component", "relay").Logger()
	return r
}

// Ask forwards a question to the moderators.
func (r *Relay) Ask(ctx context.Context, userID int64, text string, now time.Time) (model.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Question{}, ErrEmptyReply
	}
	d, res := r.guard.Reserve(userID, now)
	if !d.Allowed {
		observability.ThrottledTotal.WithLabelValues(string(d.Reason)).Inc()
		return model.Question{}, d.Err()
	}

	id, err := r.store.CreateQuestion(userID, text, now)
	if err != nil {
		res.Cancel()
		return model.Question{}, errors.Wrap(err, "create question")
	}
	q, err := r.store.GetQuestion(id)
	if err != nil {
		res.Cancel()
		return model.Question{}, err
	}

	ref, err := r.gw.PresentQuestion(ctx, q)
	if err != nil {
		r.store.RemoveQuestion(id)
		res.Cancel()
		observability.DeliveryFailuresTotal.WithLabelValues("present question").Inc()
		r.log.Warn().Err(err).Str("id", id).Msg("question delivery failed")
		return model.Question{}, err
	}
	if err := r.store.SetQuestionInboxRef(id, ref); err != nil {
		// answered before we got the reference back
		r.log.Debug().Err(err).Str("id", id).Msg("inbox ref not stored")
	}
	q.InboxRef = ref

	r.log.Info().Str("id", id).Msg("question forwarded")
	return q, nil
}

// BeginReply opens a reply session for a moderator. A second call replaces
// the previous session.
func (r *Relay) BeginReply(moderatorID int64, questionID string, now time.Time) error {
	if _, err := r.store.GetQuestion(questionID); err != nil {
		return gone(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[moderatorID] = session{questionID: questionID, started: now}
	return nil
}

// CompleteReply answers a question. Only one reply per question succeeds.
func (r *Relay) CompleteReply(ctx context.Context, questionID, text string) (model.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Question{}, ErrEmptyReply
	}

	q, err := r.store.TakeQuestion(questionID)
	if err != nil {
		return model.Question{}, gone(err)
	}
	r.dropSessionsFor(questionID)

	if err := r.gw.Notify(ctx, q.AskerID, msgReply(text)); err != nil {
		observability.DeliveryFailuresTotal.WithLabelValues("notify").Inc()
		r.log.Warn().Err(err).Str("id", q.ID).Msg("reply delivery failed")
	}
	if err := r.gw.MarkQuestionAnswered(ctx, q, text); err != nil {
		r.log.Warn().Err(err).Str("id", q.ID).Msg("could not mark question answered")
	}
	r.record(ctx, q, model.DecisionAnswered, 0, time.Now())
	return q, nil
}

// ReplyFromSession answers questionID through the moderator's open session.
// A session opened for a different question is left alone.
func (r *Relay) ReplyFromSession(ctx context.Context, moderatorID int64, questionID, text string, now time.Time) (model.Question, error) {
	r.mu.Lock()
	s, ok := r.sessions[moderatorID]
	if ok && now.Sub(s.started) >= r.ttl {
		delete(r.sessions, moderatorID)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return model.Question{}, ErrNoSession
	}
	if s.questionID != questionID {
		return model.Question{}, errors.Wrapf(ErrStaleSession, "session for %s, reply for %s", s.questionID, questionID)
	}

	q, err := r.CompleteReply(ctx, s.questionID, text)
	if errors.Is(err, ErrQuestionGone) {
		r.CancelReply(moderatorID)
	}
	return q, err
}

// HasSession reports whether the moderator has a live reply session.
func (r *Relay) HasSession(moderatorID int64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[moderatorID]
	return ok && now.Sub(s.started) < r.ttl
}

// CancelReply closes the moderator's session and reports whether one was open.
func (r *Relay) CancelReply(moderatorID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[moderatorID]
	delete(r.sessions, moderatorID)
	return ok
}

// Expire drops sessions older than the TTL and returns how many were dropped.
func (r *Relay) Expire(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for mod, s := range r.sessions {
		if now.Sub(s.started) >= r.ttl {
			delete(r.sessions, mod)
			n++
		}
	}
	return n
}

// Question returns an open question.
func (r *Relay) Question(id string) (model.Question, error) {
	q, err := r.store.GetQuestion(id)
	if err != nil {
		return model.Question{}, gone(err)
	}
	return q, nil
}

// BanChoices lists the durations offered when sanctioning an asker.
func (r *Relay) BanChoices() []int {
	return r.guard.BanDurations()
}

// SanctionAsker bans the author of a question and drops the question. Only
// one of several concurrent sanctions or replies on a question goes through.
func (r *Relay) SanctionAsker(ctx context.Context, questionID string, hours int, now time.Time) (model.Question, time.Time, error) {
	if !slices.Contains(r.guard.BanDurations(), hours) {
		return model.Question{}, time.Time{}, errors.Wrapf(throttle.ErrInvalidDuration, "%d hours", hours)
	}

	q, err := r.store.TakeQuestion(questionID)
	if err != nil {
		return model.Question{}, time.Time{}, gone(err)
	}
	r.dropSessionsFor(questionID)

	until, err := r.guard.Ban(q.AskerID, hours, now)
	if err != nil {
		return model.Question{}, time.Time{}, err
	}

	if err := r.gw.Notify(ctx, q.AskerID, msgSanctioned(hours)); err != nil {
		observability.DeliveryFailuresTotal.WithLabelValues("notify").Inc()
		r.log.Warn().Err(err).Str("id", q.ID).Msg("sanction notice failed")
	}
	r.record(ctx, q, model.DecisionSanction, hours, now)
	r.log.Info().Str("id", q.ID).Int("hours", hours).Msg("asker sanctioned")
	return q, until, nil
}

func (r *Relay) dropSessionsFor(questionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mod, s := range r.sessions {
		if s.questionID == questionID {
			delete(r.sessions, mod)
		}
	}
}

func (r *Relay) record(ctx context.Context, q model.Question, decision string, hours int, at time.Time) {
	err := r.audit.Record(ctx, model.AuditEntry{
		ItemID:   q.ID,
		Kind:     model.KindQuestion,
		UserID:   q.AskerID,
		Decision: decision,
		Hours:    hours,
		At:       at,
	})
	if err != nil {
		r.log.Warn().Err(err).Str("id", q.ID).Msg("audit write failed")
	}
}

func gone(err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
		return errors.Wrap(ErrQuestionGone, err.Error())
	}
	return err
}
