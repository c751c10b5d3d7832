// Package moderation runs the review state machine: intake of new
// submissions and the moderator decisions that publish, queue, reject or
// sanction them.
package moderation

import (
	"context"
	"time"

	"confessions/action"
	"confessions/gateway"
	"confessions/model"
	"confessions/observability"
	"confessions/store"
	"confessions/throttle"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyProcessed is returned when the item is gone or no longer in a
	// state that accepts the action, typically a second click on the same button.
	ErrAlreadyProcessed = errors.New("item already processed")
	// ErrUnknownAction is returned for actions outside the content domain.
	ErrUnknownAction = errors.New("unknown moderation action")
)

// Outcome describes what a decision did, for re-rendering the moderator view.
type Outcome struct {
	Verb       action.Verb
	Submission model.Submission

	// Set when the sanction menu is opened.
	BanChoices     []int
	PriorSanctions int

	// Set when a ban was applied.
	Hours       int
	BannedUntil time.Time
}

// Workflow coordinates the store, the throttle guard and the gateway.
type Workflow struct {
	store *store.Store
	guard *throttle.Guard
	gw    gateway.Gateway
	audit Audit
	log   zerolog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLedger records every decision in l.
func WithLedger(l Ledger) Option {
	return func(w *Workflow) { w.audit = Audit{Ledger: l} }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(w *Workflow) { w.log = log }
}

// New creates a workflow.
func New(st *store.Store, guard *throttle.Guard, gw gateway.Gateway, opts ...Option) *Workflow {
	w := &Workflow{store: st, guard: guard, gw: gw, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With().Str("component", "moderation").Logger()
	return w
}

// Submit checks the throttle, registers the content and shows it to the
// moderators. The rate-limit stamp is taken up front and handed back if the
// item never reaches the moderators.
func (w *Workflow) Submit(ctx context.Context, userID int64, content model.Content, now time.Time) (model.Submission, error) {
	d, res := w.guard.Reserve(userID, now)
	if !d.Allowed {
		observability.ThrottledTotal.WithLabelValues(string(d.Reason)).Inc()
		w.log.Debug().Int64("user", userID).Str("reason", string(d.Reason)).Msg("submission refused")
		return model.Submission{}, d.Err()
	}

	id, err := w.store.Create(content, userID, now)
	if err != nil {
		res.Cancel()
		return model.Submission{}, errors.Wrap(err, "create submission")
	}
	sub, err := w.store.Get(id)
	if err != nil {
		res.Cancel()
		return model.Submission{}, err
	}

	if err := w.gw.PresentSubmission(ctx, sub); err != nil {
		w.store.Remove(id)
		res.Cancel()
		w.deliveryFailed(err, sub)
		return model.Submission{}, err
	}

	observability.SubmissionsTotal.WithLabelValues(string(sub.Content.Type())).Inc()
	w.record(ctx, sub, model.DecisionSubmitted, 0, now)
	w.log.Info().Str("id", id).Str("type", string(sub.Content.Type())).Msg("submission received")
	return sub, nil
}

// ReceiptMessage is the acknowledgement shown to the submitter.
func ReceiptMessage(c model.Content) string {
	switch c.(type) {
	case model.Poll:
		return msgReceivedPoll
	case model.Voice:
		return msgReceivedVoice
	}
	return msgReceivedText
}

// Dispatch applies a moderator decision.
func (w *Workflow) Dispatch(ctx context.Context, a action.Action, now time.Time) (Outcome, error) {
	if a.Domain != action.DomainContent {
		return Outcome{}, errors.Wrapf(ErrUnknownAction, "%s", a)
	}
	if err := w.checkTarget(a); err != nil {
		return Outcome{}, err
	}

	var (
		out Outcome
		err error
	)
	switch a.Verb {
	case action.Approve:
		out, err = w.approve(ctx, a.ID, now)
	case action.Queue:
		out, err = w.enqueue(ctx, a.ID, now)
	case action.Reject:
		out, err = w.reject(ctx, a.ID, now)
	case action.Sanction:
		if a.ConfirmsSanction() {
			out, err = w.confirmSanction(ctx, a.ID, a.Hours, now)
		} else {
			out, err = w.requestSanction(ctx, a.ID)
		}
	case action.Cancel:
		out, err = w.cancelSanction(a.ID)
	default:
		return Outcome{}, errors.Wrapf(ErrUnknownAction, "%s", a)
	}
	if err != nil {
		return Outcome{}, err
	}

	out.Verb = a.Verb
	observability.DecisionsTotal.WithLabelValues(decisionLabel(a)).Inc()
	w.log.Info().Str("id", a.ID).Str("action", a.String()).Str("state", string(out.Submission.State)).Msg("decision applied")
	return out, nil
}

// checkTarget refuses a token whose kind or user does not match the item it
// names. Content and submitter never change, so the check holds for the rest
// of the dispatch.
func (w *Workflow) checkTarget(a action.Action) error {
	sub, err := w.store.Get(a.ID)
	if err != nil {
		return processed(err)
	}
	if a.Kind != sub.Content.Type() {
		return errors.Wrapf(ErrAlreadyProcessed, "%s: item is %s", a, sub.Content.Type())
	}
	if a.ConfirmsSanction() && a.UserID != sub.SubmitterID {
		return errors.Wrapf(ErrAlreadyProcessed, "%s: item belongs to another user", a)
	}
	return nil
}

func decisionLabel(a action.Action) string {
	if a.ConfirmsSanction() {
		return "sanction_confirm"
	}
	return string(a.Verb)
}

func (w *Workflow) approve(ctx context.Context, id string, now time.Time) (Outcome, error) {
	sub, err := w.store.Claim(id, []model.State{model.StatePendingReview})
	if err != nil {
		return Outcome{}, processed(err)
	}

	if err := w.gw.Publish(ctx, sub.Content); err != nil {
		w.store.Release(id)
		w.deliveryFailed(err, sub)
		return Outcome{}, err
	}

	sub, err = w.store.Commit(id, model.StatePublished)
	if err != nil {
		return Outcome{}, processed(err)
	}
	observability.PublishedTotal.WithLabelValues("direct").Inc()
	w.notify(ctx, sub, msgApproved)
	w.record(ctx, sub, model.DecisionApproved, 0, now)
	return Outcome{Submission: sub}, nil
}

func (w *Workflow) enqueue(ctx context.Context, id string, now time.Time) (Outcome, error) {
	sub, err := w.store.Transition(id, []model.State{model.StatePendingReview}, model.StateQueued)
	if err != nil {
		return Outcome{}, processed(err)
	}
	observability.QueueDepth.Set(float64(w.store.QueueLen()))
	w.notify(ctx, sub, msgQueued)
	w.record(ctx, sub, model.DecisionQueued, 0, now)
	return Outcome{Submission: sub}, nil
}

func (w *Workflow) reject(ctx context.Context, id string, now time.Time) (Outcome, error) {
	sub, err := w.store.Claim(id, []model.State{model.StatePendingReview})
	if err != nil {
		return Outcome{}, processed(err)
	}
	w.notify(ctx, sub, msgRejected)

	sub, err = w.store.Commit(id, model.StateRejected)
	if err != nil {
		return Outcome{}, processed(err)
	}
	w.record(ctx, sub, model.DecisionRejected, 0, now)
	return Outcome{Submission: sub}, nil
}

func (w *Workflow) requestSanction(ctx context.Context, id string) (Outcome, error) {
	sub, err := w.store.Transition(id, []model.State{model.StatePendingReview}, model.StateAwaitingSanctionChoice)
	if err != nil {
		return Outcome{}, processed(err)
	}

	prior, err := w.audit.Sanctions(ctx, sub.SubmitterID)
	if err != nil {
		w.log.Warn().Err(err).Int64("user", sub.SubmitterID).Msg("sanction history unavailable")
	}
	return Outcome{
		Submission:     sub,
		BanChoices:     w.guard.BanDurations(),
		PriorSanctions: prior,
	}, nil
}

func (w *Workflow) confirmSanction(ctx context.Context, id string, hours int, now time.Time) (Outcome, error) {
	sub, err := w.store.Claim(id, []model.State{model.StateAwaitingSanctionChoice})
	if err != nil {
		return Outcome{}, processed(err)
	}

	until, err := w.guard.Ban(sub.SubmitterID, hours, now)
	if err != nil {
		w.store.Release(id)
		return Outcome{}, err
	}
	w.notify(ctx, sub, msgSanctioned(hours))

	sub, err = w.store.Commit(id, model.StateRejected)
	if err != nil {
		return Outcome{}, processed(err)
	}
	w.record(ctx, sub, model.DecisionSanction, hours, now)
	return Outcome{Submission: sub, Hours: hours, BannedUntil: until}, nil
}

func (w *Workflow) cancelSanction(id string) (Outcome, error) {
	sub, err := w.store.Transition(id, []model.State{model.StateAwaitingSanctionChoice}, model.StatePendingReview)
	if err != nil {
		return Outcome{}, processed(err)
	}
	return Outcome{Submission: sub}, nil
}

// Discard drops a pending or queued item without publishing it.
func (w *Workflow) Discard(ctx context.Context, id string, now time.Time) (model.Submission, error) {
	sub, err := w.store.Transition(id, []model.State{
		model.StatePendingReview,
		model.StateAwaitingSanctionChoice,
		model.StateQueued,
	}, model.StateDiscarded)
	if err != nil {
		return model.Submission{}, processed(err)
	}
	observability.QueueDepth.Set(float64(w.store.QueueLen()))
	observability.DecisionsTotal.WithLabelValues("discard").Inc()
	w.record(ctx, sub, model.DecisionDiscarded, 0, now)
	w.log.Info().Str("id", id).Msg("submission discarded")
	return sub, nil
}

// processed maps store precondition failures to ErrAlreadyProcessed.
func processed(err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
		return errors.Wrap(ErrAlreadyProcessed, err.Error())
	}
	return err
}

func (w *Workflow) notify(ctx context.Context, sub model.Submission, text string) {
	if err := w.gw.Notify(ctx, sub.SubmitterID, text); err != nil {
		w.deliveryFailed(err, sub)
	}
}

func (w *Workflow) deliveryFailed(err error, sub model.Submission) {
	op := "unknown"
	var de *gateway.DeliveryError
	if errors.As(err, &de) {
		op = de.Op
	}
	observability.DeliveryFailuresTotal.WithLabelValues(op).Inc()
	w.log.Warn().Err(err).Str("id", sub.ID).Str("op", op).Msg("delivery failed")
}

func (w *Workflow) record(ctx context.Context, sub model.Submission, decision string, hours int, now time.Time) {
	err := w.audit.Record(ctx, model.AuditEntry{
		ItemID:   sub.ID,
		Kind:     sub.Content.Type(),
		UserID:   sub.SubmitterID,
		Decision: decision,
		Hours:    hours,
		At:       now,
	})
	if err != nil {
		w.log.Warn().Err(err).Str("id", sub.ID).Msg("audit write failed")
	}
}
