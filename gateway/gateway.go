// Package gateway defines what the core needs from the chat transport and
// wraps every call with a timeout and a uniform delivery error.
package gateway

import (
	"context"
	"time"

	"confessions/model"

	"github.com/pkg/errors"
)

// Publisher posts approved content to the public channel.
type Publisher interface {
	Publish(ctx context.Context, content model.Content) error
}

// Notifier sends a private message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Inbox shows items to the moderation team.
type Inbox interface {
	PresentSubmission(ctx context.Context, sub model.Submission) error
	// PresentQuestion returns a reference to the posted message.
	PresentQuestion(ctx context.Context, q model.Question) (string, error)
	MarkQuestionAnswered(ctx context.Context, q model.Question, reply string) error
}

// Gateway is the full transport surface.
type Gateway interface {
	Publisher
	Notifier
	Inbox
}

// DeliveryError reports a failed or timed-out transport call.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return "gateway: " + e.Op + ": " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsDelivery reports whether err came from a transport call.
func IsDelivery(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}

type guarded struct {
	next    Gateway
	timeout time.Duration
}

// WithTimeout bounds every call on next by timeout and converts failures to
// *DeliveryError.
func WithTimeout(next Gateway, timeout time.Duration) Gateway {
	return &guarded{next: next, timeout: timeout}
}

func (g *guarded) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// a call that succeeded after the deadline still happened
	if err := fn(ctx); err != nil {
		return &DeliveryError{Op: op, Err: err}
	}
	return nil
}

func (g *guarded) Publish(ctx context.Context, content model.Content) error {
	return g.call(ctx, "publish", func(ctx context.Context) error {
		return g.next.Publish(ctx, content)
	})
}

func (g *guarded) Notify(ctx context.Context, userID int64, text string) error {
	return g.call(ctx, "notify", func(ctx context.Context) error {
		return g.next.Notify(ctx, userID, text)
	})
}

func (g *guarded) PresentSubmission(ctx context.Context, sub model.Submission) error {
	return g.call(ctx, "present submission", func(ctx context.Context) error {
		return g.next.PresentSubmission(ctx, sub)
	})
}

func (g *guarded) PresentQuestion(ctx context.Context, q model.Question) (string, error) {
	var ref string
	err := g.call(ctx, "present question", func(ctx context.Context) error {
		var err error
		ref, err = g.next.PresentQuestion(ctx, q)
		return err
	})
	return ref, err
}

func (g *guarded) MarkQuestionAnswered(ctx context.Context, q model.Question, reply string) error {
	return g.call(ctx, "mark answered", func(ctx context.Context) error {
		return g.next.MarkQuestionAnswered(ctx, q, reply)
	})
}
