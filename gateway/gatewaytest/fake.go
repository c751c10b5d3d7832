// Package gatewaytest provides an in-memory gateway that records calls.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"

	"confessions/model"

	"github.com/pkg/errors"
)

// ErrInjected is returned by calls configured to fail.
var ErrInjected = errors.New("injected gateway failure")

// Notice is one private message sent to a user.
type Notice struct {
	UserID int64
	Text   string
}

// Answer is one inbox update marking a question answered.
type Answer struct {
	QuestionID string
	Reply      string
}

// Fake records every call. Failure counters make the next N calls of a kind fail.
type Fake struct {
	mu sync.Mutex

	Published []model.Content
	Notices   []Notice
	Presented []model.Submission
	Questions []model.Question
	Answers   []Answer

	publishFailures int
	notifyFailures  int
	presentFailures int

	// PublishHook runs inside Publish before the outcome is decided.
	PublishHook func(model.Content)
}

// New returns an empty fake.
func New() *Fake { return &Fake{} }

// FailPublish makes the next n Publish calls fail.
func (f *Fake) FailPublish(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishFailures = n
}

// FailNotify makes the next n Notify calls fail.
func (f *Fake) FailNotify(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifyFailures = n
}

// FailPresent makes the next n PresentSubmission/PresentQuestion calls fail.
func (f *Fake) FailPresent(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presentFailures = n
}

func (f *Fake) Publish(_ context.Context, content model.Content) error {
	if hook := f.PublishHook; hook != nil {
		hook(content)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishFailures > 0 {
		f.publishFailures--
		return ErrInjected
	}
	f.Published = append(f.Published, model.CloneContent(content))
	return nil
}

func (f *Fake) Notify(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyFailures > 0 {
		f.notifyFailures--
		return ErrInjected
	}
	f.Notices = append(f.Notices, Notice{UserID: userID, Text: text})
	return nil
}

func (f *Fake) PresentSubmission(_ context.Context, sub model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presentFailures > 0 {
		f.presentFailures--
		return ErrInjected
	}
	f.Presented = append(f.Presented, sub.Clone())
	return nil
}

func (f *Fake) PresentQuestion(_ context.Context, q model.Question) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presentFailures > 0 {
		f.presentFailures--
		return "", ErrInjected
	}
	f.Questions = append(f.Questions, q)
	return fmt.Sprintf("inbox-%s", q.ID), nil
}

func (f *Fake) MarkQuestionAnswered(_ context.Context, q model.Question, reply string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, Answer{QuestionID: q.ID, Reply: reply})
	return nil
}

// PublishedCount returns the number of successful publishes.
func (f *Fake) PublishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Published)
}

// NoticesFor returns the texts sent to a user.
func (f *Fake) NoticesFor(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.Notices {
		if n.UserID == userID {
			out = append(out, n.Text)
		}
	}
	return out
}
