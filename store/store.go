// Package store is the in-memory registry of submissions, questions and
// the publication queue. Every exported method is safe for concurrent use.
package store

import (
	"slices"
	"sort"
	"sync"
	"time"

	"confessions/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no item has the given id.
	ErrNotFound = errors.New("item not found")
	// ErrConflict is returned when an item is not in an expected state or is
	// held by another in-flight action.
	ErrConflict = errors.New("item state conflict")
)

type entry struct {
	sub     model.Submission
	claimed bool
}

// Store exclusively owns all submission and question state.
type Store struct {
	mu        sync.Mutex
	items     map[string]*entry
	queue     []string
	inflight  string
	questions map[string]*model.Question
	newID     func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc replaces the random UUID generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		items:     make(map[string]*entry),
		questions: make(map[string]*model.Question),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers new content in PendingReview and returns its id.
func (s *Store) Create(content model.Content, submitterID int64, now time.Time) (string, error) {
	if content == nil {
		return "", model.ErrEmptyContent
	}
	if err := content.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.items[id] = &entry{sub: model.Submission{
		ID:          id,
		Content:     model.CloneContent(content),
		SubmitterID: submitterID,
		SubmittedAt: now,
		State:       model.StatePendingReview,
	}}
	return id, nil
}

// Get returns a copy of the submission.
func (s *Store) Get(id string) (model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return model.Submission{}, errors.Wrapf(ErrNotFound, "submission %s", id)
	}
	return e.sub.Clone(), nil
}

// Transition moves the submission to `to` if its current state is one of
// `from` and no in-flight action holds it.
func (s *Store) Transition(id string, from []model.State, to model.State) (model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id, from)
	if err != nil {
		return model.Submission{}, err
	}
	return s.apply(e, to), nil
}

// Claim reserves the submission for an action that performs external I/O
// before committing. The state is left untouched until Commit.
func (s *Store) Claim(id string, from []model.State) (model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id, from)
	if err != nil {
		return model.Submission{}, err
	}
	e.claimed = true
	return e.sub.Clone(), nil
}

// Release drops a claim without changing state.
func (s *Store) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[id]; ok {
		e.claimed = false
	}
}

// Commit finishes a claimed action by moving the submission to `to`.
func (s *Store) Commit(id string, to model.State) (model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return model.Submission{}, errors.Wrapf(ErrNotFound, "submission %s", id)
	}
	if !e.claimed {
		return model.Submission{}, errors.Wrapf(ErrConflict, "submission %s is not claimed", id)
	}
	e.claimed = false
	return s.apply(e, to), nil
}

// Remove deletes the submission wherever it is. It reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	s.drop(id)
	return true
}

// Pending lists submissions still under review, oldest first.
func (s *Store) Pending() []model.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Submission
	for _, e := range s.items {
		if e.sub.State == model.StatePendingReview || e.sub.State == model.StateAwaitingSanctionChoice {
			out = append(out, e.sub.Clone())
		}
	}
	sortSubmissions(out)
	return out
}

// EnqueueForPublication moves a pending submission to the queue tail.
func (s *Store) EnqueueForPublication(id string) error {
	_, err := s.Transition(id, []model.State{model.StatePendingReview}, model.StateQueued)
	return err
}

// DequeueNextForPublication pops the queue front and holds it as in flight
// until Commit or RequeueFront. Only one item can be in flight.
func (s *Store) DequeueNextForPublication() (model.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != "" {
		return model.Submission{}, false
	}
	for len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]
		e, ok := s.items[id]
		if !ok || e.sub.State != model.StateQueued {
			continue
		}
		e.claimed = true
		s.inflight = id
		return e.sub.Clone(), true
	}
	return model.Submission{}, false
}

// RequeueFront puts a submission back at the head of the queue.
func (s *Store) RequeueFront(sub model.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight == sub.ID {
		s.inflight = ""
	}
	s.queue = slices.DeleteFunc(s.queue, func(id string) bool { return id == sub.ID })

	e, ok := s.items[sub.ID]
	if !ok {
		sub = sub.Clone()
		e = &entry{sub: sub}
		s.items[sub.ID] = e
	}
	e.claimed = false
	e.sub.State = model.StateQueued
	s.queue = append([]string{sub.ID}, s.queue...)
}

// QueueLen counts queued submissions, including one in flight.
func (s *Store) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.queue)
	if s.inflight != "" {
		n++
	}
	return n
}

// Queue lists queued submissions in publication order.
func (s *Store) Queue() []model.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queueLocked()
}

func (s *Store) queueLocked() []model.Submission {
	out := make([]model.Submission, 0, len(s.queue)+1)
	if e, ok := s.items[s.inflight]; ok {
		out = append(out, e.sub.Clone())
	}
	for _, id := range s.queue {
		if e, ok := s.items[id]; ok {
			out = append(out, e.sub.Clone())
		}
	}
	return out
}

func (s *Store) lookup(id string, from []model.State) (*entry, error) {
	e, ok := s.items[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "submission %s", id)
	}
	if e.claimed {
		return nil, errors.Wrapf(ErrConflict, "submission %s is being processed", id)
	}
	if !slices.Contains(from, e.sub.State) {
		return nil, errors.Wrapf(ErrConflict, "submission %s is %s", id, e.sub.State)
	}
	return e, nil
}

// apply must be called with s.mu held.
func (s *Store) apply(e *entry, to model.State) model.Submission {
	id := e.sub.ID
	if e.sub.State == model.StateQueued && to != model.StateQueued {
		s.queue = slices.DeleteFunc(s.queue, func(q string) bool { return q == id })
	}
	if e.sub.State != model.StateQueued && to == model.StateQueued {
		s.queue = append(s.queue, id)
	}
	e.sub.State = to

	out := e.sub.Clone()
	if to.Terminal() {
		s.drop(id)
	}
	return out
}

// drop must be called with s.mu held.
func (s *Store) drop(id string) {
	delete(s.items, id)
	s.queue = slices.DeleteFunc(s.queue, func(q string) bool { return q == id })
	if s.inflight == id {
		s.inflight = ""
	}
}

func sortSubmissions(subs []model.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
	})
}
