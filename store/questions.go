package store

import (
	"sort"
	"time"

	"confessions/model"

	"github.com/pkg/errors"
)

// CreateQuestion registers a question awaiting a moderator reply.
func (s *Store) CreateQuestion(askerID int64, text string, now time.Time) (string, error) {
	if text == "" {
		return "", model.ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.questions[id] = &model.Question{
		ID:      id,
		AskerID: askerID,
		Text:    text,
		AskedAt: now,
		State:   model.QuestionAwaitingReply,
	}
	return id, nil
}

// GetQuestion returns a copy of the question.
func (s *Store) GetQuestion(id string) (model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return model.Question{}, errors.Wrapf(ErrNotFound, "question %s", id)
	}
	return *q, nil
}

// SetQuestionInboxRef records which moderator-facing message shows the question.
func (s *Store) SetQuestionInboxRef(id, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "question %s", id)
	}
	q.InboxRef = ref
	return nil
}

// TakeQuestion removes the question and returns it marked Answered. Only one
// caller can take a given question.
func (s *Store) TakeQuestion(id string) (model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return model.Question{}, errors.Wrapf(ErrNotFound, "question %s", id)
	}
	delete(s.questions, id)

	out := *q
	out.State = model.QuestionAnswered
	return out, nil
}

// RemoveQuestion deletes the question. It reports whether it existed.
func (s *Store) RemoveQuestion(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.questions[id]
	delete(s.questions, id)
	return ok
}

// Questions lists open questions, oldest first.
func (s *Store) Questions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionsLocked()
}

func (s *Store) questionsLocked() []model.Question {
	out := make([]model.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AskedAt.Equal(out[j].AskedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].AskedAt.Before(out[j].AskedAt)
	})
	return out
}
