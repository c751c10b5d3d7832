package store

import "confessions/model"

// State is a point-in-time copy of everything the store owns.
type State struct {
	Items     []model.Submission
	Queue     []model.Submission
	Questions []model.Question
}

// Export copies the store. Items under review are listed oldest first and
// the queue in publication order. Claims are not part of the copy.
func (s *Store) Export() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Queue:     s.queueLocked(),
		Questions: s.questionsLocked(),
	}
	for _, e := range s.items {
		if e.sub.State != model.StateQueued {
			st.Items = append(st.Items, e.sub.Clone())
		}
	}
	sortSubmissions(st.Items)
	return st
}

// Import replaces the store contents with st. Items with a state that cannot
// be under review are restored as PendingReview.
func (s *Store) Import(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*entry, len(st.Items)+len(st.Queue))
	s.queue = make([]string, 0, len(st.Queue))
	s.inflight = ""
	s.questions = make(map[string]*model.Question, len(st.Questions))

	for _, sub := range st.Items {
		sub = sub.Clone()
		if sub.State != model.StateAwaitingSanctionChoice {
			sub.State = model.StatePendingReview
		}
		s.items[sub.ID] = &entry{sub: sub}
	}
	for _, sub := range st.Queue {
		if _, dup := s.items[sub.ID]; dup {
			continue
		}
		sub = sub.Clone()
		sub.State = model.StateQueued
		s.items[sub.ID] = &entry{sub: sub}
		s.queue = append(s.queue, sub.ID)
	}
	for _, q := range st.Questions {
		q := q
		q.State = model.QuestionAwaitingReply
		s.questions[q.ID] = &q
	}
}
