package model

import "time"

// State is the moderation lifecycle position of a submission.
type State string

const (
	StatePendingReview          State = "pending"
	StateAwaitingSanctionChoice State = "awaiting_sanction"
	StateQueued                 State = "queued"
	StatePublished              State = "published"
	StateRejected               State = "rejected"
	StateDiscarded              State = "discarded"
)

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	switch s {
	case StatePublished, StateRejected, StateDiscarded:
		return true
	}
	return false
}

// ParseState maps a persisted state name back to a State.
func ParseState(s string) (State, bool) {
	switch st := State(s); st {
	case StatePendingReview, StateAwaitingSanctionChoice, StateQueued,
		StatePublished, StateRejected, StateDiscarded:
		return st, true
	}
	return "", false
}

// Submission is one piece of user content awaiting moderation or publication.
// SubmitterID is never shown to the public channel.
type Submission struct {
	ID          string
	Content     Content
	SubmitterID int64
	SubmittedAt time.Time
	State       State
}

// Clone returns a deep copy of s.
func (s Submission) Clone() Submission {
	s.Content = CloneContent(s.Content)
	return s
}
