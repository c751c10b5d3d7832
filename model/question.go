package model

import "time"

// QuestionState tracks whether a moderator has answered a question.
type QuestionState string

const (
	QuestionAwaitingReply QuestionState = "awaiting_reply"
	QuestionAnswered      QuestionState = "answered"
)

// Question is a free-form message from a user to the moderation team.
// InboxRef identifies the moderator-facing message so it can be marked answered.
type Question struct {
	ID       string
	AskerID  int64
	Text     string
	AskedAt  time.Time
	InboxRef string
	State    QuestionState
}
