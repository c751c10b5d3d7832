package model

import "time"

// AuditEntry is one moderation event written to the ledger.
type AuditEntry struct {
	ItemID   string
	Kind     ContentType
	UserID   int64
	Decision string
	Hours    int
	At       time.Time
}

// Audit decisions.
const (
	DecisionSubmitted = "submitted"
	DecisionApproved  = "approved"
	DecisionQueued    = "queued"
	DecisionRejected  = "rejected"
	DecisionSanction  = "sanctioned"
	DecisionDiscarded = "discarded"
	DecisionPublished = "published"
	DecisionAnswered  = "answered"
)

// KindQuestion tags ledger entries about questions.
const KindQuestion ContentType = "question"
