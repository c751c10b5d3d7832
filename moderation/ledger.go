package moderation

import (
	"context"

	"confessions/model"
)

// Ledger keeps a durable record of moderation decisions.
type Ledger interface {
	Record(ctx context.Context, e model.AuditEntry) error
	Sanctions(ctx context.Context, userID int64) (int, error)
}

// Audit wraps an optional Ledger so callers never have to nil-check.
// Failures are returned for logging only.
type Audit struct {
	Ledger Ledger
}

func (a Audit) Record(ctx context.Context, e model.AuditEntry) error {
	if a.Ledger == nil {
		return nil
	}
	return a.Ledger.Record(ctx, e)
}

func (a Audit) Sanctions(ctx context.Context, userID int64) (int, error) {
	if a.Ledger == nil {
		return 0, nil
	}
	return a.Ledger.Sanctions(ctx, userID)
}
