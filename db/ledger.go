package db

import (
	"context"

	"confessions/model"

	"github.com/pkg/errors"
)

// Record appends the entry to the log and bumps the user's counter in one
// transaction.
func (l *Ledger) Record(ctx context.Context, e model.AuditEntry) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO moderation_log (item_id, kind, user_id, decision, hours, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ItemID, string(e.Kind), e.UserID, e.Decision, e.Hours, e.At.Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "insert moderation_log")
	}

	if column, ok := counterColumn[e.Decision]; ok {
		if err := incrementCounter(ctx, tx, e.UserID, column); err != nil {
			return errors.Wrap(err, "update users")
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}
