package db

import (
	"context"
	"database/sql"

	"confessions/model"

	"github.com/pkg/errors"
)

// UserStats are the per-user counters kept next to the log.
type UserStats struct {
	UserID         int64
	SubmittedCount int
	PublishedCount int
	RejectedCount  int
	BanCount       int
}

// counterColumn maps a decision to the users column it increments.
var counterColumn = map[string]string{
	model.DecisionSubmitted: "submitted_count",
	model.DecisionApproved:  "published_count",
	model.DecisionPublished: "published_count",
	model.DecisionRejected:  "rejected_count",
	model.DecisionSanction:  "ban_count",
}

// GetUserStats returns a user's counters; unknown users have all zeros.
func (l *Ledger) GetUserStats(ctx context.Context, userID int64) (UserStats, error) {
	stats := UserStats{UserID: userID}
	err := l.db.QueryRowContext(ctx,
		"SELECT submitted_count, published_count, rejected_count, ban_count FROM users WHERE user_id = ?",
		userID,
	).Scan(&stats.SubmittedCount, &stats.PublishedCount, &stats.RejectedCount, &stats.BanCount)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	return stats, errors.Wrapf(err, "get stats for %d", userID)
}

// Sanctions returns how many times the user has been banned.
func (l *Ledger) Sanctions(ctx context.Context, userID int64) (int, error) {
	stats, err := l.GetUserStats(ctx, userID)
	return stats.BanCount, err
}

func incrementCounter(ctx context.Context, tx *sql.Tx, userID int64, column string) error {
	// column comes from counterColumn, never from input
	_, err := tx.ExecContext(ctx,
		"INSERT INTO users (user_id, "+column+") VALUES (?, 1) ON CONFLICT(user_id) DO UPDATE SET "+column+" = "+column+" + 1",
		userID,
	)
	return err
}
