package db

import "github.com/pkg/errors"

// createTables 如果数据库中不存在必要的表，则创建它们
func (l *Ledger) createTables() error {
	// 每个审核决定一行
	createModerationLogTableSQL := `
	CREATE TABLE IF NOT EXISTS moderation_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		decision TEXT NOT NULL,
		hours INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);`

	if _, err := l.db.Exec(createModerationLogTableSQL); err != nil {
		return errors.Wrap(err, "create moderation_log table")
	}

	createModerationLogIndexSQL := `CREATE INDEX IF NOT EXISTS idx_moderation_log_user ON moderation_log(user_id);`
	if _, err := l.db.Exec(createModerationLogIndexSQL); err != nil {
		return errors.Wrap(err, "create moderation_log index")
	}

	// 用户计数
	createUsersTableSQL := `
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		submitted_count INTEGER NOT NULL DEFAULT 0,
		published_count INTEGER NOT NULL DEFAULT 0,
		rejected_count INTEGER NOT NULL DEFAULT 0,
		ban_count INTEGER NOT NULL DEFAULT 0
	);`

	if _, err := l.db.Exec(createUsersTableSQL); err != nil {
		return errors.Wrap(err, "create users table")
	}
	return nil
}
