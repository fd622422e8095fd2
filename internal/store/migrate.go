package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate applies schema versions tracked in PRAGMA user_version.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS alerts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email_date INTEGER NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL,
  additional TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  first_seen TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS processed_messages (
  message_key TEXT PRIMARY KEY,
  subject TEXT NOT NULL DEFAULT '',
  records INTEGER NOT NULL DEFAULT 0,
  processed_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.ExecContext(ctx, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_link
ON alerts(link)
WHERE link != '';
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_alerts_email_date
ON alerts(email_date);
`); err != nil {
		return err
	}

	// Mark schema v1
	if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return tx.Commit()
}
