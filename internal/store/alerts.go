package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobalert-exporter/internal/domain"
	"jobalert-exporter/internal/parser/linkedin"
)

// InsertAlerts stores alerts, skipping any whose link is already known, and
// reports how many were new.
func (d *DB) InsertAlerts(ctx context.Context, alerts []linkedin.Alert) (added int, err error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, a := range alerts {
		// relies on unique index on link WHERE link != ''
		res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO alerts (email_date, title, company, location, additional, link, first_seen)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
			a.EmailDate, a.Title, a.Company, a.Location, a.Additional, a.Link, now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert alert: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit alerts: %w", err)
	}

	d.log.Debug("alerts stored", zap.Int("seen", len(alerts)), zap.Int("added", added))
	return added, nil
}

// ListAlerts returns stored alerts, newest message first.
func (d *DB) ListAlerts(ctx context.Context, limit int) ([]linkedin.Alert, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT email_date, title, company, location, additional, link
FROM alerts
ORDER BY email_date DESC, id ASC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []linkedin.Alert
	for rows.Next() {
		var a linkedin.Alert
		if err := rows.Scan(&a.EmailDate, &a.Title, &a.Company, &a.Location, &a.Additional, &a.Link); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MessageKey identifies a message across runs: its Message-ID when present,
// otherwise the mailbox UID.
func MessageKey(m domain.Message) string {
	if m.MessageID != "" {
		return "mid:" + m.MessageID
	}
	return fmt.Sprintf("uid:%d", m.UID)
}

// IsProcessed reports whether the message was exported by an earlier run.
func (d *DB) IsProcessed(ctx context.Context, m domain.Message) (bool, error) {
	var one int
	err := d.Pool.QueryRowContext(ctx,
		`SELECT 1 FROM processed_messages WHERE message_key = ? LIMIT 1;`, MessageKey(m)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkProcessed records that the message has been exported.
func (d *DB) MarkProcessed(ctx context.Context, m domain.Message, records int) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT OR REPLACE INTO processed_messages (message_key, subject, records, processed_at)
VALUES (?, ?, ?, ?);`,
		MessageKey(m), m.Subject, records, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// CleanupOldAlerts deletes alerts from messages older than cutoff.
func (d *DB) CleanupOldAlerts(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM alerts WHERE email_date < ?;`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cleanup old alerts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
