package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GetSlot reads a named slot. ok is false when the slot was never written.
func (db *DB) GetSlot(ctx context.Context, key string) (value []byte, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// PutSlot overwrites a named slot
func (db *DB) PutSlot(ctx context.Context, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// NotificationFired reports whether a reminder was recorded for day (YYYY-MM-DD)
func (db *DB) NotificationFired(ctx context.Context, day string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notification_log WHERE day = ?`, day).Scan(&n)
	return n > 0, err
}

// MarkNotificationFired records the reminder for day
func (db *DB) MarkNotificationFired(ctx context.Context, day string, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notification_log (day, fired_at) VALUES (?, ?)`,
		day, at.Format(time.RFC3339),
	)
	return err
}
