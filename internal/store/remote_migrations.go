package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MigrateRemote creates the hosted events table when it is missing. Hosted
// projects usually provision it themselves; this keeps self-hosted setups and
// tests working.
func MigrateRemote(ctx context.Context, conn *sql.DB) error {
	migrations := []string{
		migrationEvents,
	}

	for i, m := range migrations {
		if _, err := conn.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("remote migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

const migrationEvents = `
CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    target_date TIMESTAMPTZ NOT NULL,
    icon TEXT NOT NULL DEFAULT '📅',
    color TEXT NOT NULL DEFAULT 'yellow',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ,
    is_detailed_notes BOOLEAN NOT NULL DEFAULT FALSE,
    notes JSONB NOT NULL DEFAULT '[]'::jsonb,
    user_id UUID NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_user_target ON events(user_id, target_date);
`
