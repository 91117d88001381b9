package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/neocount/internal/model"
	"github.com/lib/pq"
)

// ErrNoUser is returned when a remote store is used without a signed-in user
var ErrNoUser = errors.New("remote store requires a signed-in user")

// Remote is the hosted events table, scoped to one user
type Remote struct {
	db     *sql.DB
	userID string
	now    func() time.Time
}

// OpenPostgres connects to the hosted database
func OpenPostgres(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to remote database: %w", err)
	}
	return conn, nil
}

// NewRemote scopes the events table to userID
func NewRemote(conn *sql.DB, userID string) *Remote {
	return &Remote{db: conn, userID: userID, now: time.Now}
}

const selectEvents = `
	SELECT id, name, COALESCE(description, ''), target_date, icon, color,
	       created_at, updated_at, is_detailed_notes, COALESCE(notes, '[]'::jsonb)
	FROM events`

func (r *Remote) List(ctx context.Context) ([]model.Event, error) {
	if r.userID == "" {
		return nil, ErrNoUser
	}

	rows, err := r.db.QueryContext(ctx, selectEvents+`
		WHERE user_id = $1
		ORDER BY target_date ASC, created_at ASC`,
		r.userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Remote) Create(ctx context.Context, draft model.Draft) (model.Event, error) {
	if r.userID == "" {
		return model.Event{}, ErrNoUser
	}
	if err := draft.Validate(); err != nil {
		return model.Event{}, err
	}

	now := r.now()
	e := model.NewEvent(draft, now)
	e.UpdatedAt = &now

	notes, err := encodeNotes(e.Notes)
	if err != nil {
		return model.Event{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (id, name, description, target_date, icon, color,
		                    created_at, updated_at, is_detailed_notes, notes, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Name, e.Description, e.TargetDate, e.Icon, string(e.Color),
		e.CreatedAt, now, e.IsDetailedNotes, string(notes), r.userID,
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to create event: %w", describe(err))
	}
	return e, nil
}

func (r *Remote) Update(ctx context.Context, id string, patch model.Patch) (model.Event, error) {
	if r.userID == "" {
		return model.Event{}, ErrNoUser
	}
	if err := patch.Validate(); err != nil {
		return model.Event{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to begin update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, selectEvents+`
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`,
		id, r.userID,
	)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, err
	}

	patch.Apply(&e, r.now())

	notes, err := encodeNotes(e.Notes)
	if err != nil {
		return model.Event{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE events SET
			name = $1, description = $2, target_date = $3, icon = $4, color = $5,
			is_detailed_notes = $6, notes = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10`,
		e.Name, e.Description, e.TargetDate, e.Icon, string(e.Color),
		e.IsDetailedNotes, string(notes), *e.UpdatedAt, id, r.userID,
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to update event: %w", describe(err))
	}

	if err := tx.Commit(); err != nil {
		return model.Event{}, fmt.Errorf("failed to commit update: %w", err)
	}
	return e, nil
}

func (r *Remote) Delete(ctx context.Context, id string) error {
	if r.userID == "" {
		return ErrNoUser
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, r.userID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", describe(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (model.Event, error) {
	var (
		e         model.Event
		color     string
		updatedAt sql.NullTime
		notes     []byte
	)
	err := s.Scan(&e.ID, &e.Name, &e.Description, &e.TargetDate, &e.Icon, &color,
		&e.CreatedAt, &updatedAt, &e.IsDetailedNotes, &notes)
	if err != nil {
		return model.Event{}, err
	}

	e.Color = model.Color(color)
	if updatedAt.Valid {
		t := updatedAt.Time
		e.UpdatedAt = &t
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &e.Notes); err != nil {
			return model.Event{}, fmt.Errorf("failed to decode notes of %s: %w", e.ID, err)
		}
	}
	if len(e.Notes) == 0 {
		e.Notes = nil
	}
	return e, nil
}

func encodeNotes(notes []model.NotePage) ([]byte, error) {
	if notes == nil {
		notes = []model.NotePage{}
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notes: %w", err)
	}
	return raw, nil
}

// describe folds the server's detail into a pq error
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Detail != "" {
		return fmt.Errorf("%w (%s)", err, pqErr.Detail)
	}
	return err
}
