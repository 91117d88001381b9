package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/existflow/neocount/internal/db"
	"github.com/existflow/neocount/internal/model"
)

// SlotKey names the slot that holds the whole serialized collection
const SlotKey = "neo-events"

// Local keeps the collection in memory and writes it back as one blob after
// every successful mutation
type Local struct {
	db  *db.DB
	now func() time.Time

	mu     sync.Mutex
	events []model.Event
}

// OpenLocal reads the slot once. A missing slot is an empty collection.
func OpenLocal(ctx context.Context, database *db.DB) (*Local, error) {
	l := &Local{db: database, now: time.Now}

	raw, ok, err := database.GetSlot(ctx, SlotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SlotKey, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &l.events); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", SlotKey, err)
		}
	}
	model.SortByTarget(l.events)
	return l, nil
}

// SetClock overrides the clock used for creation and update stamps
func (l *Local) SetClock(now func() time.Time) {
	l.now = now
}

func (l *Local) List(ctx context.Context) ([]model.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneAll(l.events), nil
}

func (l *Local) Create(ctx context.Context, draft model.Draft) (model.Event, error) {
	if err := draft.Validate(); err != nil {
		return model.Event{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := model.NewEvent(draft, l.now())
	next := append(cloneAll(l.events), e)
	if err := l.commit(ctx, next); err != nil {
		return model.Event{}, err
	}
	return e.Clone(), nil
}

func (l *Local) Update(ctx context.Context, id string, patch model.Patch) (model.Event, error) {
	if err := patch.Validate(); err != nil {
		return model.Event{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := cloneAll(l.events)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		patch.Apply(&next[i], l.now())
		updated := next[i].Clone()
		if err := l.commit(ctx, next); err != nil {
			return model.Event{}, err
		}
		return updated, nil
	}
	return model.Event{}, ErrNotFound
}

func (l *Local) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]model.Event, 0, len(l.events))
	for _, e := range l.events {
		if e.ID != id {
			next = append(next, e.Clone())
		}
	}
	if len(next) == len(l.events) {
		return ErrNotFound
	}
	return l.commit(ctx, next)
}

// commit writes next to the slot and only then makes it current
func (l *Local) commit(ctx context.Context, next []model.Event) error {
	model.SortByTarget(next)
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	if err := l.db.PutSlot(ctx, SlotKey, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", SlotKey, err)
	}
	l.events = next
	return nil
}

func cloneAll(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}
