// Package eventlist holds the ordered events the shell renders. Every mutation
// goes through the store and is followed by a full re-fetch.
package eventlist

import (
	"context"
	"sync"

	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/store"
)

// List is the in-memory copy of the store's collection
type List struct {
	store store.Store

	mu     sync.RWMutex
	events []model.Event
}

// New returns an empty list backed by s
func New(s store.Store) *List {
	return &List{store: s}
}

// SetStore swaps the backing store, e.g. after a different user signs in
func (l *List) SetStore(s store.Store) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store = s
}

// Events returns a copy ordered by target date ascending
func (l *List) Events() []model.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Event, len(l.events))
	for i, e := range l.events {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of events held
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Get returns the held event with id
func (l *List) Get(id string) (model.Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.events {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return model.Event{}, false
}

// Refresh replaces the held events with the store's current list. On failure
// the held events are left as they were.
func (l *List) Refresh(ctx context.Context) error {
	s := l.backing()
	if s == nil {
		return store.ErrNoUser
	}

	events, err := s.List(ctx)
	if err != nil {
		logger.Error("Failed to load events", logger.F("error", err.Error()))
		return err
	}
	model.SortByTarget(events)

	l.mu.Lock()
	l.events = events
	l.mu.Unlock()

	logger.Debug("Events loaded", logger.F("count", len(events)))
	return nil
}

// Create persists a new event and re-fetches the list
func (l *List) Create(ctx context.Context, draft model.Draft) (model.Event, error) {
	s := l.backing()
	if s == nil {
		return model.Event{}, store.ErrNoUser
	}

	e, err := s.Create(ctx, draft)
	if err != nil {
		logger.Error("Failed to create event",
			logger.F("name", draft.Name),
			logger.F("error", err.Error()),
		)
		return model.Event{}, err
	}
	logger.Info("Event created", logger.F("id", e.ID), logger.F("name", e.Name))

	_ = l.Refresh(ctx)
	return e, nil
}

// Update applies patch to the event with id and re-fetches the list
func (l *List) Update(ctx context.Context, id string, patch model.Patch) (model.Event, error) {
	s := l.backing()
	if s == nil {
		return model.Event{}, store.ErrNoUser
	}

	e, err := s.Update(ctx, id, patch)
	if err != nil {
		logger.Error("Failed to update event",
			logger.F("id", id),
			logger.F("error", err.Error()),
		)
		return model.Event{}, err
	}
	logger.Info("Event updated", logger.F("id", id))

	_ = l.Refresh(ctx)
	return e, nil
}

// Delete removes the event with id and re-fetches the list
func (l *List) Delete(ctx context.Context, id string) error {
	s := l.backing()
	if s == nil {
		return store.ErrNoUser
	}

	if err := s.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete event",
			logger.F("id", id),
			logger.F("error", err.Error()),
		)
		return err
	}
	logger.Info("Event deleted", logger.F("id", id))

	_ = l.Refresh(ctx)
	return nil
}

// Clear drops every held event without touching the store
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func (l *List) backing() store.Store {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store
}
