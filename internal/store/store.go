// Package store persists countdown events, either as one serialized slot in
// the local SQLite file or as rows of the hosted events table.
package store

import (
	"context"
	"errors"

	"github.com/existflow/neocount/internal/model"
)

// ErrNotFound is returned for an unknown event id
var ErrNotFound = errors.New("event not found")

// Store is the persistence collaborator behind the event list.
// List is ordered by target date ascending.
type Store interface {
	List(ctx context.Context) ([]model.Event, error)
	Create(ctx context.Context, draft model.Draft) (model.Event, error)
	Update(ctx context.Context, id string, patch model.Patch) (model.Event, error)
	Delete(ctx context.Context, id string) error
}

// Get returns one event by id
func Get(ctx context.Context, s Store, id string) (model.Event, error) {
	events, err := s.List(ctx)
	if err != nil {
		return model.Event{}, err
	}
	for _, e := range events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Event{}, ErrNotFound
}

// Find resolves a full id or a unique id prefix, the way short ids are typed on
// the command line
func Find(ctx context.Context, s Store, idOrPrefix string) (model.Event, error) {
	events, err := s.List(ctx)
	if err != nil {
		return model.Event{}, err
	}

	var match *model.Event
	for i, e := range events {
		if e.ID == idOrPrefix {
			return e, nil
		}
		if len(idOrPrefix) >= 4 && len(e.ID) > len(idOrPrefix) && e.ID[:len(idOrPrefix)] == idOrPrefix {
			if match != nil {
				return model.Event{}, errors.New("ambiguous id prefix: " + idOrPrefix)
			}
			match = &events[i]
		}
	}
	if match == nil {
		return model.Event{}, ErrNotFound
	}
	return *match, nil
}
