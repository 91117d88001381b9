// Package editor drives the drawer that views, configures and annotates one
// event. The in-progress edit is a typed model.Draft owned by the Flow and
// handed between modes; nothing is persisted until Save or SaveNote.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/neocount/internal/model"
)

// Mode is the drawer's current screen
type Mode int

const (
	Closed Mode = iota
	View
	EditConfig
	EditNote
)

func (m Mode) String() string {
	switch m {
	case View:
		return "view"
	case EditConfig:
		return "edit-config"
	case EditNote:
		return "edit-note"
	default:
		return "closed"
	}
}

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current mode
	ErrInvalidTransition = errors.New("invalid editor transition")
	// ErrSimpleNotes is returned when opening a note page on an event without detailed notes
	ErrSimpleNotes = errors.New("event uses a simple description")
	// ErrNoteNotFound is returned for an unknown note page id
	ErrNoteNotFound = errors.New("note page not found")
)

// Committer persists drafts. *eventlist.List satisfies it.
type Committer interface {
	Create(ctx context.Context, draft model.Draft) (model.Event, error)
	Update(ctx context.Context, id string, patch model.Patch) (model.Event, error)
}

// Flow is the drawer state machine
type Flow struct {
	committer Committer

	mode  Mode
	prev  Mode
	draft model.Draft
	note  model.NoteDraft
}

// New returns a closed flow
func New(c Committer) *Flow {
	return &Flow{committer: c}
}

func (f *Flow) Mode() Mode {
	return f.mode
}

// Draft returns a copy of the in-progress edit
func (f *Flow) Draft() model.Draft {
	d := f.draft
	d.Notes = append([]model.NotePage(nil), f.draft.Notes...)
	return d
}

// Note returns the page being edited in EditNote mode
func (f *Flow) Note() model.NoteDraft {
	return f.note
}

// OpenNew starts a new event with default values
func (f *Flow) OpenNew(now time.Time) error {
	if f.mode != Closed {
		return f.invalid("open new")
	}
	f.draft = model.NewDraft(now)
	f.mode = EditConfig
	return nil
}

// Open shows an existing event read-only
func (f *Flow) Open(e model.Event) error {
	if f.mode != Closed {
		return f.invalid("open")
	}
	f.draft = model.DraftOf(e)
	f.mode = View
	return nil
}

// EditConfig switches from the read-only view to the configuration form
func (f *Flow) EditConfig() error {
	if f.mode != View {
		return f.invalid("edit config")
	}
	f.mode = EditConfig
	return nil
}

// Edit mutates the draft in place
func (f *Flow) Edit(fn func(d *model.Draft)) error {
	if f.mode != EditConfig {
		return f.invalid("edit")
	}
	fn(&f.draft)
	return nil
}

// EnableDetailedNotes migrates the draft's description into note pages.
// The change is saved with the rest of the draft.
func (f *Flow) EnableDetailedNotes(now time.Time) error {
	if f.mode != EditConfig {
		return f.invalid("enable detailed notes")
	}
	f.draft.EnableDetailedNotes(now)
	return nil
}

// OpenNote opens a page of the draft's notes. An empty id opens a blank page.
func (f *Flow) OpenNote(id string) error {
	if f.mode != View && f.mode != EditConfig {
		return f.invalid("open note")
	}
	if !f.draft.IsDetailedNotes {
		return ErrSimpleNotes
	}

	note := model.NoteDraft{}
	if id != "" {
		page, ok := model.FindNote(f.draft.Notes, id)
		if !ok {
			return ErrNoteNotFound
		}
		note = model.NoteDraft{ID: page.ID, Title: page.Title, Content: page.Content}
	}

	f.note = note
	f.prev = f.mode
	f.mode = EditNote
	return nil
}

// SaveNote stores the page into the draft and returns to the previous mode.
// For an already persisted event the notes are committed right away; a failed
// commit leaves the draft and the mode untouched.
func (f *Flow) SaveNote(ctx context.Context, title, content string, now time.Time) error {
	if f.mode != EditNote {
		return f.invalid("save note")
	}

	f.note.Title = title
	f.note.Content = content
	page := f.note.Page(now)
	notes := model.UpsertNote(f.draft.Notes, page)

	if !f.draft.IsNew() {
		detailed := true
		updated, err := f.committer.Update(ctx, f.draft.ID, model.Patch{
			IsDetailedNotes: &detailed,
			Notes:           &notes,
		})
		if err != nil {
			return fmt.Errorf("failed to save note: %w", err)
		}
		notes = updated.Notes
	}

	f.draft.Notes = notes
	f.note = model.NoteDraft{}
	f.mode = f.prev
	return nil
}

// CancelNote drops the page being edited
func (f *Flow) CancelNote() error {
	if f.mode != EditNote {
		return f.invalid("cancel note")
	}
	f.note = model.NoteDraft{}
	f.mode = f.prev
	return nil
}

// Save validates the draft, creates or updates the event and closes the flow.
// On failure the flow stays open with the draft intact.
func (f *Flow) Save(ctx context.Context) (model.Event, error) {
	if f.mode != EditConfig {
		return model.Event{}, f.invalid("save")
	}
	if err := f.draft.Validate(); err != nil {
		return model.Event{}, err
	}

	var (
		e   model.Event
		err error
	)
	if f.draft.IsNew() {
		e, err = f.committer.Create(ctx, f.draft)
	} else {
		e, err = f.committer.Update(ctx, f.draft.ID, f.draft.Patch())
	}
	if err != nil {
		return model.Event{}, err
	}

	f.Close()
	return e, nil
}

// Close discards the draft without persisting anything
func (f *Flow) Close() {
	f.mode = Closed
	f.prev = Closed
	f.draft = model.Draft{}
	f.note = model.NoteDraft{}
}

func (f *Flow) invalid(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, f.mode)
}
