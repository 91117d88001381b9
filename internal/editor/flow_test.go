package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/existflow/neocount/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeCommitter struct {
	events  map[string]model.Event
	creates int
	updates int
	err     error
}

func newFake() *fakeCommitter {
	return &fakeCommitter{events: map[string]model.Event{}}
}

func (f *fakeCommitter) Create(_ context.Context, d model.Draft) (model.Event, error) {
	if f.err != nil {
		return model.Event{}, f.err
	}
	f.creates++
	e := model.NewEvent(d, now)
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeCommitter) Update(_ context.Context, id string, p model.Patch) (model.Event, error) {
	if f.err != nil {
		return model.Event{}, f.err
	}
	f.updates++
	e, ok := f.events[id]
	if !ok {
		return model.Event{}, errors.New("not found")
	}
	p.Apply(&e, now)
	f.events[id] = e
	return e, nil
}

func (f *fakeCommitter) seed(d model.Draft) model.Event {
	e := model.NewEvent(d, now)
	f.events[e.ID] = e
	return e
}

func TestOpenNewUsesDefaults(t *testing.T) {
	f := New(newFake())
	require.NoError(t, f.OpenNew(now))

	assert.Equal(t, EditConfig, f.Mode())
	d := f.Draft()
	assert.True(t, d.IsNew())
	assert.Equal(t, model.Icons[0], d.Icon)
	assert.Equal(t, model.ColorYellow, d.Color)
	assert.Equal(t, now, d.TargetDate)
}

func TestSaveCreatesAndCloses(t *testing.T) {
	c := newFake()
	f := New(c)
	require.NoError(t, f.OpenNew(now))
	require.NoError(t, f.Edit(func(d *model.Draft) {
		d.Name = "Bali Trip"
		d.Icon = "🏖️"
	}))

	e, err := f.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bali Trip", e.Name)
	assert.Equal(t, 1, c.creates)
	assert.Equal(t, Closed, f.Mode())
	assert.Equal(t, model.Draft{}, f.Draft())
}

func TestSaveRequiresName(t *testing.T) {
	c := newFake()
	f := New(c)
	require.NoError(t, f.OpenNew(now))

	_, err := f.Save(context.Background())
	assert.ErrorIs(t, err, model.ErrNameRequired)
	assert.Equal(t, EditConfig, f.Mode())
	assert.Equal(t, 0, c.creates)
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	c := newFake()
	c.err = errors.New("offline")
	f := New(c)
	require.NoError(t, f.OpenNew(now))
	require.NoError(t, f.Edit(func(d *model.Draft) { d.Name = "Keep me" }))

	_, err := f.Save(context.Background())
	assert.Error(t, err)
	assert.Equal(t, EditConfig, f.Mode())
	assert.Equal(t, "Keep me", f.Draft().Name)
}

func TestViewThenEditUpdates(t *testing.T) {
	c := newFake()
	existing := c.seed(model.Draft{Name: "Launch", TargetDate: now})
	f := New(c)

	require.NoError(t, f.Open(existing))
	assert.Equal(t, View, f.Mode())

	assert.ErrorIs(t, f.Edit(func(d *model.Draft) {}), ErrInvalidTransition)
	_, err := f.Save(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, f.EditConfig())
	require.NoError(t, f.Edit(func(d *model.Draft) { d.Color = model.ColorPurple }))
	e, err := f.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ColorPurple, e.Color)
	assert.Equal(t, 1, c.updates)
	assert.Equal(t, 0, c.creates)
}

func TestCloseDiscardsWithoutCommitting(t *testing.T) {
	c := newFake()
	f := New(c)
	require.NoError(t, f.OpenNew(now))
	require.NoError(t, f.Edit(func(d *model.Draft) { d.Name = "draft only" }))

	f.Close()
	assert.Equal(t, Closed, f.Mode())
	assert.Equal(t, 0, c.creates)
	assert.Equal(t, 0, c.updates)
}

func TestInvalidTransitions(t *testing.T) {
	f := New(newFake())

	assert.ErrorIs(t, f.EditConfig(), ErrInvalidTransition)
	assert.ErrorIs(t, f.OpenNote(""), ErrInvalidTransition)
	assert.ErrorIs(t, f.CancelNote(), ErrInvalidTransition)
	assert.ErrorIs(t, f.SaveNote(context.Background(), "", "", now), ErrInvalidTransition)

	require.NoError(t, f.OpenNew(now))
	assert.ErrorIs(t, f.OpenNew(now), ErrInvalidTransition)
	assert.ErrorIs(t, f.Open(model.Event{}), ErrInvalidTransition)
}

func TestEnableDetailedNotesMigratesDraft(t *testing.T) {
	f := New(newFake())
	require.NoError(t, f.OpenNew(now))
	require.NoError(t, f.Edit(func(d *model.Draft) {
		d.Name = "Wedding"
		d.Description = "X"
	}))

	assert.ErrorIs(t, f.OpenNote(""), ErrSimpleNotes)

	require.NoError(t, f.EnableDetailedNotes(now))
	d := f.Draft()
	assert.True(t, d.IsDetailedNotes)
	assert.Empty(t, d.Description)
	require.Len(t, d.Notes, 1)
	assert.Equal(t, model.GeneralNotesTitle, d.Notes[0].Title)
	assert.Equal(t, "X", d.Notes[0].Content)
}

func TestNoteOnNewEventStaysInDraft(t *testing.T) {
	c := newFake()
	f := New(c)
	require.NoError(t, f.OpenNew(now))
	require.NoError(t, f.Edit(func(d *model.Draft) { d.Name = "Trip" }))
	require.NoError(t, f.EnableDetailedNotes(now))

	require.NoError(t, f.OpenNote(""))
	assert.Equal(t, EditNote, f.Mode())
	require.NoError(t, f.SaveNote(context.Background(), "  ", "pack bags", now))

	assert.Equal(t, EditConfig, f.Mode())
	assert.Equal(t, 0, c.updates)
	d := f.Draft()
	require.Len(t, d.Notes, 1)
	assert.Equal(t, model.UntitledNote, d.Notes[0].Title)

	e, err := f.Save(context.Background())
	require.NoError(t, err)
	require.Len(t, e.Notes, 1)
	assert.Equal(t, "pack bags", e.Notes[0].Content)
}

func TestNoteOnPersistedEventCommits(t *testing.T) {
	c := newFake()
	existing := c.seed(model.Draft{Name: "Trip", TargetDate: now, IsDetailedNotes: true})
	f := New(c)

	require.NoError(t, f.Open(existing))
	require.NoError(t, f.OpenNote(""))
	require.NoError(t, f.SaveNote(context.Background(), "Plan", "flights", now))

	assert.Equal(t, View, f.Mode())
	assert.Equal(t, 1, c.updates)
	stored := c.events[existing.ID]
	require.Len(t, stored.Notes, 1)
	pageID := stored.Notes[0].ID

	require.NoError(t, f.OpenNote(pageID))
	assert.Equal(t, "Plan", f.Note().Title)
	require.NoError(t, f.SaveNote(context.Background(), "Plan", "flights, hotel", now))

	stored = c.events[existing.ID]
	require.Len(t, stored.Notes, 1)
	assert.Equal(t, "flights, hotel", stored.Notes[0].Content)
}

func TestNoteCommitFailureStaysInEditor(t *testing.T) {
	c := newFake()
	existing := c.seed(model.Draft{Name: "Trip", TargetDate: now, IsDetailedNotes: true})
	f := New(c)
	require.NoError(t, f.Open(existing))
	require.NoError(t, f.OpenNote(""))

	c.err = errors.New("offline")
	assert.Error(t, f.SaveNote(context.Background(), "Plan", "x", now))
	assert.Equal(t, EditNote, f.Mode())
	assert.Empty(t, f.Draft().Notes)
}

func TestCancelNoteReturnsToPreviousMode(t *testing.T) {
	c := newFake()
	existing := c.seed(model.Draft{Name: "Trip", TargetDate: now, IsDetailedNotes: true})
	f := New(c)
	require.NoError(t, f.Open(existing))

	require.NoError(t, f.OpenNote(""))
	require.NoError(t, f.CancelNote())
	assert.Equal(t, View, f.Mode())

	assert.ErrorIs(t, f.OpenNote("missing"), ErrNoteNotFound)
	assert.Equal(t, View, f.Mode())
}
