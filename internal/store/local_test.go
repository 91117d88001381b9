package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/neocount/internal/db"
	"github.com/existflow/neocount/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func openLocal(t *testing.T, path string) (*Local, *db.DB) {
	t.Helper()
	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	l, err := OpenLocal(context.Background(), database)
	require.NoError(t, err)
	l.SetClock(func() time.Time { return base })
	return l, database
}

func TestLocalCreateListRoundTrip(t *testing.T) {
	l, _ := openLocal(t, filepath.Join(t.TempDir(), "events.db"))
	ctx := context.Background()

	draft := model.Draft{
		Name:        "Japan Trip",
		Description: "Tokyo, Kyoto, Osaka",
		TargetDate:  base.Add(45 * 24 * time.Hour),
		Icon:        "✈️",
		Color:       model.ColorRed,
	}
	created, err := l.Create(ctx, draft)
	require.NoError(t, err)

	events, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, created.ID, got.ID)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, draft.Name, got.Name)
	assert.Equal(t, draft.Description, got.Description)
	assert.True(t, draft.TargetDate.Equal(got.TargetDate))
	assert.Equal(t, draft.Icon, got.Icon)
	assert.Equal(t, draft.Color, got.Color)
}

func TestLocalDeleteExcludesEvent(t *testing.T) {
	l, _ := openLocal(t, filepath.Join(t.TempDir(), "events.db"))
	ctx := context.Background()

	a, err := l.Create(ctx, model.Draft{Name: "A", TargetDate: base})
	require.NoError(t, err)
	b, err := l.Create(ctx, model.Draft{Name: "B", TargetDate: base})
	require.NoError(t, err)

	require.NoError(t, l.Delete(ctx, a.ID))

	events, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, b.ID, events[0].ID)

	assert.ErrorIs(t, l.Delete(ctx, a.ID), ErrNotFound)
}

func TestLocalListOrderedByTarget(t *testing.T) {
	l, _ := openLocal(t, filepath.Join(t.TempDir(), "events.db"))
	ctx := context.Background()

	for _, d := range []int{30, 5, 12} {
		_, err := l.Create(ctx, model.Draft{Name: "e", TargetDate: base.Add(time.Duration(d) * 24 * time.Hour)})
		require.NoError(t, err)
	}

	events, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].TargetDate.Before(events[1].TargetDate))
	assert.True(t, events[1].TargetDate.Before(events[2].TargetDate))
}

func TestLocalUpdateStampsAndReorders(t *testing.T) {
	l, _ := openLocal(t, filepath.Join(t.TempDir(), "events.db"))
	ctx := context.Background()

	early, err := l.Create(ctx, model.Draft{Name: "early", TargetDate: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = l.Create(ctx, model.Draft{Name: "late", TargetDate: base.Add(2 * time.Hour)})
	require.NoError(t, err)

	later := base.Add(3 * time.Hour)
	updated, err := l.Update(ctx, early.ID, model.Patch{TargetDate: &later})
	require.NoError(t, err)
	require.NotNil(t, updated.UpdatedAt)

	events, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", events[0].Name)
	assert.Equal(t, "early", events[1].Name)

	_, err = l.Update(ctx, "missing", model.Patch{TargetDate: &later})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRejectsInvalid(t *testing.T) {
	l, _ := openLocal(t, filepath.Join(t.TempDir(), "events.db"))
	ctx := context.Background()

	_, err := l.Create(ctx, model.Draft{Name: ""})
	assert.ErrorIs(t, err, model.ErrNameRequired)

	events, err := l.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLocalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	first, database := openLocal(t, path)
	created, err := first.Create(ctx, model.Draft{Name: "Persisted", TargetDate: base, Description: "X"})
	require.NoError(t, err)
	detailed := true
	_, err = first.Update(ctx, created.ID, model.Patch{IsDetailedNotes: &detailed})
	require.NoError(t, err)

	second, err := OpenLocal(ctx, database)
	require.NoError(t, err)
	events, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Persisted", events[0].Name)
	assert.True(t, events[0].IsDetailedNotes)
	require.Len(t, events[0].Notes, 1)
	assert.Equal(t, model.GeneralNotesTitle, events[0].Notes[0].Title)
}

func TestFindByPrefix(t *testing.T) {
	l, _ := openLocal(t, filepath.Join(t.TempDir(), "events.db"))
	ctx := context.Background()

	created, err := l.Create(ctx, model.Draft{Name: "A", TargetDate: base})
	require.NoError(t, err)

	got, err := Find(ctx, l, created.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = Find(ctx, l, "zzzzzzzz")
	assert.ErrorIs(t, err, ErrNotFound)
}
