package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/existflow/neocount/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupHome points config, database and session paths into a temp dir
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NEOCOUNT_DB", filepath.Join(home, "neocount.db"))
	t.Setenv("NEOCOUNT_STORAGE", "local")
	t.Setenv("NEOCOUNT_IDENTITY_URL", "")
	return home
}

// resetFlags restores every flag to its default, cobra keeps values between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func listEventsJSON(t *testing.T) []model.Event {
	t.Helper()
	out, err := execute(t, "", "list", "--json")
	require.NoError(t, err)

	var events []model.Event
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	return events
}

func TestAddAndList(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "", "add", "Japan", "Trip", "--date", "2099-04-01", "--time", "08:30", "--icon", "🚀", "--color", "Red")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added 🚀 Japan Trip")

	events := listEventsJSON(t)
	require.Len(t, events, 1)
	assert.Equal(t, "Japan Trip", events[0].Name)
	assert.Equal(t, model.ColorRed, events[0].Color)
	assert.Equal(t, 8, events[0].TargetDate.Local().Hour())

	out, err = execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Countdowns (1)")
	assert.Contains(t, out, "Japan Trip")
}

func TestAddRejectsInvalidColor(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "add", "Launch", "--date", "2099-01-01", "--color", "orange")
	assert.Error(t, err)
	assert.Empty(t, listEventsJSON(t))
}

func TestListEmptyAndUpcoming(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No Countdowns Yet")

	_, err = execute(t, "", "add", "Past", "--date", "2001-01-01")
	require.NoError(t, err)
	_, err = execute(t, "", "add", "Future", "--date", "2099-01-01")
	require.NoError(t, err)

	out, err = execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLETED")

	out, err = execute(t, "", "list", "--upcoming")
	require.NoError(t, err)
	assert.NotContains(t, out, "Past")
	assert.Contains(t, out, "Future")
}

func TestEditByPrefix(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "add", "Launch", "--date", "2099-01-01")
	require.NoError(t, err)
	id := listEventsJSON(t)[0].ID

	out, err := execute(t, "", "edit", id[:6], "--name", "Launch Day", "--time", "09:15")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated")

	e := listEventsJSON(t)[0]
	assert.Equal(t, "Launch Day", e.Name)
	assert.Equal(t, "2099-01-01 09:15", e.TargetDate.Local().Format("2006-01-02 15:04"))

	_, err = execute(t, "", "edit", id)
	assert.ErrorContains(t, err, "nothing to change")
}

func TestEditDateKeepsLocalTimeOfDay(t *testing.T) {
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	zone := time.FixedZone("UTC+7", 7*60*60)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, zone)
	e := model.Event{
		Name:       "Trip",
		TargetDate: time.Date(2027, 5, 1, 9, 0, 0, 0, zone).UTC(),
	}

	require.NoError(t, editCmd.Flags().Set("date", "2027-06-01"))
	p, err := editPatch(editCmd, e, now)
	require.NoError(t, err)
	require.NotNil(t, p.TargetDate)
	assert.True(t, time.Date(2027, 6, 1, 9, 0, 0, 0, zone).Equal(*p.TargetDate))

	resetFlags(rootCmd)
	require.NoError(t, editCmd.Flags().Set("time", "18:30"))
	p, err = editPatch(editCmd, e, now)
	require.NoError(t, err)
	assert.True(t, time.Date(2027, 5, 1, 18, 30, 0, 0, zone).Equal(*p.TargetDate))
}

func TestEditDescriptionOfDetailedEventFails(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "add", "Wedding", "--date", "2099-06-12", "--detailed")
	require.NoError(t, err)
	id := listEventsJSON(t)[0].ID

	_, err = execute(t, "", "edit", id, "--desc", "Venue")
	assert.ErrorContains(t, err, "note pages")
}

func TestDeleteConfirmation(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "add", "Launch", "--date", "2099-01-01")
	require.NoError(t, err)
	id := listEventsJSON(t)[0].ID

	out, err := execute(t, "n\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Len(t, listEventsJSON(t), 1)

	out, err = execute(t, "y\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted: Launch")
	assert.Empty(t, listEventsJSON(t))

	_, err = execute(t, "", "delete", id, "--yes")
	assert.Error(t, err)
}

func TestNotePages(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "add", "Wedding", "--date", "2099-06-12", "--desc", "Venue TBD")
	require.NoError(t, err)
	id := listEventsJSON(t)[0].ID

	_, err = execute(t, "", "note", "add", id, "--title", "Guests", "--content", "Alice")
	assert.ErrorContains(t, err, "note detail")

	out, err := execute(t, "", "note", "detail", id)
	require.NoError(t, err)
	assert.Contains(t, out, "now has 1 note pages")

	e := listEventsJSON(t)[0]
	require.Len(t, e.Notes, 1)
	assert.Equal(t, model.GeneralNotesTitle, e.Notes[0].Title)
	assert.Equal(t, "Venue TBD", e.Notes[0].Content)
	assert.Empty(t, e.Description)

	_, err = execute(t, "Alice\nBob\n", "note", "add", id, "--title", "Guests", "--content", "-")
	require.NoError(t, err)

	_, err = execute(t, "", "note", "add", id, "--page", e.Notes[0].ID[:8], "--content", "Venue booked")
	require.NoError(t, err)

	out, err = execute(t, "", "note", "list", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Guests")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Venue booked")

	e = listEventsJSON(t)[0]
	require.Len(t, e.Notes, 2)
	assert.Equal(t, model.GeneralNotesTitle, e.Notes[0].Title)
}

func TestExport(t *testing.T) {
	home := setupHome(t)

	_, err := execute(t, "", "add", "Launch", "--date", "2099-01-01")
	require.NoError(t, err)

	out, err := execute(t, "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "Launch")

	path := filepath.Join(home, "countdowns.ics")
	out, err = execute(t, "", "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 countdowns")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VEVENT")
}

func TestAuthWithoutIdentityProvider(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Identity: not configured")

	_, err = execute(t, "", "auth", "login", "--email", "a@b.c", "--password", "pw")
	assert.ErrorIs(t, err, errIdentityNotConfigured)
}

func TestRemoteStorageNeedsIdentity(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "list", "--storage", "remote")
	assert.ErrorIs(t, err, errIdentityNotConfigured)

	_, err = execute(t, "", "list", "--storage", "cloud")
	assert.ErrorContains(t, err, "unknown storage")
}

func TestParseTarget(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)

	got, err := parseTarget("2026-12-01", "09:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 1, 9, 30, 0, 0, time.Local), got)

	got, err = parseTarget("Tomorrow", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), got)

	got, err = parseTarget("today", "18:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 18, 0, 0, 0, time.Local), got)

	_, err = parseTarget("12/01/2026", "09:30", now)
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestReminderText(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		{Name: "Done", Icon: "✅", TargetDate: now.Add(-time.Hour)},
		{Name: "Launch", Icon: "🚀", TargetDate: now.Add(50 * time.Hour)},
		{Name: "Trip", Icon: "✈️", TargetDate: now.Add(100 * time.Hour)},
	}

	title, body := reminderText(events, now)
	assert.Equal(t, "NeoCount", title)
	assert.Equal(t, "🚀 Launch in 2d 2h (+1 more)", body)

	_, body = reminderText(events[:1], now)
	assert.Equal(t, "Time is ticking! Check your countdowns.", body)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3f2a9c1b", shortID("3f2a9c1b-0000-4000-8000-000000000000"))
	assert.Equal(t, "abc", shortID("abc"))
}
