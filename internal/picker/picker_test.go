package picker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	values []string
}

func (r *recorder) onChange(v string) { r.values = append(r.values, v) }

func newColumn(t *testing.T, items []string, value string) (*Column, *recorder) {
	t.Helper()
	rec := &recorder{}
	c, err := NewColumn(items, value, DefaultOptions, rec.onChange)
	require.NoError(t, err)
	return c, rec
}

func TestOptionsGeometry(t *testing.T) {
	assert.Equal(t, 240, DefaultOptions.ViewportHeight())
	assert.Equal(t, 96, DefaultOptions.Padding())
}

func TestNewColumnRejectsEmpty(t *testing.T) {
	_, err := NewColumn(nil, "", DefaultOptions, nil)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestInitialHighlightMatchesValue(t *testing.T) {
	items := DayItems()
	for i, v := range items {
		c, rec := newColumn(t, items, v)
		assert.Equal(t, i, c.Highlighted())
		assert.Equal(t, i*48, c.Offset())
		assert.Empty(t, rec.values)
	}
}

func TestMissingValueStartsAtFirstItem(t *testing.T) {
	c, _ := newColumn(t, MonthItems(), "13")
	assert.Equal(t, 0, c.Highlighted())
	assert.Equal(t, 0, c.Offset())
}

func TestScrollToExactOffsetThenConfirm(t *testing.T) {
	items := MonthItems()
	for i := range items {
		c, rec := newColumn(t, items, "")
		c.Scroll(i * 48)
		got, changed := c.ScrollEnd()

		assert.Equal(t, items[i], got)
		assert.True(t, changed)
		assert.Equal(t, []string{items[i]}, rec.values)
	}
}

func TestScrollRoundsAndClamps(t *testing.T) {
	c, rec := newColumn(t, MonthItems(), "01")

	c.Scroll(71)
	assert.Equal(t, 1, c.Highlighted())
	c.Scroll(73)
	assert.Equal(t, 2, c.Highlighted())
	c.Scroll(-500)
	assert.Equal(t, 0, c.Highlighted())
	c.Scroll(100000)
	assert.Equal(t, 11, c.Highlighted())
	assert.Empty(t, rec.values, "scrolling alone never notifies")
}

func TestScrollEndSnapsAndNotifiesOnce(t *testing.T) {
	c, rec := newColumn(t, MonthItems(), "01")

	c.Scroll(100)
	_, changed := c.ScrollEnd()
	assert.True(t, changed)
	assert.Equal(t, 96, c.Offset())

	_, changed = c.ScrollEnd()
	assert.False(t, changed)
	assert.Equal(t, []string{"03"}, rec.values)
}

func TestScrollEndOnSameValueIsSilent(t *testing.T) {
	c, rec := newColumn(t, MonthItems(), "05")
	c.Scroll(4*48 + 10)
	_, changed := c.ScrollEnd()
	assert.False(t, changed)
	assert.Empty(t, rec.values)
}

func TestTapConfirmsBeforeScrollEnd(t *testing.T) {
	c, rec := newColumn(t, DayItems(), "01")

	target := c.Tap(9)

	assert.Equal(t, 9*48, target)
	assert.Equal(t, []string{"10"}, rec.values)
	assert.Equal(t, "10", c.Value())

	c.Scroll(target)
	_, changed := c.ScrollEnd()
	assert.False(t, changed, "scroll landing after a tap does not report again")
}

func TestStep(t *testing.T) {
	c, rec := newColumn(t, MonthItems(), "12")
	c.Step(1)
	assert.Equal(t, 11, c.Highlighted(), "clamped at the end")
	c.Step(-2)
	assert.Equal(t, []string{"10"}, rec.values)
}

func TestOpacityTiers(t *testing.T) {
	c, _ := newColumn(t, DayItems(), "10")
	assert.Equal(t, OpacityFull, c.Opacity(9))
	assert.Equal(t, OpacityNear, c.Opacity(8))
	assert.Equal(t, OpacityNear, c.Opacity(10))
	assert.Equal(t, OpacityMid, c.Opacity(11))
	assert.Equal(t, OpacityFaint, c.Opacity(12))
	assert.Equal(t, OpacityFaint, c.Opacity(0))
	assert.True(t, c.Emphasized(9))
	assert.False(t, c.Emphasized(10))
}

func TestWindowPadsEdges(t *testing.T) {
	c, _ := newColumn(t, MonthItems(), "01")
	assert.Equal(t, []int{-1, -1, 0, 1, 2}, c.Window())
}

func TestDatePickerColumns(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)
	dp := NewDatePicker(date, now, DefaultOptions, nil)

	assert.Equal(t, "03", dp.Column(PartMonth).Value())
	assert.Equal(t, "15", dp.Column(PartDay).Value())
	assert.Equal(t, "2026", dp.Column(PartYear).Value())
	assert.Equal(t, []string{"2025", "2026", "2027", "2028", "2029", "2030", "2031", "2032", "2033", "2034"}, dp.Column(PartYear).Items())
}

func TestDatePickerOverwritesOneComponent(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	var got []time.Time
	dp := NewDatePicker(date, now, DefaultOptions, func(d time.Time) { got = append(got, d) })

	dp.Column(PartMonth).Tap(6)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2026, 7, 15, 18, 30, 0, 0, time.UTC), got[0])

	year := dp.Column(PartYear)
	year.Scroll(year.IndexOf("2030") * 48)
	year.ScrollEnd()
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2030, 7, 15, 18, 30, 0, 0, time.UTC), dp.Date())
}

func TestDatePickerDoesNotValidateDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	dp := NewDatePicker(date, now, DefaultOptions, nil)

	dp.Column(PartDay).Tap(30)

	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), dp.Date())
	assert.Equal(t, "03", dp.Column(PartMonth).Value(), "columns follow the rolled-over date")
	assert.Equal(t, "03", dp.Column(PartDay).Value())
}
