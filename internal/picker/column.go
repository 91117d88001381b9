// Package picker implements a scroll-snapping value column: the item nearest
// the center of the viewport is highlighted while scrolling and becomes the
// selection once the scroll ends or an item is tapped.
package picker

import (
	"errors"
	"math"
)

// ErrNoItems is returned when a column is built without items
var ErrNoItems = errors.New("picker needs at least one item")

// Options fixes the geometry of a column
type Options struct {
	ItemHeight   int // height of one row
	VisibleItems int // rows in the viewport, odd so one sits in the center
}

// DefaultOptions mirrors a 48px row with five rows visible
var DefaultOptions = Options{ItemHeight: 48, VisibleItems: 5}

// ViewportHeight is the height of the visible window
func (o Options) ViewportHeight() int {
	return o.ItemHeight * o.VisibleItems
}

// Padding is the space above the first and below the last item so either can
// reach the center
func (o Options) Padding() int {
	return (o.ViewportHeight() - o.ItemHeight) / 2
}

func (o Options) normalized() Options {
	if o.ItemHeight <= 0 {
		o.ItemHeight = DefaultOptions.ItemHeight
	}
	if o.VisibleItems <= 0 {
		o.VisibleItems = DefaultOptions.VisibleItems
	}
	if o.VisibleItems%2 == 0 {
		o.VisibleItems++
	}
	return o
}

// Opacity is a visual emphasis tier, in percent
type Opacity int

const (
	OpacityFull  Opacity = 100
	OpacityNear  Opacity = 70
	OpacityMid   Opacity = 40
	OpacityFaint Opacity = 20
)

// Column is one scrollable list of values
type Column struct {
	items    []string
	opts     Options
	onChange func(string)

	offset      int
	highlighted int
	value       string // last confirmed value
}

// NewColumn builds a column positioned on value. A value not in items starts at
// the first item.
func NewColumn(items []string, value string, opts Options, onChange func(string)) (*Column, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	c := &Column{
		items:    append([]string(nil), items...),
		opts:     opts.normalized(),
		onChange: onChange,
	}
	c.SetValue(value)
	return c, nil
}

// SetValue repositions the column on an externally supplied value without
// notifying the owner
func (c *Column) SetValue(value string) {
	idx := c.IndexOf(value)
	if idx < 0 {
		idx = 0
	}
	c.value = value
	c.highlighted = idx
	c.offset = idx * c.opts.ItemHeight
}

// Scroll reports a new scroll offset from the host. Only the highlight moves.
func (c *Column) Scroll(offset int) {
	maxOffset := (len(c.items) - 1) * c.opts.ItemHeight
	c.offset = max(0, min(offset, maxOffset))
	c.highlighted = c.indexAt(offset)
}

// ScrollBy moves the offset by delta
func (c *Column) ScrollBy(delta int) {
	c.Scroll(c.offset + delta)
}

// ScrollEnd snaps onto the highlighted item and confirms it. The owner is
// notified only when the value changed.
func (c *Column) ScrollEnd() (string, bool) {
	c.offset = c.highlighted * c.opts.ItemHeight
	selected := c.items[c.highlighted]
	if selected == c.value {
		return selected, false
	}
	c.value = selected
	if c.onChange != nil {
		c.onChange(selected)
	}
	return selected, true
}

// Tap selects item i right away and returns the offset the host should scroll
// to so it ends up centered
func (c *Column) Tap(i int) int {
	i = c.clamp(i)
	c.value = c.items[i]
	if c.onChange != nil {
		c.onChange(c.items[i])
	}
	return i * c.opts.ItemHeight
}

// Step moves the highlight by n items and confirms, as a keyboard would
func (c *Column) Step(n int) (string, bool) {
	c.Scroll((c.highlighted + n) * c.opts.ItemHeight)
	return c.ScrollEnd()
}

func (c *Column) indexAt(offset int) int {
	idx := int(math.Round(float64(offset) / float64(c.opts.ItemHeight)))
	return c.clamp(idx)
}

func (c *Column) clamp(i int) int {
	return max(0, min(i, len(c.items)-1))
}

// IndexOf returns the position of value or -1
func (c *Column) IndexOf(value string) int {
	for i, it := range c.items {
		if it == value {
			return i
		}
	}
	return -1
}

// Items returns the column values
func (c *Column) Items() []string { return c.items }

// Options returns the column geometry
func (c *Column) Options() Options { return c.opts }

// Offset returns the current scroll offset
func (c *Column) Offset() int { return c.offset }

// Highlighted returns the index under the center line
func (c *Column) Highlighted() int { return c.highlighted }

// Value returns the last confirmed value
func (c *Column) Value() string { return c.value }

// Opacity returns the emphasis tier of item i by its distance from the highlight
func (c *Column) Opacity(i int) Opacity {
	d := i - c.highlighted
	if d < 0 {
		d = -d
	}
	switch {
	case d == 0:
		return OpacityFull
	case d == 1:
		return OpacityNear
	case d == 2:
		return OpacityMid
	default:
		return OpacityFaint
	}
}

// Emphasized reports whether item i is rendered as the centered one
func (c *Column) Emphasized(i int) bool {
	return i == c.highlighted
}

// Window returns the indices inside the viewport, centered on the highlight.
// Slots past either end are -1 (the padding).
func (c *Column) Window() []int {
	half := c.opts.VisibleItems / 2
	out := make([]int, 0, c.opts.VisibleItems)
	for i := c.highlighted - half; i <= c.highlighted+half; i++ {
		if i < 0 || i >= len(c.items) {
			out = append(out, -1)
			continue
		}
		out = append(out, i)
	}
	return out
}
