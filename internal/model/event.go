package model

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Color is a palette tag for an event card
type Color string

const (
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorGreen  Color = "green"
)

// Colors lists the palette in display order
var Colors = []Color{ColorYellow, ColorRed, ColorBlue, ColorPurple, ColorGreen}

// Icons is the set of glyphs an event may use. Append to extend it.
var Icons = []string{"🎉", "✈️", "🎂", "📅", "🚀", "💍", "🎓", "🏖️"}

const (
	// DefaultIcon is applied when an event is created without an icon
	DefaultIcon = "📅"
	// DefaultColor is applied when an event is created without a color
	DefaultColor = ColorYellow
)

var (
	ErrNameRequired = errors.New("event name is required")
	ErrInvalidColor = errors.New("unknown color")
	ErrInvalidIcon  = errors.New("unknown icon")
)

// Event is a countdown target with display metadata and notes
type Event struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	TargetDate      time.Time  `json:"target_date"`
	Icon            string     `json:"icon"`
	Color           Color      `json:"color"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	IsDetailedNotes bool       `json:"is_detailed_notes"`
	Notes           []NotePage `json:"notes,omitempty"`
}

// NewEvent builds a persisted event from a draft, filling identity and defaults
func NewEvent(d Draft, now time.Time) Event {
	e := Event{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(d.Name),
		Description:     d.Description,
		TargetDate:      d.TargetDate,
		Icon:            d.Icon,
		Color:           d.Color,
		CreatedAt:       now,
		IsDetailedNotes: d.IsDetailedNotes,
		Notes:           cloneNotes(d.Notes),
	}
	if e.Icon == "" {
		e.Icon = DefaultIcon
	}
	if e.Color == "" {
		e.Color = DefaultColor
	}
	if e.IsDetailedNotes {
		e.Description = ""
	}
	return e
}

// Clone returns a deep copy
func (e Event) Clone() Event {
	out := e
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		out.UpdatedAt = &t
	}
	out.Notes = cloneNotes(e.Notes)
	return out
}

// EnableDetailedNotes switches the event to note pages. The description, if any,
// becomes the first page. There is no way back.
func (e *Event) EnableDetailedNotes(now time.Time) {
	if e.IsDetailedNotes {
		return
	}
	e.Notes = seedNotes(e.Description, e.Notes, now)
	e.Description = ""
	e.IsDetailedNotes = true
}

// Validate checks the fields a user must supply
func Validate(name, icon string, color Color) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if icon != "" && !IsIcon(icon) {
		return ErrInvalidIcon
	}
	if color != "" && !IsColor(color) {
		return ErrInvalidColor
	}
	return nil
}

// IsColor reports whether c is in the palette
func IsColor(c Color) bool {
	for _, known := range Colors {
		if known == c {
			return true
		}
	}
	return false
}

// IsIcon reports whether s is a known icon glyph
func IsIcon(s string) bool {
	for _, known := range Icons {
		if known == s {
			return true
		}
	}
	return false
}

// SortByTarget orders events by target date ascending, oldest creation first on ties
func SortByTarget(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].TargetDate.Equal(events[j].TargetDate) {
			return events[i].TargetDate.Before(events[j].TargetDate)
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Name            *string     `json:"name,omitempty"`
	Description     *string     `json:"description,omitempty"`
	TargetDate      *time.Time  `json:"target_date,omitempty"`
	Icon            *string     `json:"icon,omitempty"`
	Color           *Color      `json:"color,omitempty"`
	IsDetailedNotes *bool       `json:"is_detailed_notes,omitempty"`
	Notes           *[]NotePage `json:"notes,omitempty"`
}

// Validate checks the fields the patch sets
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrNameRequired
	}
	if p.Icon != nil && !IsIcon(*p.Icon) {
		return ErrInvalidIcon
	}
	if p.Color != nil && !IsColor(*p.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Apply writes the set fields onto e and stamps UpdatedAt
func (p Patch) Apply(e *Event, now time.Time) {
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.TargetDate != nil {
		e.TargetDate = *p.TargetDate
	}
	if p.Icon != nil {
		e.Icon = *p.Icon
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Notes != nil {
		e.Notes = cloneNotes(*p.Notes)
	}
	if p.IsDetailedNotes != nil && *p.IsDetailedNotes && !e.IsDetailedNotes {
		if p.Notes != nil && hasSeed(e.Notes, e.Description) {
			e.IsDetailedNotes = true
		} else {
			e.EnableDetailedNotes(now)
		}
	}
	if e.IsDetailedNotes {
		e.Description = ""
	}
	stamp := now
	e.UpdatedAt = &stamp
}

// hasSeed reports whether notes already hold description as a General Notes page
func hasSeed(notes []NotePage, description string) bool {
	if strings.TrimSpace(description) == "" {
		return true
	}
	for _, n := range notes {
		if n.Title == GeneralNotesTitle && n.Content == description {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.TargetDate == nil && p.Icon == nil &&
		p.Color == nil && p.IsDetailedNotes == nil && p.Notes == nil
}
