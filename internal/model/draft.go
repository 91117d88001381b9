package model

import "time"

// Draft is the in-progress, uncommitted copy of an event being edited
type Draft struct {
	ID              string // empty until the event is persisted
	Name            string
	Description     string
	TargetDate      time.Time
	Icon            string
	Color           Color
	IsDetailedNotes bool
	Notes           []NotePage
}

// NewDraft returns the defaults shown when creating an event
func NewDraft(now time.Time) Draft {
	return Draft{
		TargetDate: now,
		Icon:       Icons[0],
		Color:      ColorYellow,
	}
}

// DraftOf copies an event into an editable draft
func DraftOf(e Event) Draft {
	return Draft{
		ID:              e.ID,
		Name:            e.Name,
		Description:     e.Description,
		TargetDate:      e.TargetDate,
		Icon:            e.Icon,
		Color:           e.Color,
		IsDetailedNotes: e.IsDetailedNotes,
		Notes:           cloneNotes(e.Notes),
	}
}

// IsNew reports whether the draft has not been persisted yet
func (d Draft) IsNew() bool {
	return d.ID == ""
}

// Validate checks the draft before it is saved
func (d Draft) Validate() error {
	return Validate(d.Name, d.Icon, d.Color)
}

// EnableDetailedNotes applies the one-way note migration to the draft
func (d *Draft) EnableDetailedNotes(now time.Time) {
	if d.IsDetailedNotes {
		return
	}
	d.Notes = seedNotes(d.Description, d.Notes, now)
	d.Description = ""
	d.IsDetailedNotes = true
}

// Patch describes every editable field of the draft as a full update
func (d Draft) Patch() Patch {
	name := d.Name
	desc := d.Description
	target := d.TargetDate
	detailed := d.IsDetailedNotes
	notes := cloneNotes(d.Notes)
	if notes == nil {
		notes = []NotePage{}
	}
	p := Patch{
		Name:            &name,
		Description:     &desc,
		TargetDate:      &target,
		IsDetailedNotes: &detailed,
		Notes:           &notes,
	}
	if d.Icon != "" {
		icon := d.Icon
		p.Icon = &icon
	}
	if d.Color != "" {
		color := d.Color
		p.Color = &color
	}
	return p
}
