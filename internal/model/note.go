package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// UntitledNote is the title given to a page saved without one
	UntitledNote = "Untitled Note"
	// GeneralNotesTitle titles the page seeded from a simple description
	GeneralNotesTitle = "General Notes"
)

// NotePage is one titled page of an event's detailed notes
type NotePage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteDraft is a page being edited. An empty ID means a new page.
type NoteDraft struct {
	ID      string
	Title   string
	Content string
}

// Page turns the draft into a saved page
func (n NoteDraft) Page(now time.Time) NotePage {
	id := n.ID
	if id == "" {
		id = uuid.New().String()
	}
	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = UntitledNote
	}
	return NotePage{ID: id, Title: title, Content: n.Content, UpdatedAt: now}
}

// UpsertNote replaces the page with the same id or appends it
func UpsertNote(notes []NotePage, page NotePage) []NotePage {
	out := cloneNotes(notes)
	for i := range out {
		if out[i].ID == page.ID {
			out[i] = page
			return out
		}
	}
	return append(out, page)
}

// FindNote returns the page with id
func FindNote(notes []NotePage, id string) (NotePage, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return NotePage{}, false
}

func seedNotes(description string, existing []NotePage, now time.Time) []NotePage {
	if strings.TrimSpace(description) == "" {
		return cloneNotes(existing)
	}
	first := NotePage{
		ID:        uuid.New().String(),
		Title:     GeneralNotesTitle,
		Content:   description,
		UpdatedAt: now,
	}
	return append([]NotePage{first}, cloneNotes(existing)...)
}

func cloneNotes(notes []NotePage) []NotePage {
	if notes == nil {
		return nil
	}
	out := make([]NotePage, len(notes))
	copy(out, notes)
	return out
}
