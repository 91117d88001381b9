// Package ics renders countdown events as an iCalendar feed
package ics

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/existflow/neocount/internal/model"
)

// ProductID identifies the feed's producer
const ProductID = "-//NeoCount//Countdowns//EN"

// Calendar builds one VEVENT per countdown. DTSTART is the target instant;
// the description carries the simple description or the note pages.
func Calendar(events []model.Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetName("NeoCount")
	cal.SetXWRCalName("NeoCount")

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(now.UTC())
		ve.SetCreatedTime(e.CreatedAt.UTC())
		if e.UpdatedAt != nil {
			ve.SetModifiedAt(e.UpdatedAt.UTC())
		}
		ve.SetStartAt(e.TargetDate.UTC())
		ve.SetEndAt(e.TargetDate.UTC())
		ve.SetSummary(strings.TrimSpace(e.Icon + " " + e.Name))
		if desc := description(e); desc != "" {
			ve.SetDescription(desc)
		}
		ve.SetColor(string(e.Color))
		ve.AddCategory("countdown")
	}
	return cal
}

// Export writes the feed for events to w
func Export(w io.Writer, events []model.Event, now time.Time) error {
	return Calendar(events, now).SerializeTo(w)
}

func description(e model.Event) string {
	if !e.IsDetailedNotes {
		return e.Description
	}

	var b strings.Builder
	for i, n := range e.Notes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(n.Title)
		if n.Content != "" {
			b.WriteString("\n")
			b.WriteString(n.Content)
		}
	}
	return b.String()
}
