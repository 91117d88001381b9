package tui

import (
	"fmt"

	"github.com/existflow/neocount/internal/countdown"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// clip shortens a string to max cells with an ellipsis
func clip(s string, max int) string {
	if max <= 1 {
		return ""
	}
	return truncate.StringWithTail(s, uint(max), "…")
}

// wrap breaks text on word boundaries at width cells
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

// formatTimeLeft renders the remaining time the way cards show it
func formatTimeLeft(t countdown.TimeLeft) string {
	if t.IsPast {
		return "COMPLETED"
	}
	return fmt.Sprintf("%dd %02dh %02dm %02ds", t.Days, t.Hours, t.Minutes, t.Seconds)
}
