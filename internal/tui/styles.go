package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/picker"
)

// Neo-brutalist palette
var (
	NeoYellow = lipgloss.Color("#FFDE59")
	NeoRed    = lipgloss.Color("#FF6B6B")
	NeoBlue   = lipgloss.Color("#4ECDC4")
	NeoPurple = lipgloss.Color("#B388FF")
	NeoGreen  = lipgloss.Color("#95E1A3")

	Black     = lipgloss.Color("#111111")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Primary   = NeoYellow
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Black).
			Background(Primary).
			Padding(0, 1)

	// Cards
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			Padding(0, 1)

	CardSelectedStyle = CardStyle.
				BorderStyle(lipgloss.DoubleBorder())

	CountdownStyle = lipgloss.NewStyle().Bold(true)

	CompletedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Black).
			Background(NeoGreen).
			Padding(0, 1)

	GhostCardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(TextMuted).
			Foreground(TextMuted).
			Padding(1, 2)

	// Drawer
	DrawerStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextMuted)

	FocusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary)

	// Banners
	ErrorBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(NeoRed).
				Border(lipgloss.NormalBorder()).
				BorderForeground(NeoRed).
				Padding(0, 1)

	SuccessBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(NeoGreen).
				Border(lipgloss.NormalBorder()).
				BorderForeground(NeoGreen).
				Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Tabs on the auth screen
	TabStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 2)

	TabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Black).
			Background(Primary).
			Padding(0, 2)
)

// ColorFor maps an event color tag to its terminal color
func ColorFor(c model.Color) lipgloss.Color {
	switch c {
	case model.ColorRed:
		return NeoRed
	case model.ColorBlue:
		return NeoBlue
	case model.ColorPurple:
		return NeoPurple
	case model.ColorGreen:
		return NeoGreen
	default:
		return NeoYellow
	}
}

// pickerItemStyle renders a picker row by its opacity tier
func pickerItemStyle(o picker.Opacity, emphasized bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1)
	if emphasized {
		return s.Bold(true).Foreground(Black).Background(Primary)
	}
	switch o {
	case picker.OpacityNear:
		return s.Foreground(lipgloss.Color("#BBBBBB"))
	case picker.OpacityMid:
		return s.Foreground(lipgloss.Color("#777777"))
	default:
		return s.Foreground(lipgloss.Color("#444444"))
	}
}
