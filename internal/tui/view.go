package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/neocount/internal/model"
)

// cardWidth is the outer width of one grid card, borders included
const cardWidth = 34

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.screen {
	case ScreenLoading:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			HeaderStyle.Render("NEOCOUNT")+"\n\n"+HelpStyle.Render("Checking session..."))
	case ScreenAuth:
		return m.renderAuth()
	}

	header := m.renderHeader()
	mainContent := m.renderGrid()
	statusBar := m.renderStatusBar()

	if m.mode == ModeDrawer && m.drawer != nil {
		mainContent = lipgloss.Place(
			m.width, m.height-4,
			lipgloss.Right, lipgloss.Top,
			m.renderDrawer(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeConfirmDelete {
		mainContent = lipgloss.Place(
			m.width, m.height-4,
			lipgloss.Center, lipgloss.Center,
			m.renderConfirmDelete(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, statusBar)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("NEOCOUNT")
	count := HelpStyle.Render(fmt.Sprintf(" %d countdowns", m.events.Len()))
	user := ""
	if m.gate != nil {
		if s := m.gate.Session(); s != nil && s.Email != "" {
			user = HelpStyle.Render(s.Email + " ")
		}
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(count) - lipgloss.Width(user)
	if gap < 1 {
		gap = 1
	}
	return title + count + strings.Repeat(" ", gap) + user + "\n"
}

// renderGrid lays the event cards out in rows
func (m Model) renderGrid() string {
	height := m.height - 4
	events := m.events.Events()
	if len(events) == 0 {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.renderEmpty())
	}

	cols := m.gridColumns()
	var rows []string
	for start := 0; start < len(events); start += cols {
		end := min(start+cols, len(events))
		cards := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cards = append(cards, m.renderCard(events[i], i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	// Keep the selected row on screen
	cardRows := max(1, height/cardHeight)
	first := 0
	if row := m.cursor / cols; row >= cardRows {
		first = row - cardRows + 1
	}
	last := min(len(rows), first+cardRows)

	return lipgloss.NewStyle().Height(height).Render(lipgloss.JoinVertical(lipgloss.Left, rows[first:last]...))
}

// cardHeight is the outer height of one card
const cardHeight = 7

func (m Model) renderCard(e model.Event, selected bool) string {
	color := ColorFor(e.Color)
	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	style = style.Width(cardWidth - 2).BorderForeground(color)

	inner := cardWidth - 4
	name := lipgloss.NewStyle().Bold(true).Render(clip(e.Icon+" "+e.Name, inner))
	date := HelpStyle.Render(e.TargetDate.Format("Mon, Jan 2 2006"))

	left := m.timeLeft(e)
	var clock string
	if left.IsPast {
		clock = CompletedStyle.Render("COMPLETED")
	} else {
		clock = CountdownStyle.Foreground(color).Render(formatTimeLeft(left))
	}

	notes := ""
	if e.IsDetailedNotes {
		notes = HelpStyle.Render(fmt.Sprintf("%d note pages", len(e.Notes)))
	} else if e.Description != "" {
		notes = HelpStyle.Render(clip(strings.ReplaceAll(e.Description, "\n", " "), inner))
	}

	return style.Render(strings.Join([]string{name, date, "", clock, notes}, "\n"))
}

func (m Model) renderEmpty() string {
	ghost := GhostCardStyle.Render(
		lipgloss.NewStyle().Bold(true).Render("No Countdowns Yet") + "\n\n" +
			wrap("Time is ticking! create your first brutally honest countdown.", 36) + "\n\n" +
			"[ a ] new countdown",
	)
	return ghost
}

func (m Model) renderConfirmDelete() string {
	name := ""
	if e := m.currentEvent(); e != nil {
		name = e.Icon + " " + e.Name
	}
	content := lipgloss.NewStyle().Bold(true).Render("Delete countdown?") + "\n\n"
	content += name + "\n\n"
	content += HelpStyle.Render("y:delete  any other key:cancel")
	return DrawerStyle.BorderForeground(NeoRed).Render(content)
}

func (m Model) renderStatusBar() string {
	help := "←↓↑→:move  enter:open  a:add  e:edit  d:del  r:refresh  ?:help  q:quit"
	if m.gate != nil {
		help += "  L:logout"
	}
	if m.mode == ModeDrawer {
		help = "esc:close drawer"
	}
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ─────────╮
│                                │
│  Grid                          │
│  ────                          │
│  ←↓↑→ / hjkl  Move             │
│  enter        Open countdown   │
│  a            New countdown    │
│  e            Edit             │
│  d            Delete           │
│  r            Refresh          │
│  L            Logout           │
│                                │
│  Drawer                        │
│  ──────                        │
│  tab          Next field       │
│  ↑/↓          Scroll date      │
│  ←/→          Icon, color      │
│  ctrl+d       Detailed notes   │
│  N            New note page    │
│  ctrl+s       Save             │
│  esc          Close            │
│                                │
│  ?  Toggle help   q  Quit      │
│                                │
╰────────────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center, help)
}
