package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/neocount/internal/auth"
	"github.com/existflow/neocount/internal/logger"
)

// tickMsg redraws once a second
type tickMsg time.Time

// timeLeftMsg carries one display timer render
type timeLeftMsg timeUpdate

// Init starts the timers feed, the auth listener and the session bootstrap
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForTimes(), m.waitForAuth(), m.bootstrapCmd())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForTimes listens for display timer renders
func (m Model) waitForTimes() tea.Cmd {
	return func() tea.Msg {
		return timeLeftMsg(<-m.timesChan)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tickCmd()

	case timeLeftMsg:
		if _, ok := m.subs[msg.id]; ok {
			m.times[msg.id] = msg.left
		}
		return m, m.waitForTimes()

	case authStateMsg:
		return m.handleAuthState(auth.State(msg))

	case authResultMsg:
		return m.handleAuthResult(msg)

	case scrollEndMsg:
		return m.handleScrollEnd(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logger.Debug("Window resized", logger.F("width", m.width), logger.F("height", m.height))
		return m, nil

	case tea.MouseMsg:
		if m.screen == ScreenGrid && m.mode == ModeDrawer {
			return m.handleDrawerMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case ScreenLoading:
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		case ScreenAuth:
			return m.updateAuth(msg)
		}

		switch m.mode {
		case ModeDrawer:
			return m.updateDrawer(msg)
		case ModeConfirmDelete:
			return m.handleConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// gridColumns is how many cards fit side by side
func (m Model) gridColumns() int {
	return max(1, m.width/cardWidth)
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	n := m.events.Len()
	cols := m.gridColumns()

	switch {
	case key.Matches(msg, keys.Quit):
		logger.Info("User quit TUI")
		return m, tea.Quit

	case key.Matches(msg, keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Right):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, keys.Down):
		if m.cursor+cols < n {
			m.cursor += cols
		}

	case key.Matches(msg, keys.Add):
		return m.startAddEvent()
	case key.Matches(msg, keys.Enter):
		return m.startViewEvent()
	case key.Matches(msg, keys.Edit):
		next, cmd := m.startViewEvent()
		mm := next.(Model)
		if mm.drawer == nil {
			return mm, cmd
		}
		return mm.updateDrawerView(msg)
	case key.Matches(msg, keys.Delete):
		return m.startDelete()

	case key.Matches(msg, keys.Refresh):
		m.handleRefresh()
	case key.Matches(msg, keys.Logout):
		return m.handleLogout()
	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

// startDelete asks for confirmation, or deletes right away when configured so
func (m Model) startDelete() (tea.Model, tea.Cmd) {
	if m.currentEvent() == nil {
		return m, nil
	}
	if !m.confirmDelete {
		m.handleDelete()
		return m, nil
	}
	m.mode = ModeConfirmDelete
	return m, nil
}

func (m Model) handleConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Confirm) {
		m.handleDelete()
	} else {
		m.message = "Delete cancelled"
	}
	m.mode = ModeNormal
	return m, nil
}

func (m *Model) handleDelete() {
	e := m.currentEvent()
	if e == nil {
		return
	}

	logger.Info("Deleting event", logger.F("id", e.ID), logger.F("name", e.Name))
	if err := m.events.Delete(context.Background(), e.ID); err != nil {
		m.message = "Error: " + err.Error()
		return
	}

	m.bindTimers()
	if m.cursor >= m.events.Len() {
		m.cursor = max(0, m.events.Len()-1)
	}
	m.message = fmt.Sprintf("Deleted: %s", e.Name)
}

func (m *Model) handleRefresh() {
	m.loadData()
	if m.message == "" {
		m.message = "Refreshed"
	}
}

func (m Model) handleLogout() (tea.Model, tea.Cmd) {
	if m.gate == nil {
		m.message = "Not signed in"
		return m, nil
	}

	logger.Info("User logging out")
	// The gate transition clears the grid
	if err := m.gate.SignOut(context.Background()); err != nil {
		m.message = "Logout failed: " + err.Error()
	}
	return m, nil
}
