package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/neocount/internal/logger"
)

// Run launches the full-screen app and blocks until it quits. Every display
// timer and gate listener is released on the way out.
func Run(opts Options) error {
	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if err != nil {
		logger.Error("TUI error", logger.F("error", err.Error()))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	logger.Info("TUI exited normally")
	return nil
}
