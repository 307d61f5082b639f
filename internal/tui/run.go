package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser and blocks until the user quits or ctx is
// canceled.
func Run(ctx context.Context, deps Deps) error {
	if deps.History == nil || deps.Exporter == nil || deps.NewEditor == nil {
		return fmt.Errorf("history, exporter and editor are required")
	}

	m := New(ctx, deps)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
