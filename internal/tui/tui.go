package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive board and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	applyTerminalPreferences()

	m := newAppModel(ctx, opts)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if opts.Session != nil {
		defer watchSession(opts.Session, p.Send)()
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
