// Package tui is the terminal frontend built on bubbletea.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/berrythewa/quicklaunch/internal/launcher"
)

// Run shows the launcher in the terminal until the session terminates or ctx
// is done
func Run(ctx context.Context, o *launcher.Orchestrator, src launcher.Sources, logger *zap.Logger) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(ctx, o, src, logger)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		o.Cancel()
		if ctx.Err() != nil {
			return o.ExitCode(), ctx.Err()
		}
		return o.ExitCode(), fmt.Errorf("terminal frontend failed: %w", err)
	}

	// The program can also end on its own, e.g. when the terminal goes away
	o.Cancel()
	return o.ExitCode(), nil
}
