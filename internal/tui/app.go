// Package tui provides the full-screen task list, an alternative front end
// to the line menu over the same session.
package tui

import (
	"context"

	"github.com/Iron-Ham/tasker/internal/event"
	"github.com/Iron-Ham/tasker/internal/logging"
	"github.com/Iron-Ham/tasker/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program.
type App struct {
	model  Model
	bus    *event.Bus
	logger *logging.Logger
	opts   []tea.ProgramOption
}

// New creates a full-screen UI over tasks. bus may be nil; when set,
// autosave results are shown in the status line.
func New(tasks Tasks, bus *event.Bus, theme *styles.Theme, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &App{
		model:  NewModel(tasks, theme),
		bus:    bus,
		logger: logger.WithComponent("tui"),
		opts:   []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// Run blocks until the user quits or ctx is canceled. Saving on exit is
// left to the caller's shutdown path.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(a.model, append(a.opts, tea.WithContext(ctx))...)

	if a.bus != nil {
		forward := func(e event.Event) {
			if msg, ok := autosaveFromEvent(e); ok {
				program.Send(msg)
			}
		}
		saved := a.bus.Subscribe(event.TypeStoreSaved, forward)
		failed := a.bus.Subscribe(event.TypeStoreSaveFailed, forward)
		defer a.bus.Unsubscribe(saved)
		defer a.bus.Unsubscribe(failed)
	}

	a.logger.Info("tui started")
	_, err := program.Run()
	interrupted := ctx.Err() != nil
	// Release any forwarder still blocked in Send.
	cancel()

	if err != nil && interrupted {
		// Interrupted from outside; the shutdown path takes over.
		a.logger.Info("tui interrupted")
		return nil
	}
	if err != nil {
		a.logger.Error("tui failed", "error", err.Error())
		return err
	}
	a.logger.Info("tui exited")
	return nil
}
