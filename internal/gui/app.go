// Package gui is the desktop frontend built on Fyne.
package gui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"

	"github.com/berrythewa/quicklaunch/internal/gui/theme"
	"github.com/berrythewa/quicklaunch/internal/gui/views"
	"github.com/berrythewa/quicklaunch/internal/launcher"
	"github.com/berrythewa/quicklaunch/internal/types"
)

const appID = "com.berrythewa.quicklaunch"

// App represents the launcher window. Every orchestrator call happens on
// the Fyne main goroutine: widget callbacks run there, and channel events are
// marshalled onto it with fyne.Do.
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	mainView   *views.MainView
	o          *launcher.Orchestrator
	logger     *zap.Logger
}

// NewApp creates the launcher window for o
func NewApp(o *launcher.Orchestrator, logger *zap.Logger) *App {
	return newApp(app.NewWithID(appID), o, logger)
}

func newApp(fyneApp fyne.App, o *launcher.Orchestrator, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	fyneApp.Settings().SetTheme(theme.NewLauncherTheme())

	a := &App{
		fyneApp:    fyneApp,
		mainWindow: fyneApp.NewWindow("qlaunch"),
		o:          o,
		logger:     logger,
	}
	a.setupMainWindow()
	return a
}

// setupMainWindow configures the main application window
func (a *App) setupMainWindow() {
	a.mainWindow.Resize(fyne.NewSize(520, 360))
	a.mainWindow.CenterOnScreen()

	a.mainView = views.NewMainView(a.mainWindow, views.Handlers{
		TargetChanged: func(text string) {
			a.o.SetTargetText(text)
			a.render()
		},
		ArgumentChanged: func(text string) {
			a.o.EditArgument(text)
			a.render()
		},
		Selected: func(item string) {
			a.o.SelectSuggestion(item)
			a.render()
		},
		Submit: func() {
			a.o.Execute()
			a.render()
		},
		Toggle: a.toggle,
		Cancel: a.cancel,
	})
	a.mainWindow.SetContent(a.mainView.GetContent())

	a.mainWindow.Canvas().AddShortcut(
		&desktop.CustomShortcut{KeyName: fyne.KeyT, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { a.toggle() })

	a.mainWindow.SetCloseIntercept(a.cancel)

	a.render()
	a.mainView.FocusDefault()
}

func (a *App) toggle() {
	a.o.ToggleSuggestionSource()
	a.render()
}

func (a *App) cancel() {
	a.o.Cancel()
	a.render()
}

// render shows the current snapshot, or quits once the session is over
func (a *App) render() {
	view := a.o.Snapshot()
	if view.State == launcher.StateTerminated {
		a.fyneApp.Quit()
		return
	}
	a.mainView.Render(view)
}

func (a *App) activate(target string) {
	a.o.Activate(target)
	a.render()
	a.mainView.FocusDefault()
	a.mainWindow.Show()
	a.mainWindow.RequestFocus()
}

func (a *App) result(r types.SuggestionResult) {
	if a.o.OnSuggestionResult(r) {
		a.render()
	}
}

func (a *App) reload(targets []types.Target) {
	a.o.SetTargets(targets)
	a.render()
}

// pump forwards channel events to the main goroutine until stopped is closed
// or ctx is done
func (a *App) pump(ctx context.Context, src launcher.Sources, stopped <-chan struct{}) {
	activations, results, reloads := src.Activations, src.Results, src.Targets
	for {
		select {
		case <-stopped:
			return
		case <-ctx.Done():
			fyne.Do(a.cancel)
			return
		case msg, ok := <-activations:
			if !ok {
				activations = nil
				continue
			}
			fyne.Do(func() { a.activate(msg.Target) })
		case r, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			fyne.Do(func() { a.result(r) })
		case targets, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			fyne.Do(func() { a.reload(targets) })
		}
	}
}

// Run shows the launcher window until the session terminates or ctx is done.
// It must be called from the main goroutine.
func Run(ctx context.Context, o *launcher.Orchestrator, src launcher.Sources, logger *zap.Logger) (int, error) {
	a := NewApp(o, logger)

	stopped := make(chan struct{})
	go a.pump(ctx, src, stopped)

	a.mainWindow.ShowAndRun()
	close(stopped)

	o.Cancel()
	if err := ctx.Err(); err != nil {
		return o.ExitCode(), err
	}
	return o.ExitCode(), nil
}
