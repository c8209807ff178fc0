package views

import (
	"fmt"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/berrythewa/quicklaunch/internal/launcher"
)

// Handlers receive user actions from the main view
type Handlers struct {
	TargetChanged   func(text string)
	ArgumentChanged func(text string)
	Selected        func(item string)
	Submit          func()
	Toggle          func()
	Cancel          func()
}

// MainView represents the launcher window content
type MainView struct {
	// UI components
	targetEntry    *launchEntry
	argumentEntry  *launchEntry
	suggestionList *widget.List
	sourceIcon     *widget.Icon
	statusBar      *widget.Label
	toolbar        *widget.Toolbar
	content        fyne.CanvasObject

	// State
	handlers    Handlers
	suggestions []string
	selected    widget.ListItemID
	enabled     bool
	// rendering suppresses change callbacks while the view is updated from a snapshot
	rendering bool
	window    fyne.Window
}

// NewMainView creates a new main view
func NewMainView(window fyne.Window, handlers Handlers) *MainView {
	view := &MainView{
		window:   window,
		handlers: handlers,
		selected: -1,
	}

	view.createUI()
	return view
}

// createUI creates the main view UI
func (v *MainView) createUI() {
	v.toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.SearchIcon(), v.handlers.Toggle),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.CancelIcon(), v.handlers.Cancel),
	)

	v.targetEntry = newLaunchEntry(v)
	v.targetEntry.SetPlaceHolder("Target")
	v.targetEntry.OnChanged = func(text string) {
		if !v.rendering {
			v.handlers.TargetChanged(text)
		}
	}
	v.targetEntry.OnSubmitted = func(string) { v.handlers.Submit() }

	v.argumentEntry = newLaunchEntry(v)
	v.argumentEntry.SetPlaceHolder("Argument")
	v.argumentEntry.OnChanged = func(text string) {
		if !v.rendering {
			v.handlers.ArgumentChanged(text)
		}
	}
	v.argumentEntry.OnSubmitted = func(string) { v.handlers.Submit() }
	v.argumentEntry.Disable()

	v.createSuggestionList()

	v.sourceIcon = widget.NewIcon(theme.HistoryIcon())
	v.statusBar = widget.NewLabel("Ready")

	form := widget.NewForm(
		widget.NewFormItem("Target", v.targetEntry),
		widget.NewFormItem("Argument", v.argumentEntry),
	)

	top := container.NewVBox(v.toolbar, form)
	bottom := container.NewHBox(v.sourceIcon, v.statusBar)
	v.content = container.NewBorder(top, bottom, nil, nil, v.suggestionList)
}

// createSuggestionList creates the suggestion list
func (v *MainView) createSuggestionList() {
	v.suggestionList = widget.NewList(
		func() int { return len(v.suggestions) },
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(v.suggestions[id])
		},
	)

	v.suggestionList.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(v.suggestions) {
			return
		}
		v.selected = id
		if !v.rendering {
			v.handlers.Selected(v.suggestions[id])
		}
	}
	v.suggestionList.OnUnselected = func(id widget.ListItemID) {
		if v.selected == id {
			v.selected = -1
		}
	}
}

// GetContent returns the view's root object
func (v *MainView) GetContent() fyne.CanvasObject {
	return v.content
}

// Render updates the widgets from a session snapshot
func (v *MainView) Render(view launcher.View) {
	v.rendering = true
	defer func() { v.rendering = false }()

	if v.targetEntry.Text != view.TargetText {
		v.targetEntry.SetText(view.TargetText)
	}
	if v.argumentEntry.Text != view.Argument {
		v.argumentEntry.SetText(view.Argument)
	}
	v.enabled = view.ArgumentEnabled
	if view.ArgumentEnabled {
		v.argumentEntry.Enable()
	} else {
		v.argumentEntry.Disable()
	}

	if !slices.Equal(v.suggestions, view.Suggestions) {
		v.suggestions = slices.Clone(view.Suggestions)
		v.suggestionList.UnselectAll()
		v.selected = -1
		v.suggestionList.Refresh()
	}

	source := "history"
	v.sourceIcon.SetResource(theme.HistoryIcon())
	if view.RemoteSuggestions {
		source = "remote"
		v.sourceIcon.SetResource(theme.SearchIcon())
	}
	remote := "on"
	if !view.SuggestionsEnabled {
		remote = "off"
	}
	v.statusBar.SetText(fmt.Sprintf("%s · %d %s suggestions · remote %s",
		view.State, len(v.suggestions), source, remote))
}

// FocusDefault focuses the argument entry when it is enabled and the target
// entry otherwise
func (v *MainView) FocusDefault() {
	if v.window == nil {
		return
	}
	if v.enabled {
		v.window.Canvas().Focus(v.argumentEntry)
		return
	}
	v.window.Canvas().Focus(v.targetEntry)
}

// Suggestions returns the displayed suggestions
func (v *MainView) Suggestions() []string {
	return slices.Clone(v.suggestions)
}

// moveSelection selects the next (delta 1) or previous (delta -1) suggestion
func (v *MainView) moveSelection(delta int) {
	if len(v.suggestions) == 0 {
		return
	}
	next := v.selected + delta
	if next < 0 {
		v.suggestionList.UnselectAll()
		return
	}
	if next >= len(v.suggestions) {
		next = len(v.suggestions) - 1
	}
	v.suggestionList.Select(next)
}

// launchEntry is an entry that forwards navigation keys to its view
type launchEntry struct {
	widget.Entry
	view *MainView
}

func newLaunchEntry(view *MainView) *launchEntry {
	e := &launchEntry{view: view}
	e.ExtendBaseWidget(e)
	return e
}

// TypedKey handles escape and the arrow keys before the entry sees them
func (e *launchEntry) TypedKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeyEscape:
		e.view.handlers.Cancel()
	case fyne.KeyDown:
		e.view.moveSelection(1)
	case fyne.KeyUp:
		e.view.moveSelection(-1)
	default:
		e.Entry.TypedKey(key)
	}
}
