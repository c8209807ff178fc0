package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/berrythewa/quicklaunch/internal/launcher"
	"github.com/berrythewa/quicklaunch/internal/types"
)

type (
	activationMsg types.ActivationMessage
	resultMsg     types.SuggestionResult
	targetsMsg    []types.Target
)

type field int

const (
	fieldTarget field = iota
	fieldArgument
)

// Model renders an orchestrator session and feeds it key presses and
// channel events. All orchestrator calls happen inside Update, so the
// bubbletea event loop is the single control goroutine.
type Model struct {
	ctx    context.Context
	o      *launcher.Orchestrator
	src    launcher.Sources
	logger *zap.Logger

	target   textinput.Model
	argument textinput.Model
	focus    field
	selected int
	view     launcher.View
	width    int
	styles   styles
}

// NewModel creates a model for o. ctx bounds the commands waiting on src.
func NewModel(ctx context.Context, o *launcher.Orchestrator, src launcher.Sources, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	target := textinput.New()
	target.Prompt = "target › "
	target.Placeholder = strings.Join(o.TargetNames(), " ")

	argument := textinput.New()
	argument.Prompt = "   arg › "

	m := &Model{
		ctx:      ctx,
		o:        o,
		src:      src,
		logger:   logger,
		target:   target,
		argument: argument,
		selected: -1,
		styles:   defaultStyles(),
	}
	m.sync()
	m.focusDefault()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		wait(m.ctx, m.src.Activations, func(a types.ActivationMessage) tea.Msg { return activationMsg(a) }),
		wait(m.ctx, m.src.Results, func(r types.SuggestionResult) tea.Msg { return resultMsg(r) }),
		wait(m.ctx, m.src.Targets, func(t []types.Target) tea.Msg { return targetsMsg(t) }),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case activationMsg:
		m.o.Activate(msg.Target)
		m.selected = -1
		m.sync()
		cmds = append(cmds,
			m.focusDefault(),
			wait(m.ctx, m.src.Activations, func(a types.ActivationMessage) tea.Msg { return activationMsg(a) }))

	case resultMsg:
		if m.o.OnSuggestionResult(types.SuggestionResult(msg)) {
			m.selected = -1
		}
		cmds = append(cmds, wait(m.ctx, m.src.Results, func(r types.SuggestionResult) tea.Msg { return resultMsg(r) }))

	case targetsMsg:
		m.o.SetTargets(msg)
		m.target.Placeholder = strings.Join(m.o.TargetNames(), " ")
		cmds = append(cmds, wait(m.ctx, m.src.Targets, func(t []types.Target) tea.Msg { return targetsMsg(t) }))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.target.Width = msg.Width - len(m.target.Prompt) - 1
		m.argument.Width = msg.Width - len(m.argument.Prompt) - 1

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	default:
		cmds = append(cmds, m.updateFocused(msg))
	}

	m.sync()
	if m.view.State == launcher.StateTerminated {
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.o.Cancel()
		return nil
	case "ctrl+t":
		m.o.ToggleSuggestionSource()
		m.selected = -1
		return nil
	case "tab", "shift+tab":
		if m.focus == fieldTarget && m.view.ArgumentEnabled {
			return m.focusField(fieldArgument)
		}
		return m.focusField(fieldTarget)
	case "up", "ctrl+p":
		if m.selected >= 0 {
			m.selected--
		}
		return nil
	case "down", "ctrl+n":
		if m.selected < len(m.view.Suggestions)-1 {
			m.selected++
		}
		return nil
	case "enter":
		if m.selected >= 0 && m.selected < len(m.view.Suggestions) {
			m.o.SelectSuggestion(m.view.Suggestions[m.selected])
		}
		m.o.Execute()
		return nil
	}
	return m.updateFocused(msg)
}

// updateFocused passes msg to the focused input and reports edits to the
// orchestrator
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case fieldTarget:
		before := m.target.Value()
		m.target, cmd = m.target.Update(msg)
		if v := m.target.Value(); v != before {
			m.o.SetTargetText(v)
			m.selected = -1
		}
	case fieldArgument:
		before := m.argument.Value()
		m.argument, cmd = m.argument.Update(msg)
		if v := m.argument.Value(); v != before {
			m.o.EditArgument(v)
			m.selected = -1
		}
	}
	return cmd
}

// sync copies the orchestrator snapshot into the inputs
func (m *Model) sync() {
	m.view = m.o.Snapshot()
	if m.target.Value() != m.view.TargetText {
		m.target.SetValue(m.view.TargetText)
	}
	if m.argument.Value() != m.view.Argument {
		m.argument.SetValue(m.view.Argument)
	}
	if m.selected >= len(m.view.Suggestions) {
		m.selected = len(m.view.Suggestions) - 1
	}
	if m.focus == fieldArgument && !m.view.ArgumentEnabled {
		m.focusField(fieldTarget)
	}
}

func (m *Model) focusDefault() tea.Cmd {
	if m.view.ArgumentEnabled {
		return m.focusField(fieldArgument)
	}
	return m.focusField(fieldTarget)
}

func (m *Model) focusField(f field) tea.Cmd {
	m.focus = f
	if f == fieldArgument {
		m.target.Blur()
		return m.argument.Focus()
	}
	m.argument.Blur()
	return m.target.Focus()
}

func (m *Model) View() string {
	if m.view.State == launcher.StateTerminated {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("qlaunch"))
	b.WriteString("\n")

	b.WriteString(m.target.View())
	switch {
	case m.view.ArgumentEnabled:
		b.WriteString(m.styles.valid.Render(" ✓"))
	case strings.TrimSpace(m.view.TargetText) != "":
		b.WriteString(m.styles.invalid.Render(" ✗"))
	}
	b.WriteString("\n")

	if m.view.ArgumentEnabled {
		b.WriteString(m.argument.View())
	} else {
		b.WriteString(m.styles.disabled.Render(m.argument.Prompt + "choose a target first"))
	}
	b.WriteString("\n\n")

	for i, s := range m.view.Suggestions {
		if i == m.selected {
			b.WriteString(m.styles.selected.Render("› " + s))
		} else {
			b.WriteString(m.styles.item.Render(s))
		}
		b.WriteString("\n")
	}

	source := "history"
	if m.view.RemoteSuggestions {
		source = "remote"
	}
	remote := "on"
	if !m.view.SuggestionsEnabled {
		remote = "off"
	}
	b.WriteString(m.styles.status.Render(fmt.Sprintf("%s · showing %s · remote %s", m.view.State, source, remote)))
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("enter run · tab switch · ↑/↓ select · ctrl+t suggestions · esc cancel"))
	return b.String()
}

// wait returns a command that delivers the next value of ch. Nil channels
// yield a nil command.
func wait[T any](ctx context.Context, ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case v, ok := <-ch:
			if !ok {
				return nil
			}
			return wrap(v)
		case <-ctx.Done():
			return nil
		}
	}
}
