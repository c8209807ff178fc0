package launcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/berrythewa/quicklaunch/internal/types"
)

// InputKind identifies a frontend action
type InputKind int

const (
	InputTarget InputKind = iota
	InputArgument
	InputSelect
	InputToggle
	InputExecute
	InputCancel
)

// Input is a single frontend action. Text is used by target, argument and
// select inputs.
type Input struct {
	Kind InputKind
	Text string
}

var inputCommands = map[string]InputKind{
	"target": InputTarget,
	"arg":    InputArgument,
	"select": InputSelect,
	"toggle": InputToggle,
	"exec":   InputExecute,
	"cancel": InputCancel,
}

// ParseInput reads a line frontend command such as "target g" or "exec"
func ParseInput(line string) (Input, error) {
	line = strings.TrimRight(line, "\r\n")
	name, text, _ := strings.Cut(strings.TrimLeft(line, " \t"), " ")
	kind, ok := inputCommands[strings.ToLower(name)]
	if !ok {
		return Input{}, fmt.Errorf("unknown command %q", name)
	}
	switch kind {
	case InputTarget, InputArgument, InputSelect:
		return Input{Kind: kind, Text: text}, nil
	default:
		return Input{Kind: kind}, nil
	}
}

// Sources are the event streams drained by Loop. Nil channels are ignored.
type Sources struct {
	Activations <-chan types.ActivationMessage
	Results     <-chan types.SuggestionResult
	Inputs      <-chan Input
	Targets     <-chan []types.Target
}

// Loop drives o from src on the calling goroutine until o terminates or ctx
// is done. onChange, when set, receives a snapshot after every event that may
// have changed the session. A closed Inputs channel cancels the session.
func Loop(ctx context.Context, o *Orchestrator, src Sources, onChange func(View)) (int, error) {
	inputs := src.Inputs
	notify := func() {
		if onChange != nil {
			onChange(o.Snapshot())
		}
	}

	for {
		select {
		case <-o.Done():
			return o.ExitCode(), nil
		default:
		}

		select {
		case <-ctx.Done():
			return o.ExitCode(), ctx.Err()

		case <-o.Done():
			return o.ExitCode(), nil

		case msg := <-src.Activations:
			o.Activate(msg.Target)
			notify()

		case r := <-src.Results:
			if o.OnSuggestionResult(r) {
				notify()
			}

		case targets := <-src.Targets:
			o.SetTargets(targets)
			notify()

		case in, ok := <-inputs:
			if !ok {
				inputs = nil
				o.Cancel()
				continue
			}
			o.Apply(in)
			notify()
		}
	}
}
