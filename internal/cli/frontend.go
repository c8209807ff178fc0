package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/berrythewa/quicklaunch/internal/gui"
	"github.com/berrythewa/quicklaunch/internal/launcher"
	"github.com/berrythewa/quicklaunch/internal/tui"
)

// runFrontend drives o with the named frontend on the calling goroutine
func runFrontend(ctx context.Context, name string, o *launcher.Orchestrator, src launcher.Sources) (int, error) {
	logger.Debug("Starting frontend", zap.String("frontend", name))
	switch name {
	case "gui":
		return gui.Run(ctx, o, src, logger)
	case "line":
		return runLine(ctx, o, src, os.Stdin, os.Stdout)
	default:
		return tui.Run(ctx, o, src, logger)
	}
}

// runLine reads commands such as "target g", "arg cats" and "exec" from in
// and prints the session to out after every change
func runLine(ctx context.Context, o *launcher.Orchestrator, src launcher.Sources, in io.Reader, out io.Writer) (int, error) {
	inputs := make(chan launcher.Input)
	go readInputs(ctx, in, out, inputs)
	src.Inputs = inputs

	printView(out, o.Snapshot())
	return launcher.Loop(ctx, o, src, func(v launcher.View) {
		printView(out, v)
	})
}

// readInputs parses lines from in until EOF, which closes inputs
func readInputs(ctx context.Context, in io.Reader, out io.Writer, inputs chan<- launcher.Input) {
	defer close(inputs)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		input, err := launcher.ParseInput(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		select {
		case inputs <- input:
		case <-ctx.Done():
			return
		}
	}
}

func printView(out io.Writer, v launcher.View) {
	if v.State == launcher.StateTerminated {
		return
	}
	fmt.Fprintf(out, "[%s] target=%q argument=%q", v.State, v.TargetText, v.Argument)
	if !v.ArgumentEnabled {
		fmt.Fprint(out, " (no target)")
	}
	fmt.Fprintln(out)
	for _, s := range v.Suggestions {
		fmt.Fprintf(out, "  %s\n", s)
	}
}
