package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/quicklaunch/internal/launcher"
	"github.com/berrythewa/quicklaunch/internal/types"
)

type nopWorker struct{}

func (nopWorker) Submit(types.QueryRequest) {}
func (nopWorker) Abort()                    {}

type memLastUsed struct{ target, argument string }

func (m *memLastUsed) LoadLast() (string, string, error) { return m.target, m.argument, nil }
func (m *memLastUsed) SaveLast(target, argument string) error {
	m.target, m.argument = target, argument
	return nil
}

type nopHistory struct{}

func (nopHistory) Load(string) []string           { return nil }
func (nopHistory) RecordUse(string, string) error { return nil }

type recordingExecutor struct{ urls, commands []string }

func (e *recordingExecutor) OpenURL(url string) error {
	e.urls = append(e.urls, url)
	return nil
}

func (e *recordingExecutor) SpawnDetached(command string) error {
	e.commands = append(e.commands, command)
	return nil
}

func newLineSession() (*launcher.Orchestrator, *memLastUsed, *recordingExecutor) {
	last := &memLastUsed{}
	exec := &recordingExecutor{}
	o := launcher.New(launcher.Options{
		Targets: []types.Target{
			{Name: "g", Query: "https://example.com/search?q={}"},
			{Name: "man", Command: "x-terminal-emulator -e man"},
		},
		Worker:   nopWorker{},
		LastUsed: last,
		History:  nopHistory{},
		Executor: exec,
	})
	o.Activate("")
	return o, last, exec
}

func TestRunLineExecutes(t *testing.T) {
	o, last, exec := newLineSession()
	in := strings.NewReader("bogus\ntarget man\narg ls\nexec\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, err := runLine(ctx, o, launcher.Sources{}, in, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.Equal(t, []string{"x-terminal-emulator -e man ls"}, exec.commands)
	assert.Equal(t, "man", last.target)
	assert.Equal(t, "ls", last.argument)
	assert.Contains(t, out.String(), `error: unknown command "bogus"`)
	assert.Contains(t, out.String(), `[argument-entry] target="man" argument="ls"`)
}

func TestRunLineEOFCancels(t *testing.T) {
	o, last, exec := newLineSession()
	in := strings.NewReader("target g\narg cats\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, err := runLine(ctx, o, launcher.Sources{}, in, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, launcher.StateTerminated, o.State())
	assert.Empty(t, exec.urls)
	assert.Empty(t, last.target)
}
