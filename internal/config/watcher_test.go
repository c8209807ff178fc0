package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcherReloadsTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  - name: a\n"), 0644))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// An invalid edit is ignored
	require.NoError(t, os.WriteFile(path, []byte("targets: ["), 0644))
	select {
	case targets := <-w.Updates():
		t.Fatalf("unexpected update for invalid config: %+v", targets)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("targets:\n  - name: a\n  - name: b\n    command: echo\n"), 0644))

	select {
	case targets := <-w.Updates():
		require.Len(t, targets, 2)
		assert.Equal(t, "b", targets[1].Name)
		assert.Equal(t, "echo", targets[1].Command)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  - name: a\n"), 0644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("targets:\n  - name: z\n"), 0644))

	select {
	case targets := <-w.Updates():
		t.Fatalf("unexpected update: %+v", targets)
	case <-time.After(200 * time.Millisecond):
	}
}
