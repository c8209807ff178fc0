package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/berrythewa/quicklaunch/internal/types"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher reloads the target list when the config file changes on disk.
// The parent directory is watched rather than the file itself so editors that
// replace the file through a rename are still seen.
type Watcher struct {
	path     string
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	updates  chan []types.Target

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the config file at path
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		path:     filepath.Clean(path),
		logger:   logger,
		debounce: defaultDebounce,
		watcher:  w,
		updates:  make(chan []types.Target, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Updates delivers the freshly loaded target list after each valid change.
// Only the newest list is kept when the consumer lags behind.
func (w *Watcher) Updates() <-chan []types.Target {
	return w.updates
}

// Start begins watching in a background goroutine
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	go w.loop(ctx)
}

// Stop stops the watcher and waits for the loop to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("Failed to read changed config", zap.String("path", w.path), zap.Error(err))
		return
	}
	cfg, err := Parse(data)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.logger.Warn("Ignoring invalid config change", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.logger.Info("Config reloaded", zap.Int("targets", len(cfg.Targets)))

	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg.Targets
}
