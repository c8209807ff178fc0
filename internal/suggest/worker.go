// Package suggest fetches remote completions for the argument field off the
// control goroutine.
package suggest

import (
	"context"
	"errors"
	"sync"

	"github.com/berrythewa/quicklaunch/internal/types"
	"go.uber.org/zap"
)

// Cancellation causes attached to fetch contexts
var (
	errSuperseded = errors.New("superseded by a newer request")
	errAborted    = errors.New("aborted")
	errStopped    = errors.New("worker stopped")
)

// Fetcher retrieves suggestions for a single request
type Fetcher interface {
	Fetch(ctx context.Context, req types.QueryRequest) ([]string, error)
}

// command is a request for the worker loop. A nil req means abort.
type command struct {
	req *types.QueryRequest
}

// Worker runs at most one live fetch at a time. Results are tagged with the
// generation of the request that produced them and are never filtered here.
type Worker struct {
	fetcher Fetcher
	logger  *zap.Logger

	cmds    chan command
	results chan types.SuggestionResult

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWorker creates a worker that uses fetcher for every request
func NewWorker(fetcher Fetcher, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		fetcher: fetcher,
		logger:  logger,
		cmds:    make(chan command, 16),
		results: make(chan types.SuggestionResult, 16),
		done:    make(chan struct{}),
	}
}

// Results delivers the outcome of every fetch that was not aborted
func (w *Worker) Results() <-chan types.SuggestionResult {
	return w.results
}

// Start launches the worker loop. Calling Start more than once has no effect.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels every fetch and waits until all worker goroutines have returned
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.done)
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Debug("Suggestion worker stopped")
}

// Submit replaces the in-flight fetch, if any, with a fetch for req
func (w *Worker) Submit(req types.QueryRequest) {
	w.send(command{req: &req})
}

// Abort cancels the in-flight fetch without producing a result.
// It is a no-op when nothing is in flight.
func (w *Worker) Abort() {
	w.send(command{})
}

func (w *Worker) send(cmd command) {
	select {
	case w.cmds <- cmd:
	case <-w.done:
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	var cancelFetch context.CancelCauseFunc
	for {
		select {
		case <-ctx.Done():
			if cancelFetch != nil {
				cancelFetch(errStopped)
			}
			return

		case cmd := <-w.cmds:
			if cancelFetch != nil {
				if cmd.req == nil {
					cancelFetch(errAborted)
				} else {
					cancelFetch(errSuperseded)
				}
				cancelFetch = nil
			}
			if cmd.req == nil {
				continue
			}

			fetchCtx, cancel := context.WithCancelCause(ctx)
			cancelFetch = cancel
			w.wg.Add(1)
			go w.fetch(ctx, fetchCtx, *cmd.req)
		}
	}
}

func (w *Worker) fetch(workerCtx, ctx context.Context, req types.QueryRequest) {
	defer w.wg.Done()

	items, err := w.fetcher.Fetch(ctx, req)

	cause := context.Cause(ctx)
	if errors.Is(cause, errAborted) || workerCtx.Err() != nil {
		w.logger.Debug("Dropping aborted fetch",
			zap.Uint64("generation", req.Generation),
			zap.NamedError("cause", cause))
		return
	}

	if err != nil {
		if errors.Is(cause, errSuperseded) {
			w.logger.Debug("Fetch superseded", zap.Uint64("generation", req.Generation))
		} else {
			w.logger.Warn("Suggestion fetch failed",
				zap.Uint64("generation", req.Generation),
				zap.Error(err))
		}
		items = nil
	}

	select {
	case w.results <- types.SuggestionResult{Items: items, Generation: req.Generation}:
	case <-workerCtx.Done():
	}
}
