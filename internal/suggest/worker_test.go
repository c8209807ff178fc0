package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/berrythewa/quicklaunch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// gatedFetcher blocks every fetch until the test releases its generation.
// With ignoreCancel set a fetch keeps waiting for its gate after cancellation,
// like a slow server that answers anyway.
type gatedFetcher struct {
	mu           sync.Mutex
	gates        map[uint64]chan []string
	started      chan uint64
	ignoreCancel bool
	err          error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates:   make(map[uint64]chan []string),
		started: make(chan uint64, 16),
	}
}

func (f *gatedFetcher) gate(gen uint64) chan []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[gen]
	if !ok {
		g = make(chan []string, 1)
		f.gates[gen] = g
	}
	return g
}

func (f *gatedFetcher) release(gen uint64, items ...string) {
	f.gate(gen) <- items
}

func (f *gatedFetcher) Fetch(ctx context.Context, req types.QueryRequest) ([]string, error) {
	f.started <- req.Generation
	gate := f.gate(req.Generation)

	if f.ignoreCancel {
		return <-gate, f.err
	}
	select {
	case items := <-gate:
		return items, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// verifyNoLeaks runs after every cleanup registered later in the test
func verifyNoLeaks(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, opt) })
}

func startWorker(t *testing.T, f Fetcher) *Worker {
	t.Helper()
	w := NewWorker(f, nil)
	w.Start(context.Background())
	t.Cleanup(w.Stop)
	return w
}

func waitStarted(t *testing.T, f *gatedFetcher, gen uint64) {
	t.Helper()
	select {
	case got := <-f.started:
		require.Equal(t, gen, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch for generation %d never started", gen)
	}
}

func nextResult(t *testing.T, w *Worker) types.SuggestionResult {
	t.Helper()
	select {
	case r := <-w.Results():
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result")
		return types.SuggestionResult{}
	}
}

func assertNoResult(t *testing.T, w *Worker) {
	t.Helper()
	select {
	case r := <-w.Results():
		t.Fatalf("unexpected result %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWorkerDeliversResult(t *testing.T) {
	verifyNoLeaks(t)

	f := newGatedFetcher()
	w := startWorker(t, f)

	w.Submit(types.QueryRequest{Query: "q", Argument: "cats", Generation: 1})
	waitStarted(t, f, 1)
	f.release(1, "cats", "catsx")

	r := nextResult(t, w)
	assert.Equal(t, uint64(1), r.Generation)
	assert.Equal(t, []string{"cats", "catsx"}, r.Items)
}

func TestWorkerSupersededFetchStillEmits(t *testing.T) {
	verifyNoLeaks(t)

	f := newGatedFetcher()
	w := startWorker(t, f)

	w.Submit(types.QueryRequest{Generation: 1})
	waitStarted(t, f, 1)
	w.Submit(types.QueryRequest{Generation: 2})
	waitStarted(t, f, 2)

	r := nextResult(t, w)
	assert.Equal(t, uint64(1), r.Generation)
	assert.Nil(t, r.Items)

	f.release(2, "fresh")
	r = nextResult(t, w)
	assert.Equal(t, uint64(2), r.Generation)
	assert.Equal(t, []string{"fresh"}, r.Items)
}

func TestWorkerAbortThenSubmit(t *testing.T) {
	verifyNoLeaks(t)

	f := newGatedFetcher()
	f.ignoreCancel = true
	w := startWorker(t, f)

	w.Submit(types.QueryRequest{Generation: 1})
	waitStarted(t, f, 1)
	w.Abort()
	w.Submit(types.QueryRequest{Generation: 2})
	waitStarted(t, f, 2)

	// The aborted fetch answers late with data; it must never be delivered
	f.release(1, "stale")
	f.release(2, "fresh")

	r := nextResult(t, w)
	assert.Equal(t, uint64(2), r.Generation)
	assert.Equal(t, []string{"fresh"}, r.Items)
	assertNoResult(t, w)
}

func TestWorkerAbortWhenIdle(t *testing.T) {
	verifyNoLeaks(t)

	f := newGatedFetcher()
	w := startWorker(t, f)

	w.Abort()
	w.Abort()
	assertNoResult(t, w)

	w.Submit(types.QueryRequest{Generation: 7})
	waitStarted(t, f, 7)
	f.release(7, "x")
	assert.Equal(t, uint64(7), nextResult(t, w).Generation)

	// Aborting after the fetch completed changes nothing
	w.Abort()
	assertNoResult(t, w)
}

func TestWorkerFetchErrorBecomesEmptyResult(t *testing.T) {
	verifyNoLeaks(t)

	f := newGatedFetcher()
	f.err = errors.New("boom")
	w := startWorker(t, f)

	w.Submit(types.QueryRequest{Generation: 3})
	waitStarted(t, f, 3)
	f.release(3, "ignored")

	r := nextResult(t, w)
	assert.Equal(t, uint64(3), r.Generation)
	assert.Nil(t, r.Items)
}

// Only the last of a burst of requests matters once the orchestrator filters
// by generation; every earlier fetch is cancelled before it can answer.
func TestWorkerBurstOfSubmits(t *testing.T) {
	verifyNoLeaks(t)

	f := newGatedFetcher()
	w := startWorker(t, f)

	for gen := uint64(1); gen <= 5; gen++ {
		w.Submit(types.QueryRequest{Generation: gen})
		waitStarted(t, f, gen)
	}
	f.release(5, "last")

	var last types.SuggestionResult
	for i := 0; i < 5; i++ {
		r := nextResult(t, w)
		if r.Generation == 5 {
			last = r
		} else {
			assert.Nil(t, r.Items, "superseded generation %d carried items", r.Generation)
		}
	}
	assert.Equal(t, []string{"last"}, last.Items)
}

func TestWorkerStopWaitsForFetches(t *testing.T) {
	verifyNoLeaks(t)

	f := newGatedFetcher()
	w := NewWorker(f, nil)
	w.Start(context.Background())

	w.Submit(types.QueryRequest{Generation: 1})
	waitStarted(t, f, 1)

	w.Stop()
	w.Stop()

	// Commands after Stop must not block
	w.Submit(types.QueryRequest{Generation: 2})
	w.Abort()
}
