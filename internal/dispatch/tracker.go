package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/pkg/log"
)

// SendFunc sends one chunk, returning nil on success or a terminal failure
// after retries are exhausted.
type SendFunc func(ctx context.Context, chunk *domain.Chunk) error

// Tracker runs chunk sends on a bounded worker pool and tracks their
// completion. Each submitted chunk becomes one task; a task leaves the
// outstanding set exactly once, when its send (including all retries)
// terminates. Terminal failures accumulate in an error list until the caller
// clears it.
type Tracker struct {
	send   SendFunc
	sem    *semaphore.Weighted
	logger log.Logger

	mu          sync.Mutex
	outstanding int
	drained     chan struct{} // created when work starts, closed at zero outstanding
	errs        []error
}

// NewTracker creates a tracker with at most workers concurrent sends.
// Submissions beyond the bound queue until a worker slot frees up.
func NewTracker(workers int, send SendFunc, logger log.Logger) *Tracker {
	return &Tracker{
		send:   send,
		sem:    semaphore.NewWeighted(int64(workers)),
		logger: logger,
	}
}

// Submit registers the chunk as outstanding and starts its send task. The
// task waits for a worker slot, runs the send, and on completion leaves the
// outstanding set, appending any terminal failure to the error list.
func (t *Tracker) Submit(ctx context.Context, chunk *domain.Chunk) {
	t.taskStarted()
	go func() {
		if err := t.sem.Acquire(ctx, 1); err != nil {
			t.taskDone(&domain.RequestError{Entries: chunk.Entries, Attempts: 0, Cause: err})
			return
		}
		defer t.sem.Release(1)
		t.taskDone(t.send(ctx, chunk))
	}()
}

// RecordFailure appends a terminal failure that did not go through a send
// task (e.g. a codec failure while packing). It surfaces at the next drain
// like any other failure.
func (t *Tracker) RecordFailure(err error) {
	t.mu.Lock()
	t.errs = append(t.errs, err)
	t.mu.Unlock()
}

// WaitForDrain blocks until no send task is outstanding, the timeout
// elapses, or the context is done. A timeout of zero or less means wait
// indefinitely.
//
// On timeout it returns domain.ErrDrainTimeout without disturbing
// outstanding tasks; they keep running and record their outcomes for a later
// wait to observe. On successful drain it returns a *domain.AggregateError
// when the error list is non-empty, nil otherwise. The error list is not
// cleared; use ClearErrors.
func (t *Tracker) WaitForDrain(ctx context.Context, timeout time.Duration) error {
	t.mu.Lock()
	ch := t.drained
	if t.outstanding == 0 {
		ch = nil
	}
	t.mu.Unlock()

	if ch != nil {
		var timeoutC <-chan time.Time
		if timeout > 0 {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			timeoutC = timer.C
		}
		select {
		case <-ch:
		case <-timeoutC:
			return domain.ErrDrainTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.errs) > 0 {
		return &domain.AggregateError{Errors: append([]error(nil), t.errs...)}
	}
	return nil
}

// ClearErrors empties the accumulated error list. Outstanding tasks are not
// affected.
func (t *Tracker) ClearErrors() {
	t.mu.Lock()
	t.errs = nil
	t.mu.Unlock()
}

// Outstanding returns the number of in-flight send tasks.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outstanding
}

func (t *Tracker) taskStarted() {
	t.mu.Lock()
	if t.outstanding == 0 {
		t.drained = make(chan struct{})
	}
	t.outstanding++
	t.mu.Unlock()
}

func (t *Tracker) taskDone(err error) {
	t.mu.Lock()
	if err != nil {
		t.errs = append(t.errs, err)
	}
	t.outstanding--
	if t.outstanding == 0 {
		close(t.drained)
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("send task failed", log.Err(err))
	}
}
