// Package buffer holds the producer-facing half of the engine: the pending
// message queue and the chunk builder that packs popped messages into
// batch-shaped chunks.
package buffer

import (
	"context"
	"sync"

	"github.com/bufq/bufq/internal/domain"
)

// Pending is a thread-safe FIFO of raw, not-yet-batched messages.
//
// When constructed with a positive capacity the queue is bounded and Push
// blocks at capacity (backpressure). Pop operations never block: draining is
// cooperative, so any number of goroutines can partition the drain work
// without external coordination.
type Pending struct {
	mu    sync.Mutex
	items []domain.Message

	// slots bounds the queue when non-nil: one token per queued message.
	slots chan struct{}
}

// NewPending creates a pending queue. A capacity of zero or less means
// unbounded.
func NewPending(capacity int) *Pending {
	p := &Pending{}
	if capacity > 0 {
		p.slots = make(chan struct{}, capacity)
	}
	return p
}

// Push appends a message. On a bounded queue it blocks until space is
// available or the context is done; on an unbounded queue it never blocks.
func (p *Pending) Push(ctx context.Context, msg domain.Message) error {
	if p.slots != nil {
		select {
		case p.slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	p.items = append(p.items, msg)
	p.mu.Unlock()
	return nil
}

// TryPop removes and returns the oldest message. It never blocks; the second
// return value is false when the queue is empty.
func (p *Pending) TryPop() (domain.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return domain.Message{}, false
	}
	msg := p.items[0]
	p.items = p.items[1:]
	p.release(1)
	return msg, true
}

// TryPopMany removes and returns up to n of the oldest messages, stopping
// early at emptiness. It never blocks.
func (p *Pending) TryPopMany(n int) []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 || n <= 0 {
		return nil
	}
	if n > len(p.items) {
		n = len(p.items)
	}
	msgs := make([]domain.Message, n)
	copy(msgs, p.items[:n])
	p.items = p.items[n:]
	p.release(n)
	return msgs
}

// Len returns the current queue length. Under concurrency the value may be
// stale by the time the caller acts on it; it is a flush-trigger heuristic,
// not a correctness guarantee.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// release frees n capacity tokens. Called with the mutex held; every queued
// item holds exactly one token, so the receives never block.
func (p *Pending) release(n int) {
	if p.slots == nil {
		return
	}
	for i := 0; i < n; i++ {
		<-p.slots
	}
}
