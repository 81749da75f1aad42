package dispatch

import (
	"context"

	"github.com/bufq/bufq/internal/buffer"
	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/pkg/log"
)

// Dispatcher drains the pending queue into the chunk builder and launches
// send tasks for every chunk that becomes sealed, guaranteeing eventual full
// drain of whatever was buffered when a flush was triggered.
type Dispatcher struct {
	pending   *buffer.Pending
	builder   *buffer.Builder
	tracker   *Tracker
	groupSize int // aggregation group size, 1 = no aggregation
	capacity  int // pending queue capacity, 0 = unbounded
	logger    log.Logger
}

// NewDispatcher wires the drain loop to its collaborators. groupSize below 1
// is treated as 1.
func NewDispatcher(pending *buffer.Pending, builder *buffer.Builder, tracker *Tracker, groupSize, capacity int, logger log.Logger) *Dispatcher {
	if groupSize < 1 {
		groupSize = 1
	}
	return &Dispatcher{
		pending:   pending,
		builder:   builder,
		tracker:   tracker,
		groupSize: groupSize,
		capacity:  capacity,
		logger:    logger,
	}
}

// FlushAsync drains the pending queue into the builder and submits every
// sealed chunk, then unconditionally submits whatever open chunk remains, at
// the cost of possibly sending an under-filled final batch.
//
// Safe to call redundantly and concurrently: each pop is atomic and
// exclusive per message, so concurrent callers simply partition the drain
// work. In aggregation mode only full groups are enveloped; a trailing
// partial group stays queued until enough messages arrive to complete it or
// a full group forms.
func (d *Dispatcher) FlushAsync(ctx context.Context) {
	for {
		if d.groupSize > 1 {
			if d.pending.Len() < d.groupSize {
				break
			}
			msgs := d.pending.TryPopMany(d.groupSize)
			if len(msgs) == 0 {
				break
			}
			if err := d.builder.AddAggregated(msgs); err != nil {
				d.dropMessages(err, len(msgs))
			}
		} else {
			msg, ok := d.pending.TryPop()
			if !ok {
				break
			}
			if err := d.builder.AddMessage(msg); err != nil {
				d.dropMessages(err, 1)
			}
		}

		for {
			chunk := d.builder.TakeSealed()
			if chunk == nil {
				break
			}
			d.submit(ctx, chunk)
		}
	}

	for {
		chunk := d.builder.TakeRemaining()
		if chunk == nil {
			break
		}
		d.submit(ctx, chunk)
	}
}

// NeedFlush reports whether a producer that just buffered a message should
// additionally trigger a flush. The check is approximate: queue length may
// be stale under concurrency. Correctness never depends on it, only liveness
// does.
func (d *Dispatcher) NeedFlush() bool {
	n := d.pending.Len()
	if d.capacity > 0 && n >= d.capacity {
		return true
	}
	return n >= domain.MaxChunkEntries*d.groupSize
}

func (d *Dispatcher) submit(ctx context.Context, chunk *domain.Chunk) {
	d.logger.Debug("submitting chunk",
		log.Int("entries", chunk.Len()),
		log.Int("bytes", chunk.TotalBytes))
	d.tracker.Submit(ctx, chunk)
}

// dropMessages records a packing failure. The messages are already popped
// and cannot be resubmitted; the failure surfaces at the next drain.
func (d *Dispatcher) dropMessages(err error, count int) {
	d.logger.Error("dropping messages: failed to pack",
		log.Int("messages", count),
		log.Err(err))
	d.tracker.RecordFailure(err)
}
