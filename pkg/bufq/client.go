package bufq

import (
	"context"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/bufq/bufq/internal/adapters/http"
	"github.com/bufq/bufq/internal/buffer"
	"github.com/bufq/bufq/internal/dispatch"
	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/pkg/codec"
	"github.com/bufq/bufq/pkg/log"
)

// Client is a buffering producer for a batch-oriented queue service.
//
// Producers submit messages one at a time with Send; the client accumulates
// them, packs them into count- and size-bounded batches, and dispatches the
// batches on a bounded worker pool, retrying partial failures. Terminal
// failures accumulate and surface in aggregate at the next Flush or
// WaitForDrain, never at the Send call site.
type Client struct {
	cfg        Config
	pending    *buffer.Pending
	builder    *buffer.Builder
	tracker    *dispatch.Tracker
	dispatcher *dispatch.Dispatcher
	logger     log.Logger
}

// New creates a client with the given configuration. Returns an error
// wrapping ErrInvalidConfig for invalid settings and ErrCodecNotBatchable
// when aggregation is configured with a codec that cannot encode envelopes.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	cdc := o.codec
	if cdc == nil {
		cdc = codec.Default()
	}

	if cfg.AggregationGroupSize > 1 {
		if _, ok := cdc.(codec.BatchEncoder); !ok {
			return nil, fmt.Errorf("%w: aggregation group size %d configured",
				domain.ErrCodecNotBatchable, cfg.AggregationGroupSize)
		}
	}

	transport := o.transport
	if transport == nil {
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("%w: service URL is required without a custom transport",
				domain.ErrInvalidConfig)
		}
		client := o.httpClient
		if client == nil {
			client = &http.Client{Timeout: cfg.HTTPTimeout}
		}
		transport = httpAdapter.NewBatchSender(client, cfg.ServiceURL, cfg.AuthKey, logger)
	}

	pending := buffer.NewPending(cfg.BufferCapacity)
	builder := buffer.NewBuilder(cdc)
	retrier := dispatch.NewRetrier(transport, cfg.QueueURL, cfg.RetryLimit, cfg.RetryDelay, logger)
	tracker := dispatch.NewTracker(cfg.WorkerCount, retrier.SendChunk, logger)
	dispatcher := dispatch.NewDispatcher(pending, builder, tracker,
		cfg.AggregationGroupSize, cfg.BufferCapacity, logger)

	return &Client{
		cfg:        cfg,
		pending:    pending,
		builder:    builder,
		tracker:    tracker,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Send buffers one message. It returns quickly: the message is pushed to the
// pending queue and, when enough messages have accumulated, a flush is
// triggered whose sends run in the background. Send blocks only on a
// capacity-bounded client at capacity, honoring ctx while waiting.
//
// Send never reports delivery failures; call Flush or WaitForDrain to
// observe them.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if err := c.pending.Push(ctx, msg); err != nil {
		return err
	}
	if c.dispatcher.NeedFlush() {
		c.FlushAsync()
	}
	return nil
}

// FlushAsync drains the pending queue into batches and dispatches them in
// the background. Safe to call redundantly and concurrently.
func (c *Client) FlushAsync() {
	// Background context: in-flight sends outlive the triggering caller and
	// are never cancelled mid-flight.
	c.dispatcher.FlushAsync(context.Background())
}

// Flush dispatches everything buffered and blocks until all outstanding
// sends finish or the timeout elapses. A timeout of zero or less waits
// indefinitely.
//
// Returns ErrDrainTimeout on timeout, an *AggregateError when terminal
// failures accumulated since the last ClearErrors, nil otherwise.
func (c *Client) Flush(ctx context.Context, timeout time.Duration) error {
	c.FlushAsync()
	return c.WaitForDrain(ctx, timeout)
}

// WaitForDrain blocks until no send task is outstanding or the timeout
// elapses. On timeout the outstanding tasks keep running in the background;
// their outcomes are observed by a later call. Error semantics match Flush.
func (c *Client) WaitForDrain(ctx context.Context, timeout time.Duration) error {
	return c.tracker.WaitForDrain(ctx, timeout)
}

// ClearErrors empties the accumulated failure list, giving the next flush
// cycle a clean slate. Outstanding sends are not affected.
func (c *Client) ClearErrors() {
	c.tracker.ClearErrors()
}

// Pending returns the number of buffered, not-yet-batched messages. The
// value may be stale under concurrency.
func (c *Client) Pending() int {
	return c.pending.Len()
}

// Outstanding returns the number of in-flight send tasks.
func (c *Client) Outstanding() int {
	return c.tracker.Outstanding()
}
