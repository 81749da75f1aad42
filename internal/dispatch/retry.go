// Package dispatch contains the asynchronous half of the engine: draining
// the pending queue into the chunk builder, sending sealed chunks on a
// bounded worker pool, retrying partial failures, and tracking completion.
package dispatch

import (
	"context"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/internal/ports"
	"github.com/bufq/bufq/pkg/log"
)

// Retrier executes the batch RPC for one chunk, resubmitting only the failed
// subset until it succeeds or the retry limit is exhausted.
type Retrier struct {
	transport  ports.BatchSender
	queueURL   string
	retryLimit int
	retryDelay time.Duration
	logger     log.Logger
}

// NewRetrier creates a retrier. retryLimit is the number of additional
// attempts after the first; retryDelay seeds the exponential backoff between
// attempts, zero means retry immediately.
func NewRetrier(transport ports.BatchSender, queueURL string, retryLimit int, retryDelay time.Duration, logger log.Logger) *Retrier {
	return &Retrier{
		transport:  transport,
		queueURL:   queueURL,
		retryLimit: retryLimit,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// SendChunk sends the chunk's entries, retrying transport failures with the
// full entry set and per-entry failures with only the still-failing subset.
// Ids are reassigned fresh 0-based positions on every attempt. Entries that
// succeeded on an earlier attempt are never resubmitted.
//
// Returns nil on success, *domain.RequestError when transport failures
// exhaust the retry limit, *domain.BatchError when specific entries are
// still rejected after the retry limit.
func (r *Retrier) SendChunk(ctx context.Context, chunk *domain.Chunk) error {
	entries := chunk.Entries
	bo := r.newBackOff()

	for attempt := 0; ; attempt++ {
		req := make([]ports.RequestEntry, len(entries))
		for i, e := range entries {
			req[i] = ports.RequestEntry{ID: strconv.Itoa(i), Entry: e}
		}

		res, err := r.transport.SendBatch(ctx, r.queueURL, req)
		if err != nil {
			if attempt >= r.retryLimit {
				return &domain.RequestError{Entries: entries, Attempts: attempt + 1, Cause: err}
			}
			r.logger.Warn("batch request failed, retrying",
				log.Int("attempt", attempt+1),
				log.Int("entries", len(entries)),
				log.Err(err))
			if werr := r.wait(ctx, bo); werr != nil {
				return &domain.RequestError{Entries: entries, Attempts: attempt + 1, Cause: werr}
			}
			continue
		}

		if len(res.Failed) == 0 {
			return nil
		}

		// Look the failed ids up in this attempt's entry slice. Ids are
		// positional within the request just sent.
		subset := make([]domain.Entry, 0, len(res.Failed))
		failures := make([]domain.EntryFailure, 0, len(res.Failed))
		for _, f := range res.Failed {
			i, convErr := strconv.Atoi(f.ID)
			if convErr != nil || i < 0 || i >= len(entries) {
				r.logger.Warn("service reported unknown entry id", log.String("id", f.ID))
				continue
			}
			subset = append(subset, entries[i])
			failures = append(failures, domain.EntryFailure{
				Entry:       entries[i],
				Code:        f.Code,
				Message:     f.Message,
				SenderFault: f.SenderFault,
			})
		}
		if len(subset) == 0 {
			return nil
		}

		if attempt >= r.retryLimit {
			return &domain.BatchError{Failures: failures, Attempts: attempt + 1}
		}

		r.logger.Debug("resubmitting failed entries",
			log.Int("attempt", attempt+1),
			log.Int("failed", len(subset)),
			log.Int("sent", len(entries)))
		entries = subset

		if werr := r.wait(ctx, bo); werr != nil {
			return &domain.RequestError{Entries: entries, Attempts: attempt + 1, Cause: werr}
		}
	}
}

// newBackOff builds the inter-attempt backoff, or nil when retries are
// immediate.
func (r *Retrier) newBackOff() backoff.BackOff {
	if r.retryDelay <= 0 {
		return nil
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.retryDelay
	eb.MaxElapsedTime = 0
	return eb
}

// wait sleeps for the next backoff interval, honoring context cancellation.
func (r *Retrier) wait(ctx context.Context, bo backoff.BackOff) error {
	if bo == nil {
		return ctx.Err()
	}
	select {
	case <-time.After(bo.NextBackOff()):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
