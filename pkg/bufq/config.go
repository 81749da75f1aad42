package bufq

import (
	"fmt"
	"time"

	"github.com/bufq/bufq/internal/domain"
)

// Default configuration values.
const (
	DefaultWorkerCount = 32
	DefaultRetryLimit  = 5
	DefaultRetryDelay  = 100 * time.Millisecond
	DefaultHTTPTimeout = 30 * time.Second
)

// Config holds the configuration for a buffered queue client.
// Use SetDefaults() to fill unset fields, then Validate().
type Config struct {
	// QueueURL identifies the target queue. Required.
	QueueURL string

	// ServiceURL is the base URL of the queue service. Required unless a
	// custom transport is injected with WithTransport.
	ServiceURL string

	// AuthKey is the API authentication key sent by the default transport.
	AuthKey string

	// WorkerCount bounds the number of concurrent batch sends.
	WorkerCount int

	// RetryLimit is the number of additional send attempts after the first
	// before a failure becomes terminal.
	RetryLimit int

	// RetryDelay seeds the exponential backoff between retry attempts.
	// Zero retries immediately; the CLI defaults it to DefaultRetryDelay.
	RetryDelay time.Duration

	// BufferCapacity bounds the pending queue when positive; Send then
	// blocks at capacity. Zero means unbounded.
	BufferCapacity int

	// AggregationGroupSize enables aggregation mode when greater than one:
	// groups of this many message bodies are encoded as one envelope entry.
	// Requires a codec that supports batch encoding.
	AggregationGroupSize int

	// HTTPTimeout is the per-request timeout of the default transport.
	HTTPTimeout time.Duration
}

// SetDefaults fills unset fields with default values.
func (c *Config) SetDefaults() {
	if c.WorkerCount == 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.RetryLimit == 0 {
		c.RetryLimit = DefaultRetryLimit
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.AggregationGroupSize == 0 {
		c.AggregationGroupSize = 1
	}

	// Strip a trailing slash so endpoint paths concatenate cleanly.
	if n := len(c.ServiceURL); n > 0 && c.ServiceURL[n-1] == '/' {
		c.ServiceURL = c.ServiceURL[:n-1]
	}
}

// Validate checks the configuration for errors. Call SetDefaults first.
func (c *Config) Validate() error {
	if c.QueueURL == "" {
		return fmt.Errorf("%w: queue URL is required", domain.ErrInvalidConfig)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker count must be positive", domain.ErrInvalidConfig)
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("%w: retry limit must not be negative", domain.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", domain.ErrInvalidConfig)
	}
	if c.BufferCapacity < 0 {
		return fmt.Errorf("%w: buffer capacity must not be negative", domain.ErrInvalidConfig)
	}
	if c.AggregationGroupSize < 1 {
		return fmt.Errorf("%w: aggregation group size must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
