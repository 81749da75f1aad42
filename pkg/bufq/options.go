package bufq

import (
	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/internal/ports"
	"github.com/bufq/bufq/pkg/codec"
	"github.com/bufq/bufq/pkg/log"
)

// Re-exported engine types, so callers never import internal packages.
type (
	// Message is a logical message: a body plus optional typed attributes.
	Message = domain.Message

	// Attribute is a typed metadata value attached to a message.
	Attribute = domain.Attribute

	// Entry is a serialized message as it appears in terminal failures.
	Entry = domain.Entry

	// EntryFailure describes one entry rejected by the remote service.
	EntryFailure = domain.EntryFailure

	// BatchError is a terminal failure with specific entries still rejected
	// after retries were exhausted.
	BatchError = domain.BatchError

	// RequestError is a terminal transport-level failure after retries were
	// exhausted.
	RequestError = domain.RequestError

	// AggregateError wraps the terminal failures surfaced by a drain.
	AggregateError = domain.AggregateError

	// BatchSender is the transport contract: submit up to 10 entries and
	// report per-entry failures. Inject a custom one with WithTransport.
	BatchSender = ports.BatchSender

	// RequestEntry is an entry with its batch-local id for one RPC attempt.
	RequestEntry = ports.RequestEntry

	// FailedEntry reports one rejected entry by batch-local id.
	FailedEntry = ports.FailedEntry

	// BatchResult is the application-level outcome of one batch request.
	BatchResult = ports.BatchResult

	// HTTPClient abstracts the HTTP client used by the default transport.
	HTTPClient = ports.HTTPClient

	// Logger is the structured logging contract. Inject one with WithLogger.
	Logger = log.Logger

	// LogField is a typed key/value pair attached to a log record.
	LogField = log.Field
)

// Sentinel errors, re-exported for errors.Is checks.
var (
	ErrInvalidConfig     = domain.ErrInvalidConfig
	ErrCodecNotBatchable = domain.ErrCodecNotBatchable
	ErrDrainTimeout      = domain.ErrDrainTimeout
)

// Option configures optional behavior of a Client.
type Option func(*options)

// options holds the optional dependencies of a Client.
type options struct {
	httpClient ports.HTTPClient
	transport  ports.BatchSender
	logger     log.Logger
	codec      codec.Codec
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		codec:  codec.Default(),
	}
}

// WithHTTPClient sets a custom HTTP client for the default transport.
// Ignored when WithTransport is also given.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTransport replaces the default HTTP transport with a custom
// batch-send implementation.
func WithTransport(t BatchSender) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCodec sets the codec used to serialize message bodies. If not
// provided, the process-wide default (codec.Default) is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}
