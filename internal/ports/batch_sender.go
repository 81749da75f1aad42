package ports

import (
	"context"

	"github.com/bufq/bufq/internal/domain"
)

// RequestEntry is an entry annotated with its batch-local id for one RPC
// attempt. Ids are the string form of the entry's 0-based position within
// the request and are reassigned fresh on every retry attempt; they are
// never globally unique.
type RequestEntry struct {
	ID    string
	Entry domain.Entry
}

// FailedEntry reports one entry the service rejected, identified by its
// batch-local id within the request it belonged to.
type FailedEntry struct {
	ID          string
	Code        string
	Message     string
	SenderFault bool
}

// BatchResult is the application-level outcome of one batch request. An
// empty Failed list means every entry was accepted.
type BatchResult struct {
	Failed []FailedEntry
}

// BatchSender submits one batch request (at most 10 entries, 256KiB
// combined) to the remote queue service.
//
// Transport-level failures (connection refused, non-2xx status, malformed
// response) surface as a non-nil error; per-entry rejections surface in
// BatchResult.Failed with a nil error. The engine retries both cases
// itself, so implementations must not retry internally.
type BatchSender interface {
	SendBatch(ctx context.Context, queueURL string, entries []RequestEntry) (BatchResult, error)
}
