package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the public API. Check with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("bufq: invalid configuration")

	// ErrCodecNotBatchable is returned when aggregation mode is requested
	// with a codec that cannot encode a list of bodies as one envelope.
	ErrCodecNotBatchable = errors.New("bufq: codec does not support batch encoding")

	// ErrDrainTimeout is returned when a drain wait deadline elapses before
	// all outstanding sends finish. Outstanding sends keep running.
	ErrDrainTimeout = errors.New("bufq: drain timeout")
)

// EntryFailure describes one entry rejected by the remote service.
type EntryFailure struct {
	// Entry is the rejected entry.
	Entry Entry

	// Code is the service-assigned failure code.
	Code string

	// Message is the human-readable failure reason.
	Message string

	// SenderFault is true when the service attributes the failure to the
	// request rather than to the service itself.
	SenderFault bool
}

// BatchError is a terminal failure: retries were exhausted with specific
// entries still rejected by the remote service. It carries exactly the
// entries that were still failing on the last attempt.
type BatchError struct {
	Failures []EntryFailure
	Attempts int
}

func (e *BatchError) Error() string {
	codes := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		codes = append(codes, f.Code)
	}
	return fmt.Sprintf("bufq: %d entries still failing after %d attempts (%s)",
		len(e.Failures), e.Attempts, strings.Join(codes, ", "))
}

// RequestError is a terminal failure: retries were exhausted after
// transport-level failures. The whole entry set never got a batch response.
type RequestError struct {
	Entries  []Entry
	Attempts int
	Cause    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("bufq: batch request failed after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// AggregateError wraps one or more terminal send failures accumulated since
// the last ClearErrors, surfaced by WaitForDrain or Flush.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("bufq: 1 send failed: %v", e.Errors[0])
	}
	return fmt.Sprintf("bufq: %d sends failed, first: %v", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the wrapped failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}
