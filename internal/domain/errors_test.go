package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestBatchError_Error(t *testing.T) {
	err := &BatchError{
		Failures: []EntryFailure{
			{Code: "ThrottlingException"},
			{Code: "InternalError"},
		},
		Attempts: 6,
	}

	msg := err.Error()
	if !strings.Contains(msg, "2 entries") {
		t.Errorf("message %q does not mention entry count", msg)
	}
	if !strings.Contains(msg, "ThrottlingException") {
		t.Errorf("message %q does not carry failure codes", msg)
	}
}

func TestRequestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RequestError{Attempts: 3, Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestAggregateError_Unwrap(t *testing.T) {
	batch := &BatchError{Attempts: 1}
	agg := &AggregateError{Errors: []error{batch, errors.New("other")}}

	var be *BatchError
	if !errors.As(agg, &be) {
		t.Fatal("errors.As did not find the wrapped BatchError")
	}
	if be != batch {
		t.Error("errors.As found a different BatchError")
	}
}
