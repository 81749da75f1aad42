// Package codec defines the pluggable serialization strategy used to turn
// message bodies into bytes before they are packed into batch requests.
//
// The package holds an explicit process-wide default ([Default], replaceable
// via [SetDefault] before any client is constructed). Clients that are not
// given a codec explicitly fall back to it.
package codec

// Codec serializes a single message body to bytes.
type Codec interface {
	// Encode serializes one message body.
	Encode(v interface{}) ([]byte, error)

	// ContentType names the encoding for transport metadata.
	ContentType() string
}

// BatchEncoder is an optional codec capability: encoding a list of bodies as
// one combined envelope. Aggregation mode requires it; client construction
// fails when aggregation is configured with a codec lacking this capability.
type BatchEncoder interface {
	// EncodeBatch serializes a list of message bodies as a single envelope.
	EncodeBatch(vs []interface{}) ([]byte, error)
}

// defaultCodec is the process-wide fallback. Set once at startup if a
// different default is wanted; not synchronized.
var defaultCodec Codec = JSON{}

// Default returns the process-wide default codec.
func Default() Codec {
	return defaultCodec
}

// SetDefault replaces the process-wide default codec. Call before
// constructing clients; changing it afterwards does not affect them.
func SetDefault(c Codec) {
	defaultCodec = c
}
