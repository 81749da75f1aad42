// Package ports defines the interfaces that connect the buffering engine to
// infrastructure adapters.
//
// Ports are the boundaries between the engine core and the outside world.
// They define what the engine needs from external systems without specifying
// how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [BatchSender]: Submits one batch request to the remote queue service
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The engine core (internal/buffer, internal/dispatch) depends only on these
// interfaces; internal/adapters provides concrete implementations. This
// separation enables testing the engine with mock transports and swapping
// the wire protocol without touching batching logic.
package ports
