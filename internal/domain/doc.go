// Package domain contains the core domain entities and value objects for bufq.
//
// This package represents the innermost layer of the architecture. It has
// no dependencies on infrastructure concerns (HTTP, serialization libraries,
// logging) and contains only pure business logic.
//
// # Entities
//
//   - [Message]: A logical message as submitted by a producer (body + attributes)
//   - [Entry]: A serialized message ready to be placed in a batch request
//   - [Chunk]: A count/size-bounded group of entries sent in one batch RPC
//
// # Design Principles
//
// Domain entities are:
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants (batch count and byte limits)
//   - Testable without mocks or external systems
package domain
