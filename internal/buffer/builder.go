package buffer

import (
	"fmt"
	"sync"

	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/pkg/codec"
)

// Builder packs serialized messages into chunks that respect the batch
// count and byte limits. It maintains an ordered chunk list with at most one
// unsealed chunk, always the last element; a chunk is sealed once a later
// chunk exists to hold the next entry.
//
// One mutex guards every read and mutation of the chunk list. The compound
// "inspect last chunk, maybe append a new one, add the entry" is atomic, so
// concurrent adders never observe partial state. Body serialization happens
// outside the lock.
type Builder struct {
	codec codec.Codec

	mu     sync.Mutex
	chunks []*domain.Chunk
}

// NewBuilder creates a chunk builder using the given codec for body
// serialization.
func NewBuilder(c codec.Codec) *Builder {
	return &Builder{codec: c}
}

// AddMessage serializes the message body and places the resulting entry into
// the chunk list.
func (b *Builder) AddMessage(msg domain.Message) error {
	body, err := b.codec.Encode(msg.Body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	b.place(domain.NewEntry(body, msg.Attributes))
	return nil
}

// AddAggregated serializes the bodies of all messages as one combined
// envelope (a single codec call over the whole list) and places the
// resulting single entry into the chunk list under the same packing rule as
// a single message. The caller guarantees the codec supports batch encoding.
func (b *Builder) AddAggregated(msgs []domain.Message) error {
	be, ok := b.codec.(codec.BatchEncoder)
	if !ok {
		return domain.ErrCodecNotBatchable
	}
	bodies := make([]interface{}, len(msgs))
	for i, m := range msgs {
		bodies[i] = m.Body
	}
	envelope, err := be.EncodeBatch(bodies)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	b.place(domain.NewEntry(envelope, nil))
	return nil
}

// place adds an entry to the last chunk, sealing it behind a fresh chunk
// when the entry does not fit.
func (b *Builder) place(e domain.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.chunks) == 0 {
		b.chunks = append(b.chunks, domain.NewChunk())
	}
	last := b.chunks[len(b.chunks)-1]
	if !last.Fits(e.Size) {
		last = domain.NewChunk()
		b.chunks = append(b.chunks, last)
	}
	last.Add(e)
}

// HasSealed returns true if at least one chunk other than the currently open
// last one exists.
func (b *Builder) HasSealed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks) > 1
}

// TakeSealed removes and returns the oldest sealed chunk, or nil when no
// chunk is sealed yet.
func (b *Builder) TakeSealed() *domain.Chunk {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) < 2 {
		return nil
	}
	return b.popFront()
}

// TakeRemaining removes and returns the oldest chunk regardless of sealing,
// or nil when the chunk list is empty. Used at the end of a flush to force
// out the under-filled final chunk so no message is left unsent.
func (b *Builder) TakeRemaining() *domain.Chunk {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		return nil
	}
	return b.popFront()
}

// ChunkCount returns the number of chunks currently held, open one included.
func (b *Builder) ChunkCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// popFront removes and returns the first chunk. Caller holds the mutex.
func (b *Builder) popFront() *domain.Chunk {
	c := b.chunks[0]
	b.chunks = b.chunks[1:]
	return c
}
