package domain

// Batch request limits imposed by the remote queue service.
const (
	// MaxChunkEntries is the maximum number of entries per batch request.
	MaxChunkEntries = 10

	// MaxChunkBytes is the maximum combined wire size of a batch request.
	MaxChunkBytes = 256 * 1024
)

// Chunk is an ordered group of entries corresponding to exactly one batch
// RPC. It maintains a running total of entry wire sizes so packing decisions
// are O(1).
type Chunk struct {
	// Entries holds the entries in insertion order.
	Entries []Entry

	// TotalBytes is the sum of all entry sizes.
	TotalBytes int
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Add appends an entry to the chunk and updates the running size.
func (c *Chunk) Add(e Entry) {
	c.Entries = append(c.Entries, e)
	c.TotalBytes += e.Size
}

// Len returns the number of entries in the chunk.
func (c *Chunk) Len() int {
	return len(c.Entries)
}

// Empty returns true if the chunk has no entries.
func (c *Chunk) Empty() bool {
	return len(c.Entries) == 0
}

// Fits reports whether an entry of the given size can be added without
// violating the count or byte limits. The first entry into an empty chunk
// always fits: a single oversized message is never split, it is sent alone
// as an over-limit request.
func (c *Chunk) Fits(size int) bool {
	if c.Empty() {
		return true
	}
	if len(c.Entries) >= MaxChunkEntries {
		return false
	}
	return c.TotalBytes+size <= MaxChunkBytes
}
