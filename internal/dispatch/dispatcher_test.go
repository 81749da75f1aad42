package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bufq/bufq/internal/buffer"
	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/pkg/codec"
	"github.com/bufq/bufq/pkg/log"
)

// rawCodec encodes string bodies as their raw bytes.
type rawCodec struct{}

func (rawCodec) Encode(v interface{}) ([]byte, error) { return []byte(v.(string)), nil }
func (rawCodec) ContentType() string                  { return "application/octet-stream" }

// rawBatchCodec joins bodies with '\n' as the envelope.
type rawBatchCodec struct{ rawCodec }

func (rawBatchCodec) EncodeBatch(vs []interface{}) ([]byte, error) {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.(string)
	}
	return []byte(strings.Join(parts, "\n")), nil
}

// chunkRecorder is a SendFunc that collects every submitted chunk.
type chunkRecorder struct {
	mu     chan struct{} // 1-token mutex so it can double as a gate
	chunks []*domain.Chunk
}

func newChunkRecorder() *chunkRecorder {
	r := &chunkRecorder{mu: make(chan struct{}, 1)}
	r.mu <- struct{}{}
	return r
}

func (r *chunkRecorder) send(ctx context.Context, c *domain.Chunk) error {
	<-r.mu
	r.chunks = append(r.chunks, c)
	r.mu <- struct{}{}
	return nil
}

func (r *chunkRecorder) all() []*domain.Chunk {
	<-r.mu
	defer func() { r.mu <- struct{}{} }()
	return append([]*domain.Chunk(nil), r.chunks...)
}

type fixture struct {
	pending    *buffer.Pending
	builder    *buffer.Builder
	tracker    *Tracker
	dispatcher *Dispatcher
	recorder   *chunkRecorder
}

func newFixture(t *testing.T, groupSize, capacity int, cdc codec.Codec) *fixture {
	t.Helper()
	rec := newChunkRecorder()
	pending := buffer.NewPending(capacity)
	builder := buffer.NewBuilder(cdc)
	tracker := NewTracker(4, rec.send, log.NewNoopLogger())
	d := NewDispatcher(pending, builder, tracker, groupSize, capacity, log.NewNoopLogger())
	return &fixture{pending: pending, builder: builder, tracker: tracker, dispatcher: d, recorder: rec}
}

func (f *fixture) push(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := f.pending.Push(context.Background(), domain.Message{Body: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
}

func (f *fixture) drain(t *testing.T) {
	t.Helper()
	f.dispatcher.FlushAsync(context.Background())
	if err := f.tracker.WaitForDrain(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}
}

func TestDispatcher_FullDrain(t *testing.T) {
	f := newFixture(t, 1, 0, rawCodec{})
	f.push(t, 25)

	f.drain(t)

	chunks := f.recorder.all()
	total := 0
	for _, c := range chunks {
		if c.Len() > domain.MaxChunkEntries {
			t.Errorf("chunk has %d entries, want at most %d", c.Len(), domain.MaxChunkEntries)
		}
		total += c.Len()
	}
	if total != 25 {
		t.Errorf("dispatched %d entries, want 25", total)
	}
	if f.pending.Len() != 0 {
		t.Errorf("pending = %d after flush, want 0", f.pending.Len())
	}
	if f.builder.ChunkCount() != 0 {
		t.Errorf("builder holds %d chunks after flush, want 0", f.builder.ChunkCount())
	}
}

func TestDispatcher_UnderfilledFinalChunkSent(t *testing.T) {
	f := newFixture(t, 1, 0, rawCodec{})
	f.push(t, 3)

	f.drain(t)

	chunks := f.recorder.all()
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Len() != 3 {
		t.Errorf("chunk has %d entries, want 3", chunks[0].Len())
	}
}

func TestDispatcher_RedundantFlushIsHarmless(t *testing.T) {
	f := newFixture(t, 1, 0, rawCodec{})

	f.dispatcher.FlushAsync(context.Background())
	f.dispatcher.FlushAsync(context.Background())

	if err := f.tracker.WaitForDrain(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}
	if got := len(f.recorder.all()); got != 0 {
		t.Errorf("empty flush dispatched %d chunks, want 0", got)
	}
}

func TestDispatcher_NeedFlush(t *testing.T) {
	tests := []struct {
		name      string
		groupSize int
		capacity  int
		queued    int
		want      bool
	}{
		{"below default threshold", 1, 0, 9, false},
		{"at default threshold", 1, 0, 10, true},
		{"grouped threshold scales", 10, 0, 99, false},
		{"grouped threshold reached", 10, 0, 100, true},
		{"capacity threshold wins", 1, 5, 5, true},
		{"below capacity threshold", 1, 5, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.groupSize, tt.capacity, rawBatchCodec{})
			f.push(t, tt.queued)
			if got := f.dispatcher.NeedFlush(); got != tt.want {
				t.Errorf("NeedFlush() with %d queued = %v, want %v", tt.queued, got, tt.want)
			}
		})
	}
}

func TestDispatcher_AggregationFullGroupsOnly(t *testing.T) {
	f := newFixture(t, 10, 0, rawBatchCodec{})
	f.push(t, 99)

	f.drain(t)

	chunks := f.recorder.all()
	envelopes := 0
	for _, c := range chunks {
		envelopes += c.Len()
	}
	if envelopes != 9 {
		t.Errorf("dispatched %d envelopes, want 9", envelopes)
	}
	// The partial group of 9 stays queued until a 100th message arrives.
	if f.pending.Len() != 9 {
		t.Errorf("pending = %d, want 9", f.pending.Len())
	}

	f.push(t, 1)
	f.drain(t)

	if f.pending.Len() != 0 {
		t.Errorf("pending = %d after completing the group, want 0", f.pending.Len())
	}
	envelopes = 0
	for _, c := range f.recorder.all() {
		envelopes += c.Len()
	}
	if envelopes != 10 {
		t.Errorf("dispatched %d envelopes total, want 10", envelopes)
	}
}

func TestDispatcher_EncodeFailureRecorded(t *testing.T) {
	f := newFixture(t, 1, 0, failCodec{})
	f.push(t, 1)

	f.dispatcher.FlushAsync(context.Background())

	err := f.tracker.WaitForDrain(context.Background(), time.Second)
	var agg *domain.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("WaitForDrain = %v, want *AggregateError", err)
	}
	if f.pending.Len() != 0 {
		t.Errorf("pending = %d, want 0 (message dropped, not requeued)", f.pending.Len())
	}
}

type failCodec struct{}

func (failCodec) Encode(interface{}) ([]byte, error) { return nil, errors.New("encode boom") }
func (failCodec) ContentType() string                { return "application/octet-stream" }
