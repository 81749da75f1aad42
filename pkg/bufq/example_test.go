package bufq_test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bufq/bufq/pkg/bufq"
)

// ExampleNew demonstrates how to embed the client in your application.
func ExampleNew() {
	// Create configuration
	cfg := bufq.Config{
		QueueURL:   "orders-events",
		ServiceURL: "https://queue.example.com",
		AuthKey:    "your-api-key",
	}

	// Create the buffered client
	client, err := bufq.New(cfg)
	if err != nil {
		fmt.Printf("failed to create client: %v\n", err)
		return
	}

	// Buffer messages; batches are dispatched in the background
	ctx := context.Background()
	_ = client.Send(ctx, bufq.Message{Body: map[string]string{"event": "created"}})

	// Nothing was dispatched yet: one message is below the batch threshold
	fmt.Printf("Buffered: %d\n", client.Pending())

	// Output: Buffered: 1
}

// Example_withTransport demonstrates dependency injection for testing.
func Example_withTransport() {
	// A transport that accepts every batch without touching the network
	transport := &acceptAllTransport{}

	cfg := bufq.Config{QueueURL: "orders-events"}

	client, err := bufq.New(cfg, bufq.WithTransport(transport))
	if err != nil {
		fmt.Printf("failed to create client: %v\n", err)
		return
	}

	ctx := context.Background()
	_ = client.Send(ctx, bufq.Message{Body: "hello"})

	// Flush dispatches the buffered batch and waits for it to drain
	if err := client.Flush(ctx, 5*time.Second); err != nil {
		fmt.Printf("flush failed: %v\n", err)
		return
	}
	fmt.Printf("Delivered batches: %d\n", transport.batches)

	// Output: Delivered batches: 1
}

// acceptAllTransport implements bufq.BatchSender for testing.
type acceptAllTransport struct {
	batches int
}

func (t *acceptAllTransport) SendBatch(ctx context.Context, queueURL string, entries []bufq.RequestEntry) (bufq.BatchResult, error) {
	t.batches++
	return bufq.BatchResult{}, nil
}

// Example_withMockHTTPClient demonstrates replacing the HTTP client used by
// the default transport.
func Example_withMockHTTPClient() {
	mockClient := &mockHTTPClient{}

	cfg := bufq.Config{
		QueueURL:   "orders-events",
		ServiceURL: "https://queue.example.com",
		AuthKey:    "test-key",
	}

	// Inject mock HTTP client
	client, err := bufq.New(cfg, bufq.WithHTTPClient(mockClient))
	if err != nil {
		fmt.Printf("failed to create client: %v\n", err)
		return
	}

	_ = client // Use in tests...
}

// mockHTTPClient implements bufq.HTTPClient for testing.
type mockHTTPClient struct {
	requests []*http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       http.NoBody,
	}, nil
}

// Example_withCustomLogger demonstrates injecting a custom logger.
func Example_withCustomLogger() {
	logger := &customLogger{}

	cfg := bufq.Config{QueueURL: "orders-events", ServiceURL: "https://queue.example.com"}

	// Inject custom logger
	client, err := bufq.New(cfg, bufq.WithLogger(logger))
	if err != nil {
		fmt.Printf("failed to create client: %v\n", err)
		return
	}

	_ = client // Use client...
}

// customLogger implements bufq.Logger.
type customLogger struct{}

func (l *customLogger) Debug(msg string, fields ...bufq.LogField) {
	fmt.Printf("[DEBUG] %s\n", msg)
}

func (l *customLogger) Info(msg string, fields ...bufq.LogField) {
	fmt.Printf("[INFO] %s\n", msg)
}

func (l *customLogger) Warn(msg string, fields ...bufq.LogField) {
	fmt.Printf("[WARN] %s\n", msg)
}

func (l *customLogger) Error(msg string, fields ...bufq.LogField) {
	fmt.Printf("[ERROR] %s\n", msg)
}

// Example_aggregation demonstrates aggregation mode: groups of message bodies
// are encoded into one envelope entry each.
func Example_aggregation() {
	transport := &acceptAllTransport{}

	cfg := bufq.Config{
		QueueURL:             "metrics",
		AggregationGroupSize: 2,
	}

	// The default JSON codec encodes each group as a JSON array envelope
	client, err := bufq.New(cfg, bufq.WithTransport(transport))
	if err != nil {
		fmt.Printf("failed to create client: %v\n", err)
		return
	}

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_ = client.Send(ctx, bufq.Message{Body: i})
	}
	if err := client.Flush(ctx, 5*time.Second); err != nil {
		fmt.Printf("flush failed: %v\n", err)
		return
	}
	fmt.Printf("Pending after flush: %d\n", client.Pending())

	// Output: Pending after flush: 0
}
