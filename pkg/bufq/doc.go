// Package bufq provides a client-side buffering layer in front of a remote
// batch-oriented message-queue API.
//
// The remote service only accepts small, size-capped batches (at most 10
// entries, 256KiB combined serialized size). bufq lets producers submit
// messages one at a time, at high concurrency, without managing batching,
// retries, or async completion tracking themselves.
//
// # Basic Usage
//
//	cfg := bufq.Config{
//	    QueueURL:   "orders-events",
//	    ServiceURL: "https://queue.example.com",
//	    AuthKey:    "your-api-key",
//	}
//
//	client, err := bufq.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	_ = client.Send(ctx, bufq.Message{Body: map[string]string{"event": "created"}})
//
//	// Observe terminal failures at drain time.
//	if err := client.Flush(ctx, 30*time.Second); err != nil {
//	    log.Printf("flush: %v", err)
//	}
//
// # Delivery Semantics
//
// Send is asynchronous by design: delivery failures never surface at the
// Send call site. Per-entry rejections and transport failures are retried
// internally up to Config.RetryLimit attempts, resubmitting only the failed
// subset of a batch. Failures that survive the retry limit accumulate and
// are reported in aggregate by [Client.Flush] or [Client.WaitForDrain] as an
// [AggregateError]. Call [Client.ClearErrors] once handled.
//
// Entries within one batch preserve insertion order; no ordering holds
// across batches, which run on independent worker-pool tasks.
//
// # Aggregation Mode
//
// With Config.AggregationGroupSize > 1, groups of that many message bodies
// are serialized as one combined envelope entry to reduce RPC count. The
// configured codec must implement [codec.BatchEncoder]; construction fails
// with [ErrCodecNotBatchable] otherwise.
//
// # Dependency Injection
//
// For testing, inject custom implementations of external dependencies:
//
//	client, err := bufq.New(cfg,
//	    bufq.WithTransport(mockSender),
//	    bufq.WithLogger(customLogger),
//	)
package bufq
