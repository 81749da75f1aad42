// Package bufq re-exports the buffered queue client for convenient import
// from the module root.
//
// Example usage:
//
//	cfg := bufq.Config{
//	    QueueURL:   "orders-events",
//	    ServiceURL: "https://queue.example.com",
//	    AuthKey:    "your-api-key",
//	}
//	client, err := bufq.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = client.Send(context.Background(), bufq.Message{Body: "hello"})
//	_ = client.Flush(context.Background(), 30*time.Second)
//
// See github.com/bufq/bufq/pkg/bufq for the full API.
package bufq

import (
	"github.com/bufq/bufq/pkg/bufq"
)

// Client is a buffering producer for a batch-oriented queue service.
type Client = bufq.Client

// Config holds the configuration for a buffered queue client.
type Config = bufq.Config

// Message is a logical message: a body plus optional typed attributes.
type Message = bufq.Message

// Attribute is a typed metadata value attached to a message.
type Attribute = bufq.Attribute

// Option configures optional behavior of a Client.
type Option = bufq.Option

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	return bufq.New(cfg, opts...)
}
