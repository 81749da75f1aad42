// Package http adapts the abstract batch-send port to the queue service's
// HTTP API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/bufq/bufq/internal/ports"
	"github.com/bufq/bufq/pkg/log"
)

const batchEndpoint = "/v1/queues/batch"

// BatchSender implements ports.BatchSender over HTTP. One SendBatch call is
// one POST; the engine owns all retrying.
type BatchSender struct {
	client     ports.HTTPClient
	serviceURL string
	authKey    string
	logger     log.Logger
}

// NewBatchSender creates an HTTP batch sender. serviceURL is the base URL of
// the queue service without a trailing slash.
func NewBatchSender(client ports.HTTPClient, serviceURL, authKey string, logger log.Logger) *BatchSender {
	return &BatchSender{
		client:     client,
		serviceURL: serviceURL,
		authKey:    authKey,
		logger:     logger,
	}
}

// Wire types for the batch endpoint. Bodies are base64 in JSON.
type wireAttribute struct {
	DataType         string   `json:"data_type"`
	StringValue      string   `json:"string_value,omitempty"`
	BinaryValue      []byte   `json:"binary_value,omitempty"`
	StringListValues []string `json:"string_list_values,omitempty"`
	BinaryListValues [][]byte `json:"binary_list_values,omitempty"`
}

type wireEntry struct {
	ID         string                   `json:"id"`
	Body       []byte                   `json:"body"`
	Attributes map[string]wireAttribute `json:"attributes,omitempty"`
}

type wireRequest struct {
	Queue   string      `json:"queue"`
	Entries []wireEntry `json:"entries"`
}

type wireFailure struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	SenderFault bool   `json:"sender_fault"`
}

type wireResponse struct {
	Failed []wireFailure `json:"failed"`
}

// SendBatch posts one batch request and decodes the per-entry failure list.
func (s *BatchSender) SendBatch(ctx context.Context, queueURL string, entries []ports.RequestEntry) (ports.BatchResult, error) {
	payload := wireRequest{
		Queue:   queueURL,
		Entries: make([]wireEntry, len(entries)),
	}
	for i, re := range entries {
		we := wireEntry{ID: re.ID, Body: re.Entry.Body}
		if len(re.Entry.Attributes) > 0 {
			we.Attributes = make(map[string]wireAttribute, len(re.Entry.Attributes))
			for name, a := range re.Entry.Attributes {
				we.Attributes[name] = wireAttribute{
					DataType:         a.DataType,
					StringValue:      a.StringValue,
					BinaryValue:      a.BinaryValue,
					StringListValues: a.StringListValues,
					BinaryListValues: a.BinaryListValues,
				}
			}
		}
		payload.Entries[i] = we
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.BatchResult{}, fmt.Errorf("marshal batch request: %w", err)
	}

	url := s.serviceURL + batchEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ports.BatchResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.authKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return ports.BatchResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return ports.BatchResult{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var wr wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return ports.BatchResult{}, fmt.Errorf("decode response: %w", err)
	}

	result := ports.BatchResult{}
	if len(wr.Failed) > 0 {
		result.Failed = make([]ports.FailedEntry, len(wr.Failed))
		for i, f := range wr.Failed {
			result.Failed[i] = ports.FailedEntry{
				ID:          f.ID,
				Code:        f.Code,
				Message:     f.Message,
				SenderFault: f.SenderFault,
			}
		}
		s.logger.Debug("batch partially failed",
			log.Int("entries", len(entries)),
			log.Int("failed", len(wr.Failed)))
	}
	return result, nil
}
