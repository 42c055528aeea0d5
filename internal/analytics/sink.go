package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sink delivers events. Delivery failures are the caller's to log;
// analytics never blocks a cart operation.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// HTTPSink posts events to a collector endpoint, tagged with the GTM
// container they belong to.
type HTTPSink struct {
	url         string
	containerID string
	httpClient  *http.Client
}

func NewHTTPSink(url, containerID string) *HTTPSink {
	return &HTTPSink{
		url:         url,
		containerID: containerID,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *HTTPSink) IsConfigured() bool {
	return s.url != ""
}

func (s *HTTPSink) Publish(ctx context.Context, event Event) error {
	if !s.IsConfigured() {
		return nil
	}

	body, err := json.Marshal(struct {
		ContainerID string `json:"container_id,omitempty"`
		Event
	}{ContainerID: s.containerID, Event: event})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("collector error %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// NopSink drops every event; used when no collector is configured.
type NopSink struct{}

func (NopSink) Publish(context.Context, Event) error { return nil }
