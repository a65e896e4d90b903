package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPTransport does a single GET
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport creates a one-shot HTTP transport. A nil client uses a
// client with a default timeout.
func NewHTTPTransport(url string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPTransport{url: url, client: client}
}

// Run implements Transport
func (t *HTTPTransport) Run(ctx context.Context, emit Emit) {
	body, err := t.fetch(ctx)
	if err != nil {
		emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.url, Err: err}})
		return
	}
	emit(Event{Kind: EventBody, Text: body})
}

func (t *HTTPTransport) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
