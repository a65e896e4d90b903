package ingest

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport streams text messages from a WebSocket endpoint
type WebSocketTransport struct {
	url    string
	dialer *websocket.Dialer
}

// NewWebSocketTransport creates a live WebSocket transport. A nil dialer
// uses websocket.DefaultDialer with a handshake timeout.
func NewWebSocketTransport(url string, dialer *websocket.Dialer) *WebSocketTransport {
	if dialer == nil {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = 10 * time.Second
		dialer = &d
	}
	return &WebSocketTransport{url: url, dialer: dialer}
}

// Run implements Transport
func (t *WebSocketTransport) Run(ctx context.Context, emit Emit) {
	conn, resp, err := t.dialer.DialContext(ctx, t.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() == nil {
			emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.url, Err: err}})
		}
		return
	}
	defer conn.Close()

	// ReadMessage only returns on data or error, so closing the connection
	// is how cancellation reaches it
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if !emit(Event{Kind: EventOpen}) {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				emit(Event{Kind: EventClosed})
			default:
				emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.url, Err: err}})
			}
			return
		}
		if !emit(Event{Kind: EventMessage, Text: string(data)}) {
			return
		}
	}
}
