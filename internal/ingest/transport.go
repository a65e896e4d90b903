package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// EventKind says what a transport observed
type EventKind int

const (
	// EventBody carries the full body of a one-shot read
	EventBody EventKind = iota
	// EventOpen reports an established live connection
	EventOpen
	// EventMessage carries one raw live message
	EventMessage
	// EventFailed reports a read or connection failure
	EventFailed
	// EventClosed reports the live connection ended cleanly
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventBody:
		return "body"
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventFailed:
		return "failed"
	case EventClosed:
		return "closed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is what transports send to the controller
type Event struct {
	Kind    EventKind
	Text    string
	Err     error
	Session string
}

// Emit hands an event to the controller. It returns false once the
// controller is closed, after which the transport should stop.
type Emit func(Event) bool

// Transport reads from one source. Run blocks until the read is over or
// ctx is cancelled, reporting everything through emit. It never touches
// controller state.
type Transport interface {
	Run(ctx context.Context, emit Emit)
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, emit Emit)

// Run implements Transport
func (f TransportFunc) Run(ctx context.Context, emit Emit) {
	f(ctx, emit)
}

// NewTransport picks the transport for an address. One-shot reads take
// http(s) URLs or local files; live reads take ws(s) URLs (http(s) is
// upgraded) or local files, which are tailed.
func NewTransport(address string, live bool) (Transport, error) {
	scheme, path := splitAddress(address)
	switch {
	case !live && (scheme == "http" || scheme == "https"):
		return NewHTTPTransport(address, nil), nil
	case !live && scheme == "file":
		return NewFileTransport(path), nil
	case live && (scheme == "ws" || scheme == "wss"):
		return NewWebSocketTransport(address, nil), nil
	case live && (scheme == "http" || scheme == "https"):
		return NewWebSocketTransport("ws"+address[len("http"):], nil), nil
	case live && scheme == "file":
		return NewTailTransport(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, address)
	}
}

// splitAddress returns the lowercased scheme of address and, for files, the
// local path. A bare path is reported as scheme "file".
func splitAddress(address string) (string, string) {
	u, err := url.Parse(address)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme, or a Windows drive letter
		return "file", address
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "file" {
		return scheme, u.Path
	}
	return scheme, ""
}
