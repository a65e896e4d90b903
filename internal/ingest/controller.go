package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TimelordUK/logview/internal/index"
)

// State is the ingestion lifecycle
type State int

const (
	// Idle is before Start
	Idle State = iota
	// Loading waits for a one-shot read
	Loading
	// Ready shows static text or a loaded body
	Ready
	// Streaming is connected to a live source
	Streaming
	// Closed is a live source that ended after delivering content
	Closed
	// Error shows the error document
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode is how content reaches the store. It is chosen once at start.
type Mode int

const (
	// ModeStatic shows fixed text without a transport
	ModeStatic Mode = iota
	// ModeOneShot reads the source once
	ModeOneShot
	// ModeLive appends messages from a persistent connection
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeOneShot:
		return "one-shot"
	case ModeLive:
		return "live"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const eventBuffer = 256

// Options configures a Controller
type Options struct {
	URL       string
	Websocket bool
	Text      string     // static content, takes precedence over URL
	Format    FormatFunc // live message transform, nil is Identity

	// Transport overrides the one NewTransport would pick
	Transport Transport
	Logger    *zap.Logger
}

// Update is the effect of one handled event on the store
type Update struct {
	Document *index.Document
	Change   index.Change
	Changed  bool
}

// Controller owns the ingestion lifecycle. The transport runs in its own
// goroutine and only produces events; Handle applies them and must be
// called from a single goroutine, which is the only writer of the store.
type Controller struct {
	store  *index.Store
	opts   Options
	mode   Mode
	state  State
	logger *zap.Logger

	session  string
	received bool // a live message has arrived
	supplied bool // the host replaced the document through SetText
	closed   bool

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewController creates a controller writing into store
func NewController(store *index.Store, opts Options) *Controller {
	if opts.Format == nil {
		opts.Format = Identity
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := ModeStatic
	switch {
	case opts.Text != "" || opts.URL == "":
	case opts.Websocket:
		mode = ModeLive
	default:
		mode = ModeOneShot
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:  store,
		opts:   opts,
		mode:   mode,
		logger: logger,
		events: make(chan Event, eventBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Mode returns the ingestion mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Loading reports whether nothing has been displayed yet. Text supplied
// through SetText counts as displayed.
func (c *Controller) Loading() bool {
	if c.supplied {
		return false
	}
	return c.state == Loading || (c.state == Streaming && !c.received)
}

// Session returns the id of the current ingestion attempt
func (c *Controller) Session() string {
	return c.session
}

// Events is the channel transport events arrive on. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Start begins ingestion. Static content is applied immediately and its
// Update returned; the other modes start the transport and return an
// unchanged Update.
func (c *Controller) Start() Update {
	if c.state != Idle || c.closed {
		return Update{}
	}
	c.session = uuid.NewString()
	c.logger = c.logger.With(zap.String("session", c.session), zap.Stringer("mode", c.mode))

	if c.mode == ModeStatic {
		c.state = Ready
		return c.apply(c.store.Update(c.opts.Text))
	}

	transport := c.opts.Transport
	if transport == nil {
		t, err := NewTransport(c.opts.URL, c.mode == ModeLive)
		if err != nil {
			c.logger.Warn("no transport for source", zap.String("url", c.opts.URL), zap.Error(err))
			c.state = Error
			return c.apply(c.store.Update(ErrorDocument(&SourceError{URL: c.opts.URL, Err: err}, c.opts.URL)))
		}
		transport = t
	}

	if c.mode == ModeLive {
		c.state = Streaming
	} else {
		c.state = Loading
	}
	c.logger.Info("ingestion started", zap.String("url", c.opts.URL))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		transport.Run(c.ctx, c.emit)
	}()
	return Update{}
}

// SetText replaces the document with text. It is how a host re-applies
// the text option when it changes, in any mode: a live source keeps
// appending its messages to the new text. Only static mode changes state.
func (c *Controller) SetText(text string) Update {
	if c.closed {
		return Update{}
	}
	c.opts.Text = text
	if c.mode == ModeStatic {
		c.state = Ready
	}
	c.supplied = true
	c.logger.Debug("text replaced", zap.Int("bytes", len(text)), zap.Stringer("state", c.state))
	return c.apply(c.store.Update(text))
}

func (c *Controller) emit(ev Event) bool {
	ev.Session = c.session
	select {
	case c.events <- ev:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// Handle applies one transport event. It is a no-op after Close and for
// events from another session.
func (c *Controller) Handle(ev Event) Update {
	if c.closed || (ev.Session != "" && ev.Session != c.session) {
		return Update{}
	}

	switch ev.Kind {
	case EventBody:
		if c.state != Loading {
			return Update{}
		}
		c.state = Ready
		c.logger.Info("source loaded", zap.Int("bytes", len(ev.Text)))
		return c.apply(c.store.Update(strings.TrimSpace(ev.Text)))

	case EventOpen:
		c.logger.Info("connection open", zap.String("url", c.opts.URL))
		return Update{}

	case EventMessage:
		if c.state != Streaming {
			return Update{}
		}
		c.received = true
		msg, err := safeFormat(c.opts.Format, ev.Text)
		if err != nil {
			c.logger.Warn("message transform failed", zap.Error(err))
			msg = FallbackLine
		}
		if msg == "" {
			return Update{}
		}
		return c.apply(c.store.Append("\n" + msg))

	case EventFailed:
		return c.fail(ev.Err)

	case EventClosed:
		if c.state == Streaming {
			c.state = Closed
			c.logger.Info("connection closed")
		}
		return Update{}
	}
	return Update{}
}

// fail handles a transport failure. Before anything was shown it becomes
// the error document; a live connection that already delivered messages
// just closes and keeps its content.
func (c *Controller) fail(err error) Update {
	if err == nil {
		err = &SourceError{URL: c.opts.URL, Err: errors.New("unknown error")}
	}

	switch {
	case c.state == Streaming && c.received:
		c.state = Closed
		c.logger.Warn("connection lost", zap.String("url", c.opts.URL), zap.Error(err))
		return Update{}
	case c.state == Loading || c.state == Streaming:
		c.state = Error
		c.logger.Error("source unreachable", zap.String("url", c.opts.URL), zap.Error(err))
		return c.apply(c.store.Update(ErrorDocument(err, c.opts.URL)))
	default:
		return Update{}
	}
}

func (c *Controller) apply(doc *index.Document, change index.Change) Update {
	return Update{Document: doc, Change: change, Changed: true}
}

// Close cancels the transport, waits for it to stop and closes the event
// channel. Later events are ignored.
func (c *Controller) Close() {
	c.once.Do(func() {
		c.closed = true
		c.cancel()
		c.wg.Wait()
		close(c.events)
		c.logger.Debug("ingestion closed", zap.Stringer("state", c.state))
	})
}
