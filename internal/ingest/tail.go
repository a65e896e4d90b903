package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	lvio "github.com/TimelordUK/logview/internal/io"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	defaultPrimeLines   = 100
)

// TailTransport follows a growing local file. Each complete line is a
// message. Writes are picked up through fsnotify, with a polling ticker as
// the fallback for filesystems that do not report them.
type TailTransport struct {
	path       string
	poll       time.Duration
	primeLines int
}

// NewTailTransport creates a live file transport that primes with the last
// lines already in the file
func NewTailTransport(path string) *TailTransport {
	return &TailTransport{
		path:       path,
		poll:       defaultPollInterval,
		primeLines: defaultPrimeLines,
	}
}

// SetPollInterval sets the polling fallback interval
func (t *TailTransport) SetPollInterval(d time.Duration) {
	if d > 0 {
		t.poll = d
	}
}

// SetPrimeLines sets how many existing lines are sent first.
// 0 means tail-only.
func (t *TailTransport) SetPrimeLines(n int) {
	t.primeLines = max(n, 0)
}

// tailState tracks how far into the file we have read
type tailState struct {
	file    *lvio.MappedFile
	offset  int64
	pending string // bytes after the last newline
}

// Run implements Transport
func (t *TailTransport) Run(ctx context.Context, emit Emit) {
	file, err := lvio.OpenMapped(t.path)
	if err != nil {
		emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.path, Err: err}})
		return
	}
	defer file.Close()

	// Watching is best effort, the ticker still runs without it
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(t.path); err == nil {
			events, watchErrs = watcher.Events, watcher.Errors
		}
	}

	if !emit(Event{Kind: EventOpen}) {
		return
	}

	state := &tailState{file: file}
	if !t.prime(state, emit) {
		return
	}

	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.path, Err: errors.New("file removed")}})
				return
			}
			if ev.Op&fsnotify.Write == 0 {
				continue
			}
		case _, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			}
			continue
		case <-ticker.C:
		}

		if !t.pollFile(state, emit) {
			return
		}
	}
}

// prime sends the last primeLines complete lines and moves to the end of
// the file, holding any unterminated line back
func (t *TailTransport) prime(state *tailState, emit Emit) bool {
	data, err := state.file.ReadRange(0, state.file.Size())
	if err != nil {
		emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.path, Err: err}})
		return false
	}

	text := string(data)
	end := strings.LastIndexByte(text, '\n') + 1
	state.offset = int64(len(text))
	state.pending = text[end:]
	if t.primeLines == 0 || end == 0 {
		return true
	}

	lines := strings.Split(text[:end-1], "\n")
	start := max(len(lines)-t.primeLines, 0)
	for _, line := range lines[start:] {
		if !emit(Event{Kind: EventMessage, Text: strings.TrimSuffix(line, "\r")}) {
			return false
		}
	}
	return true
}

// pollFile checks the file for new bytes and sends each completed line
func (t *TailTransport) pollFile(state *tailState, emit Emit) bool {
	_, err := state.file.Refresh()
	if errors.Is(err, lvio.ErrTruncated) {
		state.offset = 0
		state.pending = ""
	} else if err != nil {
		emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.path, Err: err}})
		return false
	}

	if state.file.Size() <= state.offset {
		return true
	}
	data, err := state.file.ReadRange(state.offset, state.file.Size())
	if err != nil {
		emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.path, Err: err}})
		return false
	}
	state.offset += int64(len(data))

	chunk := state.pending + string(data)
	lines := strings.Split(chunk, "\n")
	state.pending = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		if !emit(Event{Kind: EventMessage, Text: strings.TrimSuffix(line, "\r")}) {
			return false
		}
	}
	return true
}
