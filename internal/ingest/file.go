package ingest

import (
	"context"

	lvio "github.com/TimelordUK/logview/internal/io"
)

// FileTransport reads a local file once through a memory mapping
type FileTransport struct {
	path string
}

// NewFileTransport creates a one-shot file transport
func NewFileTransport(path string) *FileTransport {
	return &FileTransport{path: path}
}

// Run implements Transport
func (t *FileTransport) Run(ctx context.Context, emit Emit) {
	if err := ctx.Err(); err != nil {
		return
	}
	text, err := lvio.ReadFile(t.path)
	if err != nil {
		emit(Event{Kind: EventFailed, Err: &SourceError{URL: t.path, Err: err}})
		return
	}
	emit(Event{Kind: EventBody, Text: text})
}
