package source

import (
	"github.com/TimelordUK/logview/internal/index"
	"github.com/TimelordUK/logview/internal/search"
)

// Line is a document line as the viewport displays it
type Line struct {
	index.Line
	Ranges  []search.Range // matched byte ranges, empty without a query
	Matched bool           // the line satisfies the active query
}

// LineProvider is the core abstraction for accessing the displayed sequence.
// The viewport only interacts with this interface
type LineProvider interface {
	// LineCount returns total number of lines
	LineCount() int

	// GetLine returns line at index (0-based)
	GetLine(index int) (*Line, error)

	// GetLines returns a range of lines efficiently
	GetLines(start, count int) ([]*Line, error)
}
