package source

import (
	"fmt"

	"github.com/TimelordUK/logview/internal/index"
)

// DocumentSource provides the lines of one document revision
type DocumentSource struct {
	doc *index.Document
}

// NewDocumentSource creates a source over doc. A nil doc reads as a single
// empty line.
func NewDocumentSource(doc *index.Document) *DocumentSource {
	s := &DocumentSource{}
	s.SetDocument(doc)
	return s
}

// SetDocument swaps in a new revision
func (s *DocumentSource) SetDocument(doc *index.Document) {
	if doc == nil {
		doc = index.NewDocument("")
	}
	s.doc = doc
}

// Document returns the current revision
func (s *DocumentSource) Document() *index.Document {
	return s.doc
}

// LineCount returns total number of lines
func (s *DocumentSource) LineCount() int {
	return s.doc.Len()
}

// GetLine returns line at index
func (s *DocumentSource) GetLine(idx int) (*Line, error) {
	line, ok := s.doc.Line(idx)
	if !ok {
		return nil, fmt.Errorf("line %d out of range [0,%d)", idx, s.doc.Len())
	}
	return &Line{Line: line}, nil
}

// GetLines returns a range of lines
func (s *DocumentSource) GetLines(start, count int) ([]*Line, error) {
	if start < 0 || start >= s.doc.Len() {
		return nil, fmt.Errorf("line %d out of range [0,%d)", start, s.doc.Len())
	}
	end := min(start+count, s.doc.Len())

	lines := make([]*Line, 0, end-start)
	for i := start; i < end; i++ {
		line, _ := s.doc.Line(i)
		lines = append(lines, &Line{Line: line})
	}
	return lines, nil
}
