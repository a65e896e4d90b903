package index

import (
	"bytes"
	"strings"
	"sync/atomic"
)

// Line is a single numbered line of a Document
type Line struct {
	Number int // 1-based, always index+1
	Text   string
}

// Document is an immutable, line-addressable revision of the raw text.
// It stores the byte offset of each line start rather than the lines
// themselves, so a Line is only materialized when asked for.
//
// Revisions produced by Store.Append share the backing arrays of their
// predecessor. A revision only ever reads up to its own length, and only
// the newest revision is appended to.
type Document struct {
	buf     []byte
	offsets []int
	lineage uint64
}

var lineages atomic.Uint64

// NewDocument splits raw text on '\n' into a Document.
// An empty input yields a single empty line.
func NewDocument(raw string) *Document {
	// Estimate initial capacity (assume ~100 bytes per line)
	offsets := make([]int, 1, len(raw)/100+1)
	offsets = scanOffsets(offsets, raw, 0)
	return &Document{
		buf:     []byte(raw),
		offsets: offsets,
		lineage: lineages.Add(1),
	}
}

// scanOffsets appends the start offset of every line that begins after a
// newline in chunk. base is the position of chunk within the full text.
func scanOffsets(offsets []int, chunk string, base int) []int {
	pos := 0
	for {
		idx := strings.IndexByte(chunk[pos:], '\n')
		if idx == -1 {
			return offsets
		}
		pos += idx + 1
		offsets = append(offsets, base+pos)
	}
}

// Extends reports whether d was produced from prev by appending, so that
// every line of prev except possibly the last is unchanged in d
func (d *Document) Extends(prev *Document) bool {
	return prev != nil && d.lineage == prev.lineage && len(d.buf) >= len(prev.buf)
}

// Len returns the number of lines, never less than one
func (d *Document) Len() int {
	return len(d.offsets)
}

// MaxLineNumber returns the number of the last line
func (d *Document) MaxLineNumber() int {
	return len(d.offsets)
}

// Text returns the raw text the document was built from. It copies the
// whole document.
func (d *Document) Text() string {
	return string(d.buf)
}

// Size returns the length of the raw text in bytes
func (d *Document) Size() int {
	return len(d.buf)
}

// Line returns the line at index i (0-based). Out of range returns false.
func (d *Document) Line(i int) (Line, bool) {
	if i < 0 || i >= len(d.offsets) {
		return Line{}, false
	}

	start := d.offsets[i]
	end := len(d.buf)
	if i+1 < len(d.offsets) {
		end = d.offsets[i+1] - 1 // drop the '\n'
	}

	content := bytes.TrimSuffix(d.buf[start:end], []byte("\r"))
	return Line{Number: i + 1, Text: string(content)}, true
}

// Lines materializes every line in order
func (d *Document) Lines() []Line {
	return d.LinesFrom(0)
}

// LinesFrom materializes the lines from index i (0-based) to the end
func (d *Document) LinesFrom(i int) []Line {
	i = max(i, 0)
	if i >= len(d.offsets) {
		return nil
	}
	lines := make([]Line, len(d.offsets)-i)
	for j := range lines {
		lines[j], _ = d.Line(i + j)
	}
	return lines
}

// Texts returns the text of every line in order
func (d *Document) Texts() []string {
	texts := make([]string, len(d.offsets))
	for i := range d.offsets {
		line, _ := d.Line(i)
		texts[i] = line.Text
	}
	return texts
}

// ByteOffset returns the byte offset of a line start
func (d *Document) ByteOffset(i int) int {
	if i < 0 || i >= len(d.offsets) {
		return -1
	}
	return d.offsets[i]
}

// Change classifies how a new Document relates to the one it replaced
type Change int

const (
	// ChangeReset means the document was replaced or did not gain lines
	ChangeReset Change = iota
	// ChangeGrew means the new document has a strictly greater max line number
	ChangeGrew
)

func (c Change) String() string {
	if c == ChangeGrew {
		return "grew"
	}
	return "reset"
}

// Store owns the current Document and replaces it wholesale on every mutation
type Store struct {
	doc *Document
}

// NewStore creates a store holding a single empty line
func NewStore() *Store {
	return &Store{doc: NewDocument("")}
}

// Document returns the current revision
func (s *Store) Document() *Document {
	return s.doc
}

// Update replaces the document with one split from raw
func (s *Store) Update(raw string) (*Document, Change) {
	return s.replace(NewDocument(raw))
}

// Append builds the next revision from the current text plus text.
// Only the appended bytes are scanned and copied; the previous Document
// reads exactly as before.
func (s *Store) Append(text string) (*Document, Change) {
	prev := s.doc
	// The store's document is the newest of its lineage, so growing its
	// arrays in place never overwrites bytes another revision can see
	offsets := scanOffsets(prev.offsets, text, len(prev.buf))

	return s.replace(&Document{
		buf:     append(prev.buf, text...),
		offsets: offsets,
		lineage: prev.lineage,
	})
}

func (s *Store) replace(next *Document) (*Document, Change) {
	change := ChangeReset
	if next.MaxLineNumber() > s.doc.MaxLineNumber() {
		change = ChangeGrew
	}
	s.doc = next
	return next, change
}
