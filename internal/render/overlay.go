package render

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/TimelordUK/logview/internal/search"
)

// Emphasis says how a segment relates to the active search
type Emphasis int

const (
	// EmphasisNone is a line rendered without a search overlay
	EmphasisNone Emphasis = iota
	// EmphasisDim is the unmatched part of a matching line
	EmphasisDim
	// EmphasisMatch is a matched range
	EmphasisMatch
)

// Segment is a run of line text with its highlighted markup
type Segment struct {
	Text     string
	Emphasis Emphasis
	Markup   string
}

// Overlay merges syntax highlighting with search match emphasis
type Overlay struct {
	highlighter Highlighter
}

// NewOverlay creates an overlay over a syntax capability
func NewOverlay(h Highlighter) *Overlay {
	if h == nil {
		h = PlainHighlighter{}
	}
	return &Overlay{highlighter: h}
}

// Render partitions text at every match boundary and highlights each part
// on its own, so tokens never straddle a match edge. Concatenating the
// segment texts gives back text exactly.
//
// Ranges are expected sorted and disjoint; overlapping or out-of-bounds
// ranges are clipped greedily rather than rejected.
func (o *Overlay) Render(text, language string, ranges []search.Range) []Segment {
	if len(ranges) == 0 {
		return []Segment{o.segment(text, language, EmphasisNone)}
	}

	var segments []Segment
	last := 0
	for _, r := range ranges {
		start := max(r.Start, last)
		end := min(r.End, len(text)-1)
		if start > end {
			continue
		}

		if start > last {
			segments = append(segments, o.segment(text[last:start], language, EmphasisDim))
		}
		segments = append(segments, o.segment(text[start:end+1], language, EmphasisMatch))
		last = end + 1
	}

	if last < len(text) {
		segments = append(segments, o.segment(text[last:], language, EmphasisDim))
	}
	if len(segments) == 0 {
		return []Segment{o.segment(text, language, EmphasisNone)}
	}
	return segments
}

func (o *Overlay) segment(text, language string, emphasis Emphasis) Segment {
	return Segment{
		Text:     text,
		Emphasis: emphasis,
		Markup:   o.highlighter.Highlight(language, ansi.Strip(text)),
	}
}

// Join concatenates segment texts in order
func Join(segments []Segment) string {
	n := 0
	for _, s := range segments {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range segments {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
