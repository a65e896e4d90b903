package source

import (
	"github.com/TimelordUK/logview/internal/index"
	"github.com/TimelordUK/logview/internal/search"
)

// FilteredProvider projects a document through the active query. With no
// query every line is shown. With a query only matching lines are shown,
// unless show-all is on, in which case every line is shown and the matching
// ones carry their ranges.
type FilteredProvider struct {
	source  *DocumentSource
	matcher search.Matcher

	query   search.Query
	showAll bool

	// Cached search output for the current document and query
	result   search.Result
	byNumber map[int][]search.Range
	dirty    bool
	changed  bool
	// First line index to search again after the document grew, -1 for none
	grewFrom int
}

// NewFilteredProvider creates a filtered provider
func NewFilteredProvider(source *DocumentSource, matcher search.Matcher) *FilteredProvider {
	if matcher == nil {
		matcher = search.NewFuzzyMatcher()
	}
	return &FilteredProvider{
		source:  source,
		matcher: matcher,
		query:    search.Query{Threshold: search.DefaultThreshold},
		dirty:    true,
		grewFrom: -1,
	}
}

// SetDocument installs a new document revision. A revision that extends
// the current one only has its new lines searched.
func (f *FilteredProvider) SetDocument(doc *index.Document) {
	prev := f.source.Document()
	f.source.SetDocument(doc)
	f.changed = true
	if f.dirty || doc == nil || !doc.Extends(prev) {
		f.dirty = true
		return
	}

	// The last line of prev may have grown, so it is searched again
	from := prev.Len() - 1
	if f.grewFrom < 0 || from < f.grewFrom {
		f.grewFrom = from
	}
}

// Document returns the current revision
func (f *FilteredProvider) Document() *index.Document {
	return f.source.Document()
}

// SetQuery sets the query text
func (f *FilteredProvider) SetQuery(text string) {
	if text == f.query.Text {
		return
	}
	f.query.Text = text
	f.dirty = true
}

// Query returns the current query
func (f *FilteredProvider) Query() search.Query {
	return f.query
}

// SetThreshold sets the fuzziness threshold
func (f *FilteredProvider) SetThreshold(threshold float64) {
	if threshold == f.query.Threshold {
		return
	}
	f.query.Threshold = threshold
	f.dirty = true
}

// SetShowAll chooses between the full document and the matches only
func (f *FilteredProvider) SetShowAll(showAll bool) {
	f.showAll = showAll
}

// ToggleShowAll flips the show-all flag
func (f *FilteredProvider) ToggleShowAll() bool {
	f.showAll = !f.showAll
	return f.showAll
}

// ShowAll reports whether the full document is displayed
func (f *FilteredProvider) ShowAll() bool {
	return f.showAll
}

// HasQuery returns true if a query is active
func (f *FilteredProvider) HasQuery() bool {
	return !f.query.Empty()
}

// MarkDirty marks the search result as needing rebuild
func (f *FilteredProvider) MarkDirty() {
	f.dirty = true
}

// Rebuild recomputes the match result if the document or query changed.
// It reports whether the displayed sequence may have changed. With no query
// nothing is searched; lines are read straight from the document.
func (f *FilteredProvider) Rebuild() bool {
	if !f.dirty && !f.changed {
		return false
	}

	switch {
	case f.query.Empty():
		f.result = nil
		f.byNumber = nil
	case f.dirty:
		f.result = search.Search(f.source.Document().Lines(), f.query, f.matcher)
		f.byNumber = make(map[int][]search.Range, len(f.result))
		for _, m := range f.result {
			f.byNumber[m.Line.Number] = m.Ranges
		}
	case f.grewFrom >= 0:
		f.searchTail(f.grewFrom)
	}

	f.dirty = false
	f.changed = false
	f.grewFrom = -1
	return true
}

// searchTail drops matches at or after line index from and searches the
// document from there. Result stays sorted by line number.
func (f *FilteredProvider) searchTail(from int) {
	keep := len(f.result)
	for keep > 0 && f.result[keep-1].Line.Number > from {
		keep--
		delete(f.byNumber, f.result[keep].Line.Number)
	}
	f.result = f.result[:keep]

	tail := search.Search(f.source.Document().LinesFrom(from), f.query, f.matcher)
	for _, m := range tail {
		f.byNumber[m.Line.Number] = m.Ranges
	}
	f.result = append(f.result, tail...)
}

// Result returns the current match result. With no query that is every
// line, built on demand.
func (f *FilteredProvider) Result() search.Result {
	f.Rebuild()
	if f.query.Empty() {
		return search.Search(f.source.Document().Lines(), f.query, f.matcher)
	}
	return f.result
}

// MatchCount returns the number of matching lines, or zero with no query
func (f *FilteredProvider) MatchCount() int {
	f.Rebuild()
	if f.query.Empty() {
		return 0
	}
	return len(f.result)
}

func (f *FilteredProvider) displaysResult() bool {
	return !f.query.Empty() && !f.showAll
}

// LineCount returns total number of displayed lines
func (f *FilteredProvider) LineCount() int {
	f.Rebuild()

	if f.displaysResult() {
		return len(f.result)
	}
	return f.source.LineCount()
}

// GetLine returns line at displayed index
func (f *FilteredProvider) GetLine(idx int) (*Line, error) {
	f.Rebuild()

	if f.displaysResult() {
		if idx < 0 || idx >= len(f.result) {
			return nil, nil
		}
		m := f.result[idx]
		return &Line{Line: m.Line, Ranges: m.Ranges, Matched: true}, nil
	}

	line, err := f.source.GetLine(idx)
	if err != nil {
		return nil, err
	}
	if ranges, ok := f.byNumber[line.Number]; ok {
		line.Ranges = ranges
		line.Matched = true
	}
	return line, nil
}

// GetLines returns a range of displayed lines
func (f *FilteredProvider) GetLines(start, count int) ([]*Line, error) {
	var lines []*Line
	for i := start; i < start+count && i < f.LineCount(); i++ {
		line, err := f.GetLine(i)
		if err != nil {
			return lines, err
		}
		if line != nil {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// OriginalLineNumber returns the document line number shown at a displayed
// index, or -1 when out of range
func (f *FilteredProvider) OriginalLineNumber(displayed int) int {
	line, err := f.GetLine(displayed)
	if err != nil || line == nil {
		return -1
	}
	return line.Number
}
