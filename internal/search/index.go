package search

import (
	"cmp"
	"slices"

	"github.com/TimelordUK/logview/internal/index"
)

// DefaultThreshold is the fuzziness used when none is configured
const DefaultThreshold = 0.4

// Query is the user's search text with its fuzziness threshold in [0,1]
type Query struct {
	Text      string
	Threshold float64
}

// Empty reports whether the query passes every line through
func (q Query) Empty() bool {
	return q.Text == ""
}

// Match is a line of the result with its matched ranges, sorted ascending
type Match struct {
	Line   index.Line
	Ranges []Range
}

// Result is the filtered view of a document for a query, in line order
type Result []Match

// Search filters lines by q. An empty query returns every line unchanged.
// Matcher output is always put back into ascending line order: a log keeps
// its chronology while filtered.
func Search(lines []index.Line, q Query, m Matcher) Result {
	if q.Empty() {
		result := make(Result, len(lines))
		for i, line := range lines {
			result[i] = Match{Line: line}
		}
		return result
	}

	corpus := make([]string, len(lines))
	for i, line := range lines {
		corpus[i] = line.Text
	}

	hits := m.Match(q.Text, corpus, clampThreshold(q.Threshold), true)
	slices.SortStableFunc(hits, func(a, b Hit) int { return cmp.Compare(a.Index, b.Index) })

	result := make(Result, 0, len(hits))
	for _, hit := range hits {
		if hit.Index < 0 || hit.Index >= len(lines) || len(hit.Ranges) == 0 {
			continue
		}
		result = append(result, Match{
			Line:   lines[hit.Index],
			Ranges: sortRanges(hit.Ranges),
		})
	}
	return result
}

// sortRanges copies ranges sorted by start. Overlaps are left for the
// renderer to resolve.
func sortRanges(ranges []Range) []Range {
	out := slices.Clone(ranges)
	slices.SortStableFunc(out, func(a, b Range) int { return cmp.Compare(a.Start, b.Start) })
	return out
}
