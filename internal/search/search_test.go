package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/logview/internal/index"
)

// reverseMatcher returns every entry containing the query, in reverse order,
// with ranges deliberately unsorted.
type reverseMatcher struct {
	calls         int
	preserveOrder bool
}

func (r *reverseMatcher) Match(query string, corpus []string, _ float64, preserveOrder bool) []Hit {
	r.calls++
	r.preserveOrder = preserveOrder
	var hits []Hit
	for i := len(corpus) - 1; i >= 0; i-- {
		idx := strings.Index(corpus[i], query)
		if idx < 0 {
			continue
		}
		hits = append(hits, Hit{Index: i, Ranges: []Range{
			{Start: idx + len(query) - 1, End: idx + len(query) - 1},
			{Start: idx, End: idx},
		}})
	}
	hits = append(hits, Hit{Index: 0}) // no ranges, must be dropped
	return hits
}

func linesOf(texts ...string) []index.Line {
	return index.NewDocument(strings.Join(texts, "\n")).Lines()
}

func TestSearchEmptyQueryPassThrough(t *testing.T) {
	lines := linesOf("one", "two", "three")
	m := &reverseMatcher{}

	result := Search(lines, Query{Text: "", Threshold: 0.4}, m)

	require.Len(t, result, 3)
	for i, match := range result {
		require.Equal(t, lines[i], match.Line)
		require.Empty(t, match.Ranges)
	}
	require.Zero(t, m.calls, "matcher is not consulted for an empty query")
}

func TestSearchRestoresLineOrder(t *testing.T) {
	lines := linesOf("err one", "ok", "err two", "err three")
	m := &reverseMatcher{}

	result := Search(lines, Query{Text: "err", Threshold: 0.4}, m)

	require.True(t, m.preserveOrder)
	require.Len(t, result, 3)
	require.Equal(t, []int{1, 3, 4}, []int{result[0].Line.Number, result[1].Line.Number, result[2].Line.Number})
	for _, match := range result {
		require.NotEmpty(t, match.Ranges)
		require.LessOrEqual(t, match.Ranges[0].Start, match.Ranges[1].Start)
	}
}

func TestSearchScenarioBanana(t *testing.T) {
	lines := linesOf("apple", "banana", "cherry")

	result := Search(lines, Query{Text: "b", Threshold: 0.4}, NewFuzzyMatcher())

	require.Len(t, result, 1)
	require.Equal(t, "banana", result[0].Line.Text)
	require.Equal(t, 2, result[0].Line.Number)
	require.Equal(t, Range{Start: 0, End: 0}, result[0].Ranges[0])
}

func TestSearchEveryResultHasRanges(t *testing.T) {
	lines := linesOf(
		"127.0.0.1 - - [10/Oct/2024:13:55:36] \"GET /index.html HTTP/1.1\" 200 2326",
		"10.0.0.7 - - [10/Oct/2024:13:55:37] \"POST /api/login HTTP/1.1\" 401 12",
		"",
		"worker started",
		"GET failed for /health",
	)
	queries := []string{"get", "g", "401", "wrk", "xyz", " "}
	for _, q := range queries {
		for _, threshold := range []float64{0, 0.4, 1} {
			result := Search(lines, Query{Text: q, Threshold: threshold}, NewFuzzyMatcher())
			for _, match := range result {
				require.NotEmpty(t, match.Ranges, "query %q threshold %v line %q", q, threshold, match.Line.Text)
			}
		}
	}
}

func TestSearchIdempotent(t *testing.T) {
	lines := linesOf("alpha beta", "gamma", "beta delta", "epsilon")
	q := Query{Text: "bta", Threshold: 1}
	m := NewFuzzyMatcher()

	first := Search(lines, q, m)
	second := Search(lines, q, m)

	require.Equal(t, first, second)
}

func TestFuzzyMatcherThreshold(t *testing.T) {
	corpus := []string{"banana", "BANANA split", "bandana", "cherry"}
	m := NewFuzzyMatcher()

	exact := m.Match("ana", corpus, 0, true)
	require.Equal(t, []int{0, 1, 2}, hitIndexes(exact))
	for _, hit := range exact {
		require.Zero(t, hit.Cost)
		require.Len(t, hit.Ranges, 1)
	}
	require.Equal(t, Range{Start: 1, End: 3}, exact[1].Ranges[0], "case-insensitive substring")

	none := m.Match("bnn", corpus, 0, true)
	require.Empty(t, none, "threshold 0 only accepts contiguous matches")

	loose := m.Match("bnn", corpus, 1, true)
	require.NotEmpty(t, loose)
	for _, hit := range loose {
		require.Greater(t, hit.Cost, 0.0)
		require.LessOrEqual(t, hit.Cost, 1.0)
		for _, r := range hit.Ranges {
			require.LessOrEqual(t, r.Start, r.End)
			require.Less(t, r.End, len(corpus[hit.Index]))
		}
	}
}

func TestFuzzyMatcherOrdering(t *testing.T) {
	corpus := []string{"b x x x n x x x n", "bnn", "b n n"}
	m := NewFuzzyMatcher()

	ordered := m.Match("bnn", corpus, 1, true)
	require.Equal(t, []int{0, 1, 2}, hitIndexes(ordered))

	ranked := m.Match("bnn", corpus, 1, false)
	require.Equal(t, 1, ranked[0].Index, "exact match ranks first")
	for i := 1; i < len(ranked); i++ {
		require.LessOrEqual(t, ranked[i-1].Cost, ranked[i].Cost)
	}
}

func TestFuzzyMatcherMultibyte(t *testing.T) {
	m := NewFuzzyMatcher()
	hits := m.Match("é", []string{"café au lait"}, 0.4, true)

	require.Len(t, hits, 1)
	r := hits[0].Ranges[0]
	require.Equal(t, "é", "café au lait"[r.Start:r.End+1])
}

func TestRunsFromIndexes(t *testing.T) {
	s := "héllo"
	ranges := runsFromIndexes(s, []int{0, 1, 3, 5, 99})
	require.Equal(t, []Range{{Start: 0, End: 3}, {Start: 5, End: 5}}, ranges)
}

func TestClampThreshold(t *testing.T) {
	require.Equal(t, 0.0, clampThreshold(-1))
	require.Equal(t, 1.0, clampThreshold(3))
	require.Equal(t, 0.4, clampThreshold(0.4))
}

func hitIndexes(hits []Hit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Index
	}
	return out
}
