package search

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Range is an inclusive byte range [Start, End] within a line
type Range struct {
	Start int
	End   int
}

// Hit is one matcher result for a corpus entry
type Hit struct {
	Index  int     // position in the corpus
	Ranges []Range // matched byte ranges
	Cost   float64 // 0 is a perfect match, 1 the worst accepted
}

// Matcher is the fuzzy-matching capability. Given a query and a corpus it
// returns the entries whose cost is within threshold. With preserveOrder the
// hits come back in corpus order, otherwise best first.
type Matcher interface {
	Match(query string, corpus []string, threshold float64, preserveOrder bool) []Hit
}

// FuzzyMatcher matches case-insensitively. A contiguous occurrence of the
// query costs 0; otherwise the cost grows with how spread out the matched
// characters are.
type FuzzyMatcher struct{}

// NewFuzzyMatcher returns the default matcher
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{}
}

// Match implements Matcher
func (FuzzyMatcher) Match(query string, corpus []string, threshold float64, preserveOrder bool) []Hit {
	if query == "" {
		return nil
	}
	threshold = clampThreshold(threshold)
	queryRunes := utf8.RuneCountInString(query)

	var hits []Hit
	for _, m := range fuzzy.Find(query, corpus) {
		if start := indexFold(m.Str, query); start >= 0 {
			hits = append(hits, Hit{
				Index:  m.Index,
				Ranges: []Range{{Start: start, End: start + len(query) - 1}},
			})
			continue
		}

		ranges := runsFromIndexes(m.Str, m.MatchedIndexes)
		if len(ranges) == 0 {
			continue
		}
		span := m.Str[ranges[0].Start : ranges[len(ranges)-1].End+1]
		cost := 1 - float64(queryRunes)/float64(utf8.RuneCountInString(span))
		if cost > threshold {
			continue
		}
		hits = append(hits, Hit{Index: m.Index, Ranges: ranges, Cost: cost})
	}

	if preserveOrder {
		slices.SortStableFunc(hits, func(a, b Hit) int { return cmp.Compare(a.Index, b.Index) })
	} else {
		slices.SortStableFunc(hits, func(a, b Hit) int { return cmp.Compare(a.Cost, b.Cost) })
	}
	return hits
}

// indexFold returns the byte index of the first case-insensitive occurrence
// of sub in s, or -1. Only occurrences of the same byte length are found.
func indexFold(s, sub string) int {
	n := len(sub)
	for i := 0; i+n <= len(s); {
		if strings.EqualFold(s[i:i+n], sub) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1
}

// runsFromIndexes merges matched rune start offsets into inclusive byte
// ranges, extending each range to the end of its last rune.
func runsFromIndexes(s string, indexes []int) []Range {
	var ranges []Range
	for _, idx := range indexes {
		if idx < 0 || idx >= len(s) {
			continue
		}
		_, size := utf8.DecodeRuneInString(s[idx:])
		end := idx + size - 1

		if n := len(ranges); n > 0 && ranges[n-1].End+1 == idx {
			ranges[n-1].End = end
			continue
		}
		ranges = append(ranges, Range{Start: idx, End: end})
	}
	return ranges
}

func clampThreshold(t float64) float64 {
	return min(max(t, 0), 1)
}
