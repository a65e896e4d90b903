package index

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		texts []string
	}{
		{name: "empty", raw: "", texts: []string{""}},
		{name: "single line", raw: "hello", texts: []string{"hello"}},
		{name: "three lines", raw: "a\nb\nc", texts: []string{"a", "b", "c"}},
		{name: "trailing newline", raw: "a\n", texts: []string{"a", ""}},
		{name: "only newline", raw: "\n", texts: []string{"", ""}},
		{name: "crlf", raw: "a\r\nb\r\n", texts: []string{"a", "b", ""}},
		{name: "blank middle", raw: "a\n\nb", texts: []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(tt.raw)
			require.Equal(t, len(tt.texts), doc.Len())
			require.Equal(t, tt.texts, doc.Texts())
			for i, line := range doc.Lines() {
				require.Equal(t, i+1, line.Number)
			}
		})
	}
}

func TestDocumentLineOutOfRange(t *testing.T) {
	doc := NewDocument("a\nb")

	_, ok := doc.Line(-1)
	require.False(t, ok)
	_, ok = doc.Line(2)
	require.False(t, ok)
	require.Equal(t, -1, doc.ByteOffset(5))
	require.Equal(t, 2, doc.ByteOffset(1))
}

func TestDocumentNeverEmpty(t *testing.T) {
	inputs := []string{"", "\n\n", "x", strings.Repeat("line\n", 50)}
	for _, raw := range inputs {
		doc := NewDocument(raw)
		require.GreaterOrEqual(t, doc.Len(), 1)
		for i, line := range doc.Lines() {
			require.Equal(t, i+1, line.Number)
		}
	}
}

func TestStoreChange(t *testing.T) {
	s := NewStore()
	require.Equal(t, 1, s.Document().Len())

	doc, change := s.Update("a\nb\nc")
	require.Equal(t, ChangeGrew, change)
	require.Equal(t, 3, doc.Len())

	_, change = s.Update("x\ny\nz")
	require.Equal(t, ChangeReset, change, "same line count is a replace")

	_, change = s.Update("x")
	require.Equal(t, ChangeReset, change)

	_, change = s.Append("\nnext")
	require.Equal(t, ChangeGrew, change)

	_, change = s.Append(" tail")
	require.Equal(t, ChangeReset, change, "appending without a newline adds no line")
}

func TestStoreAppendMatchesUpdate(t *testing.T) {
	chunks := []string{"first", "\nsecond", "\r\nthird\n", "", "\nfourth\nfifth"}

	s := NewStore()
	s.Update("")
	raw := ""
	for _, chunk := range chunks {
		prev := s.Document()
		prevTexts := prev.Texts()

		doc, _ := s.Append(chunk)
		raw += chunk

		require.Equal(t, raw, doc.Text())
		require.Equal(t, NewDocument(raw).Texts(), doc.Texts())
		require.Equal(t, prevTexts, prev.Texts(), "previous revision must not change")
	}
}

func TestStoreAppendKeepsOlderRevisions(t *testing.T) {
	s := NewStore()
	base, _ := s.Update("a\nb")

	revisions := []*Document{base}
	for _, chunk := range []string{"\nc", "\nd", "e", "\nf"} {
		doc, _ := s.Append(chunk)
		revisions = append(revisions, doc)
	}

	require.Equal(t, []string{"a", "b"}, base.Texts())
	require.Equal(t, []string{"a", "b", "c"}, revisions[1].Texts())
	require.Equal(t, []string{"a", "b", "c", "de"}, revisions[3].Texts())
	require.Equal(t, "a\nb\nc\nde\nf", revisions[4].Text())
}

func TestDocumentExtends(t *testing.T) {
	s := NewStore()
	base, _ := s.Update("a")
	grown, _ := s.Append("\nb")

	require.True(t, grown.Extends(base))
	require.True(t, grown.Extends(grown))
	require.False(t, base.Extends(grown))
	require.False(t, grown.Extends(nil))

	replaced, _ := s.Update("a\nb\nc")
	require.False(t, replaced.Extends(grown), "update starts a new lineage")
	require.False(t, NewDocument("a").Extends(NewDocument("a")))
}

func TestDocumentLinesFrom(t *testing.T) {
	doc := NewDocument("a\nb\nc")

	require.Equal(t, []Line{{Number: 2, Text: "b"}, {Number: 3, Text: "c"}}, doc.LinesFrom(1))
	require.Equal(t, doc.Lines(), doc.LinesFrom(-4))
	require.Nil(t, doc.LinesFrom(3))
	require.Equal(t, 5, doc.Size())
}

// Appending a short line to a large document must not copy the document
func TestStoreAppendCostIsIndependentOfSize(t *testing.T) {
	s := NewStore()
	s.Update(strings.Repeat("GET /index.html 200 1024\n", 200_000)) // ~5MB

	const appends = 1000
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	for i := 0; i < appends; i++ {
		s.Append("\nGET /next 200")
	}
	runtime.ReadMemStats(&after)

	size := uint64(s.Document().Size())
	allocated := after.TotalAlloc - before.TotalAlloc
	// Geometric growth copies the document a bounded number of times,
	// not once per append
	require.Less(t, allocated, 8*size, "allocated %d bytes for %d appends", allocated, appends)
	require.Equal(t, 200_000+1+appends, s.Document().Len())
}

func BenchmarkStoreAppend(b *testing.B) {
	s := NewStore()
	s.Update(strings.Repeat("GET /index.html 200 1024\n", 100_000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Append("\nGET /next 200")
	}
}
