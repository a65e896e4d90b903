package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/logview/internal/config"
	"github.com/TimelordUK/logview/internal/index"
	"github.com/TimelordUK/logview/internal/render"
)

func newStreamingPane(lines int) (*Pane, *index.Store) {
	cfg := config.DefaultConfig()
	pane := NewPane(cfg, nil, render.PlainHighlighter{})
	pane.SetSize(80, 20)

	store := index.NewStore()
	pane.SetDocument(store.Update(strings.Repeat("GET /home.html 200\n", lines)))
	return pane, store
}

func TestPaneStreamingKeepsWindowBounded(t *testing.T) {
	pane, store := newStreamingPane(100_000)

	for i := 0; i < 200; i++ {
		pane.SetDocument(store.Append("\nGET /next 200"))
	}

	require.Equal(t, 100_001+200, pane.Window().Length())
	require.True(t, pane.Window().AtEnd())
	require.LessOrEqual(t, pane.Mounted(), 20+2*config.DefaultConfig().Display.Overscan)
	require.Contains(t, pane.View(), "GET /next 200")
}

func TestPaneStreamingWithQueryMatchesNewLines(t *testing.T) {
	pane, store := newStreamingPane(1_000)
	pane.SetQuery("next")
	require.Zero(t, pane.MatchCount())

	for i := 0; i < 5; i++ {
		pane.SetDocument(store.Append("\nGET /next 200"))
	}
	require.Equal(t, 5, pane.MatchCount())
	require.Equal(t, 5, pane.Window().Length())
}

func benchmarkPaneAppend(b *testing.B, lines int) {
	pane, store := newStreamingPane(lines)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pane.SetDocument(store.Append("\nGET /next 200"))
	}
}

func BenchmarkPaneAppend1k(b *testing.B)   { benchmarkPaneAppend(b, 1_000) }
func BenchmarkPaneAppend500k(b *testing.B) { benchmarkPaneAppend(b, 500_000) }
