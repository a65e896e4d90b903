package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/TimelordUK/logview/internal/config"
	"github.com/TimelordUK/logview/internal/index"
	"github.com/TimelordUK/logview/internal/search"
)

const (
	sgrReset = "\x1b[0m"
	sgrDim   = "\x1b[2m"
	sgrMatch = "\x1b[1;4m"

	barGlyph = "│"
)

// Row is one line as the surface shows it
type Row struct {
	Line     index.Line
	Ranges   []search.Range
	Dimmed   bool // a non-matching line shown while a query is active
	Selected bool
}

// RowRenderer turns rows into single terminal lines: an optional line
// number gutter, a bar, then the highlighted content
type RowRenderer struct {
	overlay     *Overlay
	language    string
	lineNumbers bool

	gutter      lipgloss.Style
	gutterMatch lipgloss.Style
	selected    lipgloss.Style
	bar         lipgloss.Style
}

// NewRowRenderer creates a renderer from display and theme config
func NewRowRenderer(overlay *Overlay, cfg *config.Config) *RowRenderer {
	if overlay == nil {
		overlay = NewOverlay(nil)
	}
	language := cfg.Display.Language
	if language == "" {
		language = DefaultLanguage
	}

	barColor := cfg.Theme.BarLight
	if cfg.Display.Dark {
		barColor = cfg.Theme.BarDark
	}

	r := &RowRenderer{
		overlay:     overlay,
		language:    language,
		lineNumbers: !cfg.Display.HideLines,
	}
	if cfg.Display.RemoveDefaultTheme {
		return r
	}

	r.gutter = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.LineNumbers))
	r.gutterMatch = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.SearchMatch)).Bold(true)
	r.selected = lipgloss.NewStyle().Background(lipgloss.Color(cfg.Theme.Selection)).Reverse(true)
	r.bar = lipgloss.NewStyle().Foreground(lipgloss.Color(barColor))
	return r
}

// Language returns the grammar used for content
func (r *RowRenderer) Language() string {
	return r.language
}

// Render formats a row. digits is the gutter width; width, when positive,
// truncates the result to that many cells.
func (r *RowRenderer) Render(row Row, digits, width int) string {
	var b strings.Builder

	if r.lineNumbers {
		number := fmt.Sprintf("%0*d", digits, row.Line.Number)
		switch {
		case row.Selected:
			b.WriteString(r.selected.Render(number))
		case len(row.Ranges) > 0:
			b.WriteString(r.gutterMatch.Render(number))
		default:
			b.WriteString(r.gutter.Render(number))
		}
		b.WriteString(" ")
	}
	b.WriteString(r.bar.Render(barGlyph))
	b.WriteString(" ")

	content := r.Content(row.Line.Text, row.Ranges)
	if row.Dimmed {
		content = applyEmphasis(content, EmphasisDim)
	}
	b.WriteString(content)

	out := b.String()
	if width > 0 {
		out = ansi.Truncate(out, width, "…")
	}
	return out
}

// Content highlights text and emphasises the given ranges
func (r *RowRenderer) Content(text string, ranges []search.Range) string {
	var b strings.Builder
	for _, seg := range r.overlay.Render(text, r.language, ranges) {
		b.WriteString(applyEmphasis(seg.Markup, seg.Emphasis))
	}
	return b.String()
}

// applyEmphasis wraps markup in the emphasis attribute, re-applying it after
// every reset the highlighter emitted
func applyEmphasis(markup string, emphasis Emphasis) string {
	var sgr string
	switch emphasis {
	case EmphasisDim:
		sgr = sgrDim
	case EmphasisMatch:
		sgr = sgrMatch
	default:
		return markup
	}
	if markup == "" {
		return ""
	}
	return sgr + strings.ReplaceAll(markup, sgrReset, sgrReset+sgr) + sgrReset
}

// Digits returns the gutter width needed for n lines
func Digits(n int) int {
	if n < 1 {
		return 1
	}
	return len(strconv.Itoa(n))
}
