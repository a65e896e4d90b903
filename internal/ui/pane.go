package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/TimelordUK/logview/internal/config"
	"github.com/TimelordUK/logview/internal/index"
	"github.com/TimelordUK/logview/internal/render"
	"github.com/TimelordUK/logview/internal/search"
	"github.com/TimelordUK/logview/internal/source"
	"github.com/TimelordUK/logview/internal/view"
)

// Pane is the log body: the displayed sequence, its virtualized window and
// the rows mounted for it
type Pane struct {
	provider   *source.FilteredProvider
	window     *view.Window
	follower   *view.Follower
	reconciler *view.Reconciler
	rows       *rowCache
	renderer   *render.RowRenderer

	width     int
	height    int
	digits    int
	scrollBar bool

	selectable bool
	selected   int // line number, 0 for none

	emptyStyle lipgloss.Style
	thumbStyle lipgloss.Style
	trackStyle lipgloss.Style
}

// NewPane creates a pane over an empty document
func NewPane(cfg *config.Config, matcher search.Matcher, highlighter render.Highlighter) *Pane {
	provider := source.NewFilteredProvider(source.NewDocumentSource(nil), matcher)
	provider.SetThreshold(cfg.Search.Threshold)

	window := view.NewWindow(1, cfg.Display.Overscan)
	window.SetMaxRealized(cfg.Display.MaxLines)

	p := &Pane{
		provider:   provider,
		window:     window,
		follower:   view.NewFollower(cfg.Source.Follow, window),
		renderer:   render.NewRowRenderer(render.NewOverlay(highlighter), cfg),
		digits:     1,
		scrollBar:  !cfg.Display.NoScrollBar,
		selectable: cfg.Display.SelectableLines,
	}
	p.rows = newRowCache(p.renderRow)
	p.reconciler = view.NewReconciler(p.rows, provider.OriginalLineNumber)

	if !cfg.Display.RemoveDefaultTheme {
		p.emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.LineNumbers))
		p.thumbStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.SearchMatch))
		p.trackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Border))
	}

	p.refresh()
	return p
}

// SetSize sets the pane dimensions in cells
func (p *Pane) SetSize(width, height int) {
	if width != p.width {
		p.rows.Invalidate()
	}
	p.width = max(width, 0)
	p.height = max(height, 0)
	p.window.SetHeight(p.height)
	p.sync()
}

// SetDocument installs a new revision and lets follow react to it
func (p *Pane) SetDocument(doc *index.Document, change index.Change) {
	p.provider.SetDocument(doc)
	p.refresh()
	p.follower.DocumentChanged(change)
	p.sync()
}

// Document returns the current revision
func (p *Pane) Document() *index.Document {
	return p.provider.Document()
}

// SetQuery changes the search text
func (p *Pane) SetQuery(text string) {
	p.provider.SetQuery(text)
	p.refresh()
	p.sync()
}

// Query returns the applied search text
func (p *Pane) Query() string {
	return p.provider.Query().Text
}

// ToggleShowAll switches between all lines and matches only
func (p *Pane) ToggleShowAll() bool {
	showAll := p.provider.ToggleShowAll()
	p.window.SetLength(p.provider.LineCount())
	p.rows.Invalidate()
	p.sync()
	return showAll
}

// ShowAll reports whether all lines are displayed
func (p *Pane) ShowAll() bool {
	return p.provider.ShowAll()
}

// MatchCount returns the number of lines matching the query
func (p *Pane) MatchCount() int {
	return p.provider.MatchCount()
}

// HasQuery reports whether a query is applied
func (p *Pane) HasQuery() bool {
	return p.provider.HasQuery()
}

// SetFollowing reconfigures follow
func (p *Pane) SetFollowing(following bool) {
	p.follower.SetEnabled(following)
}

// IsFollowing returns whether follow mode is active
func (p *Pane) IsFollowing() bool {
	return p.follower.Following()
}

// Window returns the pane's virtualized window
func (p *Pane) Window() *view.Window {
	return p.window
}

// Selected returns the selected line number, 0 for none
func (p *Pane) Selected() int {
	return p.selected
}

// Mounted returns the number of realized rows
func (p *Pane) Mounted() int {
	return p.rows.Len()
}

// Scroll applies a scrolling action and re-syncs the mounted rows
func (p *Pane) Scroll(action func(w *view.Window)) {
	action(p.window)
	p.sync()
}

// MoveSelection moves the selected line by delta displayed rows, keeping
// it in view
func (p *Pane) MoveSelection(delta int) {
	if !p.selectable || p.provider.LineCount() == 0 {
		return
	}

	vis := p.window.Visible()
	idx, ok := p.reconciler.IndexOf(p.selected)
	if !ok {
		// Nothing selected in view yet, start at the top row
		idx, delta = vis.First, 0
	}
	idx = min(max(idx+delta, 0), p.provider.LineCount()-1)

	prev := p.selected
	p.selected = p.provider.OriginalLineNumber(idx)
	p.rows.InvalidateKey(prev)
	p.rows.InvalidateKey(p.selected)

	switch {
	case idx < vis.First:
		p.window.ScrollToItem(idx)
	case idx > vis.Last:
		p.window.ScrollToItem(idx - p.window.PageItems() + 1)
	}
	p.sync()
}

// refresh rebuilds the displayed sequence if its inputs changed
func (p *Pane) refresh() {
	if !p.provider.Rebuild() {
		return
	}
	p.window.SetLength(p.provider.LineCount())
	p.rows.Invalidate()
	p.digits = render.Digits(p.provider.Document().Len())
}

// sync recomputes the realized window and mounts rows for it
func (p *Pane) sync() {
	p.reconciler.Reconcile(p.window.Update())
}

func (p *Pane) contentWidth() int {
	if p.scrollBar && p.width > 1 {
		return p.width - 1
	}
	return p.width
}

func (p *Pane) renderRow(idx int) string {
	line, err := p.provider.GetLine(idx)
	if err != nil || line == nil {
		return ""
	}
	return p.renderer.Render(render.Row{
		Line:     line.Line,
		Ranges:   line.Ranges,
		Dimmed:   p.provider.HasQuery() && p.provider.ShowAll() && !line.Matched,
		Selected: p.selectable && line.Number == p.selected,
	}, p.digits, p.contentWidth())
}

// View renders the visible rows
func (p *Pane) View() string {
	if p.height == 0 {
		return ""
	}

	vis := p.window.Visible()
	lines := make([]string, 0, p.height)
	for i := vis.First; i <= vis.Last; i++ {
		row, ok := p.rows.Row(p.provider.OriginalLineNumber(i))
		if !ok {
			row = p.renderRow(i)
		}
		lines = append(lines, row)
	}

	if len(lines) == 0 && p.provider.HasQuery() {
		lines = append(lines, p.emptyStyle.Render("No matches"))
	}
	// Pad with empty lines if needed
	for len(lines) < p.height {
		lines = append(lines, p.emptyStyle.Render("~"))
	}

	if p.scrollBar && p.width > 1 {
		bar := p.scrollColumn()
		width := p.contentWidth()
		for i, line := range lines {
			line = ansi.Truncate(line, width, "")
			pad := width - ansi.StringWidth(line)
			lines[i] = line + strings.Repeat(" ", max(pad, 0)) + bar[i]
		}
	}
	return strings.Join(lines, "\n")
}

// scrollColumn draws one scrollbar cell per row
func (p *Pane) scrollColumn() []string {
	cells := make([]string, p.height)
	total := p.window.Length()
	if total <= p.height {
		for i := range cells {
			cells[i] = " "
		}
		return cells
	}

	thumb := max(p.height*p.height/total, 1)
	top := int(p.window.PercentScrolled() / 100 * float64(p.height-thumb))
	for i := range cells {
		if i >= top && i < top+thumb {
			cells[i] = p.thumbStyle.Render("┃")
		} else {
			cells[i] = p.trackStyle.Render("│")
		}
	}
	return cells
}
