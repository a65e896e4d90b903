package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/TimelordUK/logview/internal/config"
	"github.com/TimelordUK/logview/internal/index"
	"github.com/TimelordUK/logview/internal/ingest"
	"github.com/TimelordUK/logview/internal/render"
	"github.com/TimelordUK/logview/internal/search"
	"github.com/TimelordUK/logview/internal/view"
)

// Mode represents the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

// chrome is the rows taken by the header and help line
const chrome = 2

type (
	// eventMsg carries one ingestion event into the loop
	eventMsg struct{ ev ingest.Event }
	// queryTickMsg fires when the search box has been still long enough
	queryTickMsg struct{ seq int }
)

// Options supplies the capabilities a Model runs with. Zero values pick
// the defaults.
type Options struct {
	Matcher     search.Matcher
	Highlighter render.Highlighter
	Format      ingest.FormatFunc
	Transport   ingest.Transport
	Lock        PageLock
	Logger      *zap.Logger

	// Standalone lets the quit keys end the program
	Standalone bool
	// Fullscreen starts the widget filling the terminal
	Fullscreen bool
}

// Model is the widget's top-level state: ingestion, query, show-all and
// fullscreen
type Model struct {
	config     *config.Config
	store      *index.Store
	controller *ingest.Controller
	pane       *Pane
	keys       KeyMap
	logger     *zap.Logger

	searchInput textinput.Model
	spinner     spinner.Model
	help        help.Model

	mode       Mode
	fullscreen bool
	lock       PageLock
	locked     bool
	standalone bool
	startFull  bool
	mounted    bool
	unmounted  bool

	// Debounce state
	querySeq int
	debounce time.Duration

	termWidth  int
	termHeight int

	headerStyle lipgloss.Style
	statusStyle lipgloss.Style
}

// New creates a widget for cfg
func New(cfg *config.Config, opts Options) (*Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	format := opts.Format
	if format == nil && cfg.Source.Format != "" {
		f, err := ingest.JQFormat(cfg.Source.Format)
		if err != nil {
			return nil, fmt.Errorf("source format: %w", err)
		}
		format = f
	}

	highlighter := opts.Highlighter
	if highlighter == nil {
		highlighter = render.NewChromaHighlighter(cfg.Theme.SyntaxStyle, cfg.Theme.Formatter)
	}

	lock := opts.Lock
	if lock == nil {
		lock = AltScreenLock{}
	}

	store := index.NewStore()
	controller := ingest.NewController(store, ingest.Options{
		URL:       cfg.Source.URL,
		Websocket: cfg.Source.Websocket,
		Text:      cfg.Source.Text,
		Format:    format,
		Transport: opts.Transport,
		Logger:    logger,
	})

	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = "/ "
	ti.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		config:      cfg,
		store:       store,
		controller:  controller,
		pane:        NewPane(cfg, opts.Matcher, highlighter),
		keys:        NewKeyMap(cfg.Keybindings),
		logger:      logger,
		searchInput: ti,
		spinner:     sp,
		help:        help.New(),
		lock:        lock,
		standalone:  opts.Standalone,
		startFull:   opts.Fullscreen,
		debounce:    cfg.Search.Debounce.Duration,
		termWidth:   80,
		termHeight:  24,
	}
	if !cfg.Display.RemoveDefaultTheme {
		m.headerStyle = lipgloss.NewStyle().Bold(true).
			Background(lipgloss.Color(cfg.Theme.StatusBar)).
			Foreground(lipgloss.Color(cfg.Theme.StatusBarText))
		m.statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.LineNumbers))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.SearchMatch))
	}
	m.layout()
	return m, nil
}

// Init implements tea.Model. It mounts the widget and starts ingestion.
func (m *Model) Init() tea.Cmd {
	if m.mounted {
		return nil
	}
	m.mounted = true

	m.apply(m.controller.Start())
	m.logger.Debug("widget mounted", zap.Stringer("mode", m.controller.Mode()))

	var cmds []tea.Cmd
	if m.startFull {
		cmds = append(cmds, m.SetFullscreen(true))
	}
	if m.controller.Mode() != ingest.ModeStatic {
		cmds = append(cmds, waitForEvent(m.controller.Events()), m.spinner.Tick)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// waitForEvent blocks until the next ingestion event. It yields nil once
// the channel is closed, which ends the chain.
func waitForEvent(events <-chan ingest.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.unmounted {
		return m, nil
	}

	switch msg := msg.(type) {
	case eventMsg:
		m.apply(m.controller.Handle(msg.ev))
		return m, waitForEvent(m.controller.Events())

	case queryTickMsg:
		if msg.seq == m.querySeq {
			m.applyQuery()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.controller.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.layout()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// apply hands a store update to the pane
func (m *Model) apply(up ingest.Update) {
	if !up.Changed {
		return
	}
	m.pane.SetDocument(up.Document, up.Change)
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.pane.Scroll(func(w *view.Window) { w.ScrollUp(3) })
	case tea.MouseButtonWheelDown:
		m.pane.Scroll(func(w *view.Window) { w.ScrollDown(3) })
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC && m.standalone {
		return m, m.quit()
	}
	// Handle mode-specific input
	if m.mode == ModeSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.standalone {
			return m, m.quit()
		}

	case key.Matches(msg, m.keys.Escape):
		if m.fullscreen {
			return m, m.SetFullscreen(false)
		}

	case key.Matches(msg, m.keys.Fullscreen):
		return m, m.SetFullscreen(!m.fullscreen)

	case key.Matches(msg, m.keys.Search):
		if m.config.Search.Enabled {
			m.mode = ModeSearch
			return m, m.searchInput.Focus()
		}

	case key.Matches(msg, m.keys.ShowAll), key.Matches(msg, m.keys.Submit):
		m.pane.ToggleShowAll()

	case key.Matches(msg, m.keys.SelectUp):
		m.moveOrScroll(-1)
	case key.Matches(msg, m.keys.SelectDown):
		m.moveOrScroll(1)

	case key.Matches(msg, m.keys.ScrollDown):
		m.pane.Scroll(func(w *view.Window) { w.ScrollDown(1) })
	case key.Matches(msg, m.keys.ScrollUp):
		m.pane.Scroll(func(w *view.Window) { w.ScrollUp(1) })

	case key.Matches(msg, m.keys.PageDown):
		m.pane.Scroll((*view.Window).PageDown)
	case key.Matches(msg, m.keys.PageUp):
		m.pane.Scroll((*view.Window).PageUp)

	case key.Matches(msg, m.keys.Top):
		m.pane.Scroll((*view.Window).GotoTop)
	case key.Matches(msg, m.keys.Bottom):
		m.pane.Scroll((*view.Window).ScrollToEnd)
	}

	return m, nil
}

func (m *Model) moveOrScroll(delta int) {
	if m.config.Display.SelectableLines {
		m.pane.MoveSelection(delta)
		return
	}
	m.pane.Scroll(func(w *view.Window) { w.ScrollDown(delta) })
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.applyQuery()
		m.pane.ToggleShowAll()
		m.leaveSearch()
		return m, nil

	case "esc":
		m.leaveSearch()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.scheduleQuery())
}

func (m *Model) leaveSearch() {
	m.mode = ModeNormal
	m.searchInput.Blur()
}

// scheduleQuery debounces query changes: only the newest tick applies
func (m *Model) scheduleQuery() tea.Cmd {
	m.querySeq++
	if m.debounce <= 0 {
		m.applyQuery()
		return nil
	}
	seq := m.querySeq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return queryTickMsg{seq: seq}
	})
}

func (m *Model) applyQuery() {
	query := m.searchInput.Value()
	if query == m.pane.Query() {
		return
	}
	m.pane.SetQuery(query)
	m.logger.Debug("query applied", zap.String("query", query), zap.Int("matches", m.pane.MatchCount()))
}

// SetFullscreen enters or leaves fullscreen, taking or releasing the page
// lock
func (m *Model) SetFullscreen(on bool) tea.Cmd {
	if on == m.fullscreen {
		return nil
	}
	m.fullscreen = on
	m.layout()

	if on {
		m.locked = true
		return m.lock.Lock()
	}
	m.locked = false
	return m.lock.Unlock()
}

func (m *Model) quit() tea.Cmd {
	return tea.Sequence(m.Unmount(), tea.Quit)
}

// Unmount tears the widget down: ingestion stops and the page lock is
// released. Events arriving afterwards are dropped.
func (m *Model) Unmount() tea.Cmd {
	if m.unmounted {
		return nil
	}
	m.unmounted = true
	m.controller.Close()
	m.logger.Debug("widget unmounted")

	if m.locked {
		m.locked = false
		return m.lock.Unlock()
	}
	return nil
}

// Close unmounts the widget for hosts that are not running a program
// anymore. The page lock is released through PageLock.Unlock; the command it
// returns is dropped, so hosts still inside a program should use Unmount.
func (m *Model) Close() error {
	m.Unmount()
	return nil
}

// SetText replaces static content, as when the host's text option changes
func (m *Model) SetText(text string) {
	if m.unmounted {
		return
	}
	m.config.Source.Text = text
	m.apply(m.controller.SetText(text))
}

// SetFollow reconfigures follow mode
func (m *Model) SetFollow(follow bool) {
	m.config.Source.Follow = follow
	m.pane.SetFollowing(follow)
}

// SetSize overrides the widget size in cells; zero fills the terminal
func (m *Model) SetSize(width, height int) {
	m.config.Display.Width = width
	m.config.Display.Height = height
	m.layout()
}

// State returns the ingestion state
func (m *Model) State() ingest.State {
	return m.controller.State()
}

// Loading reports whether the widget is waiting for content
func (m *Model) Loading() bool {
	return m.controller.Loading()
}

// Document returns the current document revision
func (m *Model) Document() *index.Document {
	return m.store.Document()
}

// Query returns the applied search text
func (m *Model) Query() string {
	return m.pane.Query()
}

// ShowAll reports whether all lines are shown while a query is applied
func (m *Model) ShowAll() bool {
	return m.pane.ShowAll()
}

// Fullscreen reports whether the widget fills the terminal
func (m *Model) Fullscreen() bool {
	return m.fullscreen
}

// Pane exposes the log body
func (m *Model) Pane() *Pane {
	return m.pane
}

// size returns the widget's outer size in cells
func (m *Model) size() (int, int) {
	width, height := m.termWidth, m.termHeight
	if !m.fullscreen {
		if w := m.config.Display.Width; w > 0 {
			width = min(w, width)
		}
		if h := m.config.Display.Height; h > 0 {
			height = min(h, height)
		}
	}
	return width, height
}

func (m *Model) layout() {
	width, height := m.size()
	m.help.Width = width
	m.searchInput.Width = max(width/3, 10)
	m.pane.SetSize(width, max(height-chrome, 1))
}

// View implements tea.Model
func (m *Model) View() string {
	if m.unmounted {
		return ""
	}
	width, _ := m.size()

	var builder strings.Builder
	builder.WriteString(m.headerView(width))
	builder.WriteString("\n")

	if m.controller.Loading() {
		_, height := m.size()
		loading := m.spinner.View() + " Loading..."
		builder.WriteString(loading)
		builder.WriteString(strings.Repeat("\n", max(height-chrome-1, 0)))
	} else {
		builder.WriteString(m.pane.View())
	}
	builder.WriteString("\n")

	builder.WriteString(m.statusStyle.Render(ansi.Truncate(m.help.View(m.keys), width, "…")))
	return builder.String()
}

func (m *Model) headerView(width int) string {
	var parts []string
	if title := m.config.Display.Title; title != "" {
		parts = append(parts, title)
	}
	if m.config.Search.Enabled && (m.mode == ModeSearch || m.searchInput.Value() != "") {
		parts = append(parts, m.searchInput.View())
	}

	var status []string
	if m.pane.HasQuery() {
		status = append(status, fmt.Sprintf("%d matches", m.pane.MatchCount()))
		if m.pane.ShowAll() {
			status = append(status, "all lines")
		}
	}
	status = append(status, fmt.Sprintf("%d lines", m.store.Document().Len()))
	if m.pane.IsFollowing() {
		status = append(status, "follow")
	}
	switch m.controller.State() {
	case ingest.Streaming:
		status = append(status, "live")
	case ingest.Closed:
		status = append(status, "disconnected")
	}

	left := strings.Join(parts, "  ")
	right := strings.Join(status, " · ")
	gap := max(width-ansi.StringWidth(left)-ansi.StringWidth(right)-2, 1)
	line := " " + left + strings.Repeat(" ", gap) + right + " "
	return m.headerStyle.Render(ansi.Truncate(line, width, "…"))
}
