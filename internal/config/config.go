package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all widget configuration
type Config struct {
	Source      SourceConfig     `toml:"source" yaml:"source"`
	Search      SearchConfig     `toml:"search" yaml:"search"`
	Display     DisplayConfig    `toml:"display" yaml:"display"`
	Theme       ThemeConfig      `toml:"theme" yaml:"theme"`
	Keybindings KeybindingConfig `toml:"keybindings" yaml:"keybindings"`
	Logging     LoggingConfig    `toml:"logging" yaml:"logging"`
}

// SourceConfig selects where the log text comes from
type SourceConfig struct {
	URL       string `toml:"url" yaml:"url"`
	Websocket bool   `toml:"websocket" yaml:"websocket"`
	Format    string `toml:"format" yaml:"format"` // jq expression applied to live messages
	Text      string `toml:"text" yaml:"text"`     // static content, bypasses ingestion
	Follow    bool   `toml:"follow" yaml:"follow"`
}

// SearchConfig controls the search box
type SearchConfig struct {
	Enabled   bool     `toml:"enabled" yaml:"enabled"`
	Threshold float64  `toml:"threshold" yaml:"threshold"`
	Debounce  Duration `toml:"debounce" yaml:"debounce"`
}

// DisplayConfig holds presentational options
type DisplayConfig struct {
	Title              string `toml:"title" yaml:"title"`
	Language           string `toml:"language" yaml:"language"`
	Width              int    `toml:"width" yaml:"width"`   // columns, 0 fills the terminal
	Height             int    `toml:"height" yaml:"height"` // rows, 0 fills the terminal
	MaxLines           int    `toml:"max_lines" yaml:"max_lines"`
	Overscan           int    `toml:"overscan" yaml:"overscan"`
	SelectableLines    bool   `toml:"selectable_lines" yaml:"selectable_lines"`
	HideLines          bool   `toml:"hide_lines" yaml:"hide_lines"`
	NoScrollBar        bool   `toml:"no_scroll_bar" yaml:"no_scroll_bar"`
	Dark               bool   `toml:"dark" yaml:"dark"`
	RemoveDefaultTheme bool   `toml:"remove_default_theme" yaml:"remove_default_theme"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	SyntaxStyle   string `toml:"syntax_style" yaml:"syntax_style"`
	Formatter     string `toml:"formatter" yaml:"formatter"`
	LineNumbers   string `toml:"line_numbers" yaml:"line_numbers"`
	BarDark       string `toml:"bar_dark" yaml:"bar_dark"`
	BarLight      string `toml:"bar_light" yaml:"bar_light"`
	SearchMatch   string `toml:"search_match" yaml:"search_match"`
	Selection     string `toml:"selection" yaml:"selection"`
	StatusBar     string `toml:"status_bar" yaml:"status_bar"`
	StatusBarText string `toml:"status_bar_text" yaml:"status_bar_text"`
	Border        string `toml:"border" yaml:"border"`
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit       []string `toml:"quit" yaml:"quit"`
	ScrollUp   []string `toml:"scroll_up" yaml:"scroll_up"`
	ScrollDown []string `toml:"scroll_down" yaml:"scroll_down"`
	PageUp     []string `toml:"page_up" yaml:"page_up"`
	PageDown   []string `toml:"page_down" yaml:"page_down"`
	Top        []string `toml:"top" yaml:"top"`
	Bottom     []string `toml:"bottom" yaml:"bottom"`
	Search     []string `toml:"search" yaml:"search"`
	ShowAll    []string `toml:"show_all" yaml:"show_all"`
	Fullscreen []string `toml:"fullscreen" yaml:"fullscreen"`
	SelectUp   []string `toml:"select_up" yaml:"select_up"`
	SelectDown []string `toml:"select_down" yaml:"select_down"`
	Escape     []string `toml:"escape" yaml:"escape"`
}

// LoggingConfig configures the structured logger. The terminal belongs to
// the widget, so logs only go to a file.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// Duration is a time.Duration that reads "150ms" style strings
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML reads the duration from a YAML scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalYAML writes the duration as a string
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Follow: true,
		},
		Search: SearchConfig{
			Enabled:   true,
			Threshold: 0.4,
			Debounce:  Duration{150 * time.Millisecond},
		},
		Display: DisplayConfig{
			Language: "accesslog",
			Overscan: 20,
		},
		Theme: ThemeConfig{
			SyntaxStyle:   "monokai",
			Formatter:     "terminal256",
			LineNumbers:   "240", // Dark gray
			BarDark:       "#889900",
			BarLight:      "#009988",
			SearchMatch:   "226", // Yellow
			Selection:     "236",
			StatusBar:     "236", // Darker gray background
			StatusBarText: "252", // Light gray text
			Border:        "240",
		},
		Keybindings: KeybindingConfig{
			Quit:       []string{"q", "ctrl+c"},
			ScrollUp:   []string{"k"},
			ScrollDown: []string{"j"},
			PageUp:     []string{"b", "pgup", "ctrl+u"},
			PageDown:   []string{"f", "pgdown", "ctrl+d", " "},
			Top:        []string{"g", "home"},
			Bottom:     []string{"G", "end"},
			Search:     []string{"/"},
			ShowAll:    []string{"a"},
			Fullscreen: []string{"z"},
			SelectUp:   []string{"up"},
			SelectDown: []string{"down"},
			Escape:     []string{"esc"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks option ranges
func (c *Config) Validate() error {
	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("search threshold %v outside [0,1]", c.Search.Threshold)
	}
	if c.Search.Debounce.Duration < 0 {
		return fmt.Errorf("search debounce %v is negative", c.Search.Debounce)
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return fmt.Errorf("display size %dx%d is negative", c.Display.Width, c.Display.Height)
	}
	if c.Display.MaxLines < 0 || c.Display.Overscan < 0 {
		return errors.New("max_lines and overscan must not be negative")
	}
	if c.Source.Websocket && c.Source.URL == "" && c.Source.Text == "" {
		return errors.New("websocket mode needs a url")
	}
	return nil
}

// Load loads config from the default path, falling back to defaults
func Load() (*Config, error) {
	return LoadFile(getConfigPath(), false)
}

// LoadFile loads config from path. A missing file is an error only when
// required is set. Files ending in .yaml or .yml are read as YAML, anything
// else as TOML.
func LoadFile(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return toml.Unmarshal(data, cfg)
	}
}

// Save saves config to path in the format its extension selects
func Save(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = toml.Marshal(cfg)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "logview", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "logview", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
