// Package logview embeds the log viewer in a Bubble Tea program.
//
// A host builds a Model from a Config and forwards its messages:
//
//	cfg := logview.DefaultConfig()
//	cfg.Source.URL = "wss://logs.example/stream"
//	cfg.Source.Websocket = true
//	m, err := logview.New(cfg, logview.Options{})
//
// Standalone hosts set Options.Standalone so the quit keys end the program.
// Embedding hosts call Unmount when the widget goes away.
package logview

import (
	"github.com/TimelordUK/logview/internal/config"
	"github.com/TimelordUK/logview/internal/ingest"
	"github.com/TimelordUK/logview/internal/ui"
)

type (
	Model    = ui.Model
	Options  = ui.Options
	PageLock = ui.PageLock
	Config   = config.Config
	State    = ingest.State

	// FormatFunc turns a raw live message into display text
	FormatFunc = ingest.FormatFunc

	// AltScreenLock takes the terminal's alternate screen in fullscreen
	AltScreenLock = ui.AltScreenLock
	// NopLock leaves the terminal alone
	NopLock       = ui.NopLock
)

// Ingestion states
const (
	Idle      = ingest.Idle
	Loading   = ingest.Loading
	Ready     = ingest.Ready
	Streaming = ingest.Streaming
	Closed    = ingest.Closed
	Error     = ingest.Error
)

// DefaultConfig returns the default widget configuration
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig loads the user's config file over the defaults
func LoadConfig() (*Config, error) {
	return config.Load()
}

// New creates a widget
func New(cfg *Config, opts Options) (*Model, error) {
	return ui.New(cfg, opts)
}

// JQFormat compiles a jq expression into a live message formatter
func JQFormat(expr string) (FormatFunc, error) {
	return ingest.JQFormat(expr)
}
