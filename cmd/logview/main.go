package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TimelordUK/logview/internal/config"
	"github.com/TimelordUK/logview/internal/logging"
	"github.com/TimelordUK/logview/internal/ui"
)

var (
	configPath string
	sourceFlag config.SourceConfig
	noFollow   bool
	title      string
	language   string
	threshold  float64
	hideLines  bool
	selectable bool
	noSearch   bool
	fullscreen bool
	logFile    string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "logview [flags] [file|url]",
	Short: "View static, fetched or streaming logs in the terminal",
	Long: `logview renders a log with line numbers and syntax highlighting, and
filters it as you type.

Sources:
  logview app.log                       read a file once
  logview --websocket app.log           tail a file
  logview https://host/app.log          fetch over HTTP
  logview --websocket wss://host/logs   stream messages

Navigation:
  j/k      - Scroll
  /        - Search, Enter toggles all lines
  a        - Show all lines
  z        - Fullscreen
  q        - Quit`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/logview/config.toml)")
	flags.StringVarP(&sourceFlag.URL, "url", "u", "", "Log URL or file path")
	flags.BoolVarP(&sourceFlag.Websocket, "websocket", "w", false, "Stream the source instead of reading it once")
	flags.StringVarP(&sourceFlag.Format, "format", "f", "", "jq expression applied to each streamed message")
	flags.StringVar(&sourceFlag.Text, "text", "", "Show this text instead of loading a source")
	flags.BoolVar(&noFollow, "no-follow", false, "Do not keep the view at the end as lines arrive")
	flags.StringVar(&title, "title", "", "Header title")
	flags.StringVarP(&language, "language", "l", "", "Highlighting language")
	flags.Float64Var(&threshold, "threshold", 0, "Fuzzy match threshold between 0 and 1")
	flags.BoolVar(&hideLines, "hide-lines", false, "Hide line numbers")
	flags.BoolVar(&selectable, "selectable", false, "Allow selecting lines")
	flags.BoolVar(&noSearch, "no-search", false, "Disable the search box")
	flags.BoolVar(&fullscreen, "fullscreen", false, "Start fullscreen")
	flags.StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// setup loads config, applies flags over it and installs the logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath, true)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if len(args) == 1 {
		cfg.Source.URL = args[0]
	}
	if flags.Changed("url") {
		cfg.Source.URL = sourceFlag.URL
	}
	if flags.Changed("websocket") {
		cfg.Source.Websocket = sourceFlag.Websocket
	}
	if flags.Changed("format") {
		cfg.Source.Format = sourceFlag.Format
	}
	if flags.Changed("text") {
		cfg.Source.Text = sourceFlag.Text
	}
	if noFollow {
		cfg.Source.Follow = false
	}
	if title != "" {
		cfg.Display.Title = title
	}
	if language != "" {
		cfg.Display.Language = language
	}
	if flags.Changed("threshold") {
		cfg.Search.Threshold = threshold
	}
	if hideLines {
		cfg.Display.HideLines = true
	}
	if selectable {
		cfg.Display.SelectableLines = true
	}
	if noSearch {
		cfg.Search.Enabled = false
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Display.Title == "" {
		cfg.Display.Title = cfg.Source.URL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	cmd.SetContext(logging.NewContext(cmd.Context(), logger))
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	logger := logging.L(cmd.Context())
	defer logger.Sync()

	model, err := ui.New(cfg, ui.Options{
		Logger:     logger,
		Standalone: true,
		Fullscreen: fullscreen,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	logger.Info("starting",
		zap.String("source", cfg.Source.URL),
		zap.Bool("websocket", cfg.Source.Websocket))

	p := tea.NewProgram(model, tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logview: %v\n", err)
		os.Exit(1)
	}
}
