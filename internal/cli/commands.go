package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dyike/cortexmem/config"
	"github.com/dyike/cortexmem/internal/display"
	"github.com/dyike/cortexmem/internal/fetcher"
	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/logger"
	"github.com/dyike/cortexmem/internal/storage"
	"github.com/dyike/cortexmem/internal/view"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	cfg     *config.Config
	manager *config.Manager // nil unless a config file is in use

	log       zerolog.Logger
	logCloser io.Closer

	out io.Writer
	err io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Stdout, os.Stderr)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, err: errOut, log: zerolog.Nop()}

	var (
		configPath string
		debug      bool
		backendURL string
	)

	rootCmd := &cobra.Command{
		Use:   "cortexmem",
		Short: "cortexmem - AI trader memory viewer",
		Long: `cortexmem shows what an AI trader has learned: its recent trades,
win rate, memory depth and the hard constraints it trades under.
It polls the trader's /api/memory endpoint and renders the result in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(configPath); err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				a.cfg.Debug = debug
			}
			if a.cfg.Debug {
				a.cfg.LogLevel = "debug"
			}
			if backendURL != "" {
				a.cfg.BackendURL = backendURL
			}
			if err := a.cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return a.setupLogger(a.cfg.LogFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: prompt for a trader, then watch it
			return runInteractiveMode(a)
		},
	}

	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newJournalCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path (enables hot reload)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Trader API base URL, e.g. http://localhost:8080")

	return rootCmd
}

// loadConfig reads the environment and, when path is set, layers the config
// file on top through a Manager.
func (a *app) loadConfig(path string) error {
	a.cfg = config.DefaultConfig()
	if path == "" {
		return nil
	}
	m, err := config.NewManager(config.WithConfigPath(path), config.WithInitialConfig(a.cfg))
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	cfg := m.Get()
	a.cfg, a.manager = &cfg, m
	return nil
}

func (a *app) setupLogger(file string) error {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
	log, closer, err := logger.New(logger.Config{
		Level:  a.cfg.LogLevel,
		Pretty: true,
		File:   file,
		Out:    a.err,
	})
	if err != nil {
		return err
	}
	a.log = log.With().Str("app", "cortexmem").Logger()
	a.logCloser = closer
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// openJournal returns a nil journal when journaling is off.
func (a *app) openJournal() (*storage.Journal, error) {
	if !a.cfg.JournalEnabled {
		return nil, nil
	}
	j, err := storage.Open(a.cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

func (a *app) language(flag string) i18n.Language {
	if flag != "" {
		return i18n.Parse(flag)
	}
	return i18n.Parse(a.cfg.Language)
}

func (a *app) viewOptions(details bool) view.Options {
	return view.Options{MaxCards: a.cfg.MaxCards, Details: details}
}

// newShowCmd creates the show command
func newShowCmd(a *app) *cobra.Command {
	var (
		trader  string
		lang    string
		format  string
		details bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch a trader's memory once and print it",
		Long: `Fetch the memory snapshot for one trader and print the summary, the
most recent trades (newest first) and the trader's hard constraints.
Example: cortexmem show --trader=alpha --format=table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := display.ParseFormat(format)
			if err != nil {
				return err
			}
			if trader == "" {
				trader = a.cfg.TraderID
			}
			return runShowCommand(cmd.Context(), a, trader, a.language(lang), f, details)
		},
	}

	cmd.Flags().StringVar(&trader, "trader", "", "Trader ID (defaults to TRADER_ID)")
	cmd.Flags().StringVar(&lang, "lang", "", "Display language: en or zh")
	cmd.Flags().StringVar(&format, "format", string(display.FormatText), "Output format: text, table or json")
	cmd.Flags().BoolVar(&details, "details", false, "Include entry/exit prices and overall performance")

	return cmd
}

// runShowCommand performs a single observed fetch and renders the page.
func runShowCommand(ctx context.Context, a *app, traderID string, lang i18n.Language, format display.Format, details bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	renderer := display.NewRenderer(a.out, 0)
	opts := a.viewOptions(details)

	if traderID == "" {
		fmt.Fprintln(a.err, "no trader selected; pass --trader or set TRADER_ID")
		return renderer.Render(view.Build(nil, nil, lang, time.Now(), opts), format)
	}

	var observer fetcher.Observer
	journal, err := a.openJournal()
	if err != nil {
		a.log.Warn().Err(err).Msg("continuing without journal")
	} else if journal != nil {
		defer journal.Close()
		observer = journal
	}

	client := fetcher.NewClient(a.cfg.MemoryBaseURL(), a.cfg.RequestTimeout)
	snap, fetchErr := fetcher.Fetch(ctx, client, traderID, observer, a.log)

	if err := renderer.Render(view.Build(snap, fetchErr, lang, time.Now(), opts), format); err != nil {
		return err
	}
	if fetchErr != nil {
		return fmt.Errorf("fetch memory for %s: %w", traderID, fetchErr)
	}
	return nil
}

// newVersionCmd creates the version command
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "cortexmem %s\n", Version)
			fmt.Fprintln(a.out, "AI trader memory viewer")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show, validate and edit cortexmem configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(a)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(a)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a config file value, e.g. config set trader_id alpha",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.manager
			if m == nil {
				var err error
				m, err = config.NewManager(config.WithInitialConfig(a.cfg), config.WithLogger(a.log))
				if err != nil {
					return err
				}
			}
			if err := m.Set(args[0], args[1]); err != nil {
				return err
			}
			DisplaySuccess(a.out, fmt.Sprintf("%s updated in %s", args[0], m.Path()))
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration
func showConfig(a *app) {
	cfg := a.cfg
	out := a.out
	fmt.Fprintln(out, "📋 Current cortexmem Configuration:")
	fmt.Fprintln(out, "═══════════════════════════════════════")
	if a.manager != nil {
		fmt.Fprintf(out, "Config File:          %s\n", a.manager.Path())
	}
	fmt.Fprintf(out, "Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Fprintf(out, "Data Directory:       %s\n", cfg.DataDir)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Memory API:           %s%s\n", cfg.MemoryBaseURL(), fetcher.MemoryPath)
	fmt.Fprintf(out, "Trader ID:            %s\n", valueOr(cfg.TraderID, "(not set)"))
	fmt.Fprintf(out, "Language:             %s\n", i18n.Parse(cfg.Language))
	fmt.Fprintf(out, "Refresh Interval:     %s\n", cfg.RefreshInterval)
	fmt.Fprintf(out, "Request Timeout:      %s\n", cfg.RequestTimeout)
	fmt.Fprintf(out, "Max Cards:            %d\n", cfg.MaxCards)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Debug Mode:           %t\n", cfg.Debug)
	fmt.Fprintf(out, "Log Level:            %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "Log File:             %s\n", valueOr(cfg.LogFile, "(stderr)"))
	fmt.Fprintf(out, "Journal:              %t (%s)\n", cfg.JournalEnabled, cfg.JournalPath)
	fmt.Fprintf(out, "Fixture Server:       %s serving %s\n", cfg.FixtureAddr, cfg.FixtureDir)
}

// validateConfig validates the configuration
func validateConfig(a *app) error {
	fmt.Fprintln(a.out, "🔍 Validating cortexmem configuration...")
	if err := a.cfg.Validate(); err != nil {
		DisplayError(a.err, err)
		return fmt.Errorf("configuration is invalid")
	}
	if a.cfg.TraderID == "" {
		DisplayInfo(a.out, "No trader_id set; show and watch will need --trader")
	}
	DisplaySuccess(a.out, "Configuration is valid")
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
