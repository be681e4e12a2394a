package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dyike/cortexmem/config"
	"github.com/dyike/cortexmem/internal/fetcher"
	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/storage"
	"github.com/dyike/cortexmem/internal/tui"
)

// newWatchCmd creates the watch command
func newWatchCmd(a *app) *cobra.Command {
	var (
		trader   string
		lang     string
		interval time.Duration
		details  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a trader's memory live",
		Long: `Open a full-screen view of a trader's memory that refreshes on a fixed
interval. Keys: r refresh, l switch language, q quit.
With --config, edits to the config file switch the trader or language live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if trader == "" {
				trader = a.cfg.TraderID
			}
			if interval <= 0 {
				interval = a.cfg.RefreshInterval
			}
			if interval < time.Second {
				return fmt.Errorf("--interval must be at least 1s, got %s", interval)
			}
			return runWatch(a, watchOptions{
				traderID: trader,
				lang:     a.language(lang),
				interval: interval,
				details:  details,
			})
		},
	}

	cmd.Flags().StringVar(&trader, "trader", "", "Trader ID (defaults to TRADER_ID)")
	cmd.Flags().StringVar(&lang, "lang", "", "Display language: en or zh")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (defaults to REFRESH_INTERVAL)")
	cmd.Flags().BoolVar(&details, "details", false, "Include entry/exit prices and overall performance")

	return cmd
}

type watchOptions struct {
	traderID string
	lang     i18n.Language
	interval time.Duration
	details  bool
}

// runWatch wires the poller, the fetch journal and config hot reload into
// the full-screen memory view and blocks until the user quits.
func runWatch(a *app, opts watchOptions) error {
	// The alternate screen owns the terminal, so logs go to a file.
	if a.cfg.LogFile == "" {
		if err := a.setupLogger(filepath.Join(a.cfg.DataDir, "cortexmem.log")); err != nil {
			return err
		}
	}
	log := a.log.With().Str("mode", "watch").Logger()

	client := fetcher.NewClient(a.cfg.MemoryBaseURL(), a.cfg.RequestTimeout)
	pollerOpts := []fetcher.PollerOption{
		fetcher.WithTraderID(opts.traderID),
		fetcher.WithInterval(opts.interval),
		fetcher.WithLogger(log),
	}

	journal, err := a.openJournal()
	if err != nil {
		log.Warn().Err(err).Msg("continuing without journal")
	} else if journal != nil {
		defer journal.Close()
		recorder, err := storage.NewRecorder(journal, log)
		if err != nil {
			return err
		}
		defer recorder.Close()
		pollerOpts = append(pollerOpts, fetcher.WithObserver(recorder))
	}

	poller := fetcher.NewPoller(client, pollerOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer poller.Stop()

	model := tui.NewModel(poller, opts.lang, a.viewOptions(opts.details))
	program := tea.NewProgram(model, tea.WithAltScreen())

	if a.manager != nil {
		err := a.manager.Watch(ctx, func(ch config.Change) {
			if ch.Has("trader_id") {
				poller.SetTraderID(ch.Config.TraderID)
			}
			if ch.Has("language") {
				program.Send(tui.LanguageMsg(i18n.Parse(ch.Config.Language)))
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("config hot reload disabled")
		}
	}

	log.Info().Str("trader_id", opts.traderID).Dur("interval", opts.interval).Msg("watching memory")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("watch view: %w", err)
	}
	return nil
}
