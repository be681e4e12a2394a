package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dyike/cortexmem/internal/devserver"
	"github.com/dyike/cortexmem/internal/storage"
)

// newServeCmd creates the serve command
func newServeCmd(a *app) *cobra.Command {
	var (
		dir  string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve memory fixtures as a local trader API",
		Long: `Serve <dir>/<trader_id>.json files on /api/memory so the viewer can be
exercised without a running trader.
Example: cortexmem serve --dir=./fixtures --addr=:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.FixtureDir
			}
			if addr == "" {
				addr = a.cfg.FixtureAddr
			}
			return runServe(a, dir, addr)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Fixture directory (defaults to FIXTURE_DIR)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to FIXTURE_ADDR)")

	return cmd
}

func runServe(a *app, dir, addr string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("fixture directory: %w", err)
	}

	srv := devserver.New(devserver.Config{Addr: addr, Dir: dir, Log: a.log})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newJournalCmd creates the journal command
func newJournalCmd(a *app) *cobra.Command {
	var (
		trader string
		limit  int
		prune  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent memory fetches",
		Long: `List the fetch attempts recorded by show and watch, newest first.
The journal is diagnostic only and is never used to render memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := a.openJournal()
			if err != nil {
				return err
			}
			if journal == nil {
				return fmt.Errorf("journal is disabled (JOURNAL_ENABLED=false)")
			}
			defer journal.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if prune > 0 {
				n, err := journal.Prune(ctx, time.Now().Add(-prune))
				if err != nil {
					return err
				}
				DisplayInfo(a.out, fmt.Sprintf("pruned %d records older than %s", n, prune))
			}

			records, err := journal.List(ctx, trader, limit)
			if err != nil {
				return err
			}
			return renderJournal(a, records)
		},
	}

	cmd.Flags().StringVar(&trader, "trader", "", "Only show fetches for this trader")
	cmd.Flags().IntVar(&limit, "limit", storage.DefaultListLimit, "Maximum records to show")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete records older than this age first, e.g. 168h")

	return cmd
}

func renderJournal(a *app, records []storage.FetchRecord) error {
	if len(records) == 0 {
		DisplayInfo(a.out, "No fetches recorded yet")
		return nil
	}

	table := tablewriter.NewWriter(a.out)
	table.Header("Started", "Trader", "Status", "HTTP", "Trades", "Took", "Error")
	for _, r := range records {
		httpStatus := "-"
		if r.HTTPStatus != 0 {
			httpStatus = strconv.Itoa(r.HTTPStatus)
		}
		if err := table.Append(
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.TraderID,
			r.Status,
			httpStatus,
			strconv.Itoa(r.Trades),
			r.Duration.Round(time.Millisecond).String(),
			truncateString(r.Error, 48),
		); err != nil {
			return err
		}
	}
	return table.Render()
}
