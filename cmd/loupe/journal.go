package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mercator-hq/loupe/pkg/cli"
	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
	"mercator-hq/loupe/pkg/journal/retention"
	"mercator-hq/loupe/pkg/journal/storage"
)

var journalFlags struct {
	backend string
	path    string

	limit     int
	since     time.Duration
	requestID string
	method    string
	status    int
	failed    bool
	output    string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the exchange journal",
	Long: `Inspect and maintain the exchange journal written by "loupe run"
when journal.enabled is set.

The journal section of the configuration selects the backend. The proxy
addresses are not required by these commands.`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded exchanges, newest first",
	Long: `List recorded exchanges, newest first.

Examples:
  # Last 20 exchanges from the default SQLite journal
  loupe journal list --limit 20

  # Failed exchanges from the last hour as JSON
  loupe journal list --failed --since 1h --output json

  # Everything logged under one correlation id
  loupe journal list --request-id 3f2a9c1e-...`,
	RunE: listExchanges,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Delete exchanges older than journal.retention.days and trim the
journal to journal.retention.max_records, then print how many entries were
removed.`,
	RunE: pruneJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd, journalPruneCmd)

	journalCmd.PersistentFlags().StringVar(&journalFlags.backend, "backend", "", "override journal backend: memory, sqlite, sqlite3, redis")
	journalCmd.PersistentFlags().StringVar(&journalFlags.path, "path", "", "override SQLite database path")

	journalListCmd.Flags().IntVarP(&journalFlags.limit, "limit", "n", journal.DefaultQueryLimit, "maximum number of exchanges")
	journalListCmd.Flags().DurationVar(&journalFlags.since, "since", 0, "only exchanges started within this duration (e.g. 30m, 24h)")
	journalListCmd.Flags().StringVar(&journalFlags.requestID, "request-id", "", "only exchanges with this correlation id")
	journalListCmd.Flags().StringVar(&journalFlags.method, "method", "", "only exchanges with this method")
	journalListCmd.Flags().IntVar(&journalFlags.status, "status", 0, "only exchanges with this status code")
	journalListCmd.Flags().BoolVar(&journalFlags.failed, "failed", false, "only exchanges that failed to forward")
	journalListCmd.Flags().StringVarP(&journalFlags.output, "output", "o", "text", "output format: text, json, csv")
}

// loadJournalConfig resolves the configuration like loadConfig but only
// validates the journal section.
func loadJournalConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Journal.Backend = journalFlags.backend
	}
	if flags.Changed("path") {
		cfg.Journal.SQLite.Path = journalFlags.path
	}

	config.ApplyDefaults(cfg)
	if err := config.ValidateJournal(cfg.Journal); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

func openJournal(cmd *cobra.Command) (*config.Config, journal.Storage, error) {
	cfg, err := loadJournalConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(commandContext(cmd), cfg.Journal)
	if err != nil {
		return nil, nil, cli.NewCommandError(cmd.CommandPath(), fmt.Errorf("failed to open journal: %w", err))
	}
	return cfg, store, nil
}

func listExchanges(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(journalFlags.output)
	if err != nil {
		return err
	}

	_, store, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	q := buildQuery(time.Now())
	exchanges, err := store.Query(commandContext(cmd), q)
	if err != nil {
		return cli.NewCommandError("journal list", err)
	}

	var data interface{} = exchangeTable(exchanges, time.Now())
	if format == cli.FormatJSON {
		data = exchanges
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

func pruneJournal(cmd *cobra.Command, args []string) error {
	cfg, store, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := retention.NewPruner(store, cfg.Journal.Retention, nil, nil).Prune(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("journal prune", err)
	}

	remaining, err := store.Count(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("journal prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s exchanges, %s remaining\n",
		humanize.Comma(deleted), humanize.Comma(remaining))
	return nil
}

// buildQuery turns the list flags into a journal query relative to now.
func buildQuery(now time.Time) *journal.Query {
	q := &journal.Query{
		RequestID: journalFlags.requestID,
		Method:    strings.ToUpper(journalFlags.method),
		Status:    journalFlags.status,
		Failed:    journalFlags.failed,
		Limit:     journalFlags.limit,
	}
	if journalFlags.since > 0 {
		since := now.Add(-journalFlags.since)
		q.Since = &since
	}
	return q
}

// exchangeTable renders exchanges for the text and CSV formats. Times and
// sizes are humanized relative to now.
func exchangeTable(exchanges []*journal.Exchange, now time.Time) *cli.Table {
	table := &cli.Table{
		Headers: []string{"STARTED", "REQUEST ID", "METHOD", "PATH", "STATUS", "DURATION", "REQUEST", "RESPONSE", "FAILURE"},
		Rows:    make([][]string, 0, len(exchanges)),
	}

	for _, e := range exchanges {
		failure := "-"
		if e.Failed() {
			failure = e.FailureKind
		}
		table.Rows = append(table.Rows, []string{
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			e.RequestID,
			e.Method,
			e.Path,
			strconv.Itoa(e.StatusCode),
			e.Duration.Round(time.Microsecond).String(),
			humanize.Bytes(uint64(e.RequestBytes)),
			humanize.Bytes(uint64(e.ResponseBytes)),
			failure,
		})
	}
	return table
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
