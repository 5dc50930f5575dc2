package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/playground/pkg/cli"
	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/evidence"
	"mercator-hq/playground/pkg/evidence/export"
	"mercator-hq/playground/pkg/evidence/retention"
	"mercator-hq/playground/pkg/evidence/storage"
)

type evidenceQueryOptions struct {
	backend   string
	timeRange string
	since     time.Duration
	provider  string
	model     string
	outcome   string
	requestID string
	sortBy    string
	limit     int
	offset    int
	format    string
	output    string
}

func newEvidenceCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Query and prune relay evidence",
		Long: `Query, export and prune the evidence records written for each relay.

Evidence records hold counts, sizes and timings for a relay. They never
hold message or response text.

Subcommands:
  query   - Query evidence records with filters
  prune   - Apply the retention policy once`,
	}

	cmd.AddCommand(newEvidenceQueryCmd(root), newEvidencePruneCmd(root))
	return cmd
}

func newEvidenceQueryCmd(root *rootOptions) *cobra.Command {
	opts := &evidenceQueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query evidence records",
		Long: `Query evidence records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end" (end is exclusive)
  Example: "2026-10-13T00:00:00Z/2026-10-14T00:00:00Z"

Examples:
  # Failed relays in the last hour
  playground evidence query --since 1h --outcome error

  # Export one provider's relays as CSV
  playground evidence query --provider anthropic --format csv -o anthropic.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryEvidence(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	flags.StringVar(&opts.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	flags.DurationVar(&opts.since, "since", 0, "only records started within this duration (e.g. 24h)")
	flags.StringVar(&opts.provider, "provider", "", "filter by provider")
	flags.StringVar(&opts.model, "model", "", "filter by model")
	flags.StringVar(&opts.outcome, "outcome", "", "filter by outcome (end, error, canceled)")
	flags.StringVar(&opts.requestID, "request-id", "", "filter by request ID")
	flags.StringVar(&opts.sortBy, "sort", "", "sort field: started_at, duration, time_to_first_content")
	flags.IntVar(&opts.limit, "limit", 100, "max results (0 for all)")
	flags.IntVar(&opts.offset, "offset", 0, "pagination offset")
	flags.StringVarP(&opts.format, "format", "f", "text", "output format: text, json, csv")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newEvidencePruneCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Apply the evidence retention policy once",
		Long: `Delete records older than evidence.retention_days and, when
evidence.max_records is set, the oldest records beyond that count. Records
removed by count are archived first when evidence.archive_path is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.configFile)
			if err != nil {
				return err
			}

			store, err := openEvidence(cfg, "")
			if err != nil {
				return err
			}
			defer store.Close()

			pruner := retention.NewPruner(store, retention.ConfigFrom(cfg.Evidence))
			deleted, err := pruner.Prune(cmd.Context())
			if err != nil {
				return cli.NewCommandError("evidence prune", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d evidence records\n", deleted)
			return nil
		},
	}
}

func queryEvidence(cmd *cobra.Command, root *rootOptions, opts *evidenceQueryOptions) error {
	q, err := opts.query(time.Now())
	if err != nil {
		return err
	}

	var exporter evidence.Exporter
	if opts.format != string(cli.FormatText) {
		if exporter, err = export.New(opts.format); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(root.configFile)
	if err != nil {
		return err
	}

	store, err := openEvidence(cfg, opts.backend)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("evidence query", fmt.Errorf("query failed: %w", err))
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if exporter != nil {
		return exporter.Export(cmd.Context(), records, out)
	}
	return writeEvidenceText(out, records)
}

// query builds the storage query from the flags. now anchors --since.
func (o *evidenceQueryOptions) query(now time.Time) (*evidence.Query, error) {
	q := &evidence.Query{
		Provider:  o.provider,
		Model:     o.model,
		Outcome:   o.outcome,
		RequestID: o.requestID,
		SortBy:    o.sortBy,
		Limit:     o.limit,
		Offset:    o.offset,
	}

	if o.timeRange != "" && o.since > 0 {
		return nil, fmt.Errorf("--time-range and --since cannot be combined")
	}

	if o.timeRange != "" {
		start, end, err := parseTimeRange(o.timeRange)
		if err != nil {
			return nil, err
		}
		q.StartTime = &start
		q.EndTime = &end
	}

	if o.since > 0 {
		start := now.Add(-o.since)
		q.StartTime = &start
	}

	return q, nil
}

func parseTimeRange(value string) (start, end time.Time, err error) {
	before, after, ok := strings.Cut(value, "/")
	if !ok {
		return start, end, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	if start, err = time.Parse(time.RFC3339, before); err != nil {
		return start, end, fmt.Errorf("invalid start time: %w", err)
	}
	if end, err = time.Parse(time.RFC3339, after); err != nil {
		return start, end, fmt.Errorf("invalid end time: %w", err)
	}
	if !end.After(start) {
		return start, end, fmt.Errorf("invalid time range: end must be after start")
	}
	return start, end, nil
}

// openEvidence opens the configured evidence backend, or backend when set.
func openEvidence(cfg *config.Config, backend string) (evidence.Storage, error) {
	ecfg := cfg.Evidence
	if backend != "" {
		ecfg.Backend = backend
	}
	store, err := storage.New(ecfg)
	if err != nil {
		return nil, cli.NewCommandError("evidence", err)
	}
	return store, nil
}

func writeEvidenceText(w io.Writer, records []*evidence.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}

	table := cli.Table{Headers: []string{"STARTED", "REQUEST ID", "PROVIDER", "MODEL", "OUTCOME", "EVENTS", "FIRST CONTENT", "DURATION", "ERROR"}}
	for _, r := range records {
		first := "-"
		if r.ContentEvents > 0 {
			first = r.TimeToFirstContent.String()
		}
		table.Append(
			r.StartedAt.UTC().Format(time.RFC3339),
			r.RequestID,
			r.Provider,
			r.Model,
			r.Outcome,
			strconv.Itoa(r.ContentEvents),
			first,
			r.Duration.String(),
			r.ErrorKind,
		)
	}

	if err := (&cli.TextFormatter{}).FormatTo(w, table); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d records\n", len(records))
	return err
}
