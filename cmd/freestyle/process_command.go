package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"freestyle/internal/catalog"
	"freestyle/internal/config"
	"freestyle/internal/history"
	"freestyle/internal/logging"
	"freestyle/internal/metadata"
	"freestyle/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var strict bool
	var workers int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Master every eligible video and write the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return fmt.Errorf("--workers must be >= 1")
				}
				cfg.Workflow.Workers = workers
			}
			if dryRun {
				return printPlan(cmd.OutOrStdout(), cfg)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			summary, err := runBatch(cmd.Context(), ctx, cfg, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return escalateFailures(summary, strict || cfg.Workflow.FailOnItemError)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any track is skipped")
	cmd.Flags().IntVar(&workers, "workers", 1, "Process tracks concurrently (overrides workflow.workers)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the planned tracks without processing them")
	return cmd
}

// runBatch opens the history store when enabled and runs one batch.
func runBatch(ctx context.Context, cmdCtx *commandContext, cfg *config.Config, logger *slog.Logger) (workflow.Summary, error) {
	var store *history.Store
	if cfg.History.Enabled {
		s, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not be recorded"),
				logging.String(logging.FieldErrorHint, "check history.path or set history.enabled = false"),
			)
		} else {
			store = s
			defer store.Close()
		}
	}

	runner := workflow.NewRunner(cfg, workflow.Options{
		Engine:  cmdCtx.newEngine(cfg, logger),
		History: store,
		Logger:  logger,
	})
	return runner.Run(ctx)
}

func escalateFailures(summary workflow.Summary, strict bool) error {
	if !strict || !summary.HasFailures() {
		return nil
	}
	return &exitStatusError{
		code: 2,
		err:  fmt.Errorf("%w: %d of %d skipped", workflow.ErrItemFailures, summary.Skipped, summary.Eligible),
	}
}

func renderSummary(summary workflow.Summary) string {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, out := range summary.Outcomes {
		status := string(out.State)
		detail := out.Entry.Duration
		if !out.Recorded() {
			status = fmt.Sprintf("%s (%s)", out.State, out.FailedStage)
			detail = string(out.FailureKind)
		}
		rows = append(rows, []string{
			strconv.Itoa(out.Track.Position + 1),
			out.Track.Slug,
			out.Track.Date,
			status,
			detail,
		})
	}
	table := renderTable([]string{"#", "Slug", "Date", "State", "Duration / Failure"}, rows, 0)
	return fmt.Sprintf("%s\nTotal tracks processed: %d (skipped %d) in %s\nManifest: %s",
		table, summary.Recorded, summary.Skipped, summary.Elapsed.Round(time.Millisecond), summary.ManifestPath)
}

func printPlan(out io.Writer, cfg *config.Config) error {
	records, err := metadata.Load(cfg.Paths.MetadataDir, cfg.Paths.VideoDir)
	if err != nil {
		return err
	}
	tracks := catalog.Plan(records, catalog.Options{
		Keyword:             cfg.Catalog.Keyword,
		FallbackDescription: cfg.Catalog.FallbackDescription,
		Disambiguate:        cfg.Catalog.DisambiguateSlugs,
	})
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, []string{strconv.Itoa(t.Position + 1), t.Date, t.Slug, t.Title})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Date", "Slug", "Title"}, rows, 0))
	fmt.Fprintf(out, "%d of %d sidecars eligible\n", len(tracks), len(records))
	return nil
}
