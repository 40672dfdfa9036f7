package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"freestyle/internal/history"
)

var timeNow = time.Now

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch runs, or the tracks of one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("history is disabled (history.enabled = false)")
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				items, err := store.ListItems(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Run %s  %s  %s\n", run.ID, run.Status, formatTime(run.StartedAt))
				fmt.Fprintln(out, renderItems(items))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show tracks for a run id (or an 8+ character prefix)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list")
	return cmd
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		elapsed := "-"
		if !r.FinishedAt.IsZero() {
			elapsed = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			shortID(r.ID),
			formatTime(r.StartedAt),
			r.Status,
			strconv.Itoa(r.Eligible),
			strconv.Itoa(r.Recorded),
			strconv.Itoa(r.Skipped),
			elapsed,
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Status", "Eligible", "Recorded", "Skipped", "Elapsed"},
		rows,
		3, 4, 5, 6,
	)
}

func renderItems(items []history.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		detail := it.Duration
		if it.State != "recorded" {
			detail = fmt.Sprintf("%s/%s: %s", it.FailedStage, it.FailureKind, it.ErrorMessage)
		}
		rows = append(rows, []string{strconv.Itoa(it.Position + 1), it.Slug, it.MediaID, it.State, detail})
	}
	return renderTable([]string{"#", "Slug", "Media ID", "State", "Detail"}, rows, 0)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
