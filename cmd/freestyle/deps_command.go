package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"freestyle/internal/deps"
	"freestyle/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var capabilities bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check codec tools and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if capabilities {
				status := deps.CheckFFmpegCapabilities(cmd.Context(), cfg.Mastering.FFmpegBinary)
				results = append(results, preflight.Result{Name: status.Name, Passed: status.Available, Detail: status.Detail})
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "OK", "Detail"}, rows))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&capabilities, "capabilities", false, "Also verify ffmpeg has libmp3lame and the mastering filters")
	return cmd
}
