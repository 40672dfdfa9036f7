package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"freestyle/internal/logging"
	"freestyle/internal/scheduler"
	"freestyle/internal/workflow"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run process on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if spec == "" {
				spec = cfg.Workflow.Schedule
			}

			job := scheduler.JobFunc{Label: "process", Fn: func(runCtx context.Context) error {
				summary, err := runBatch(runCtx, ctx, cfg, logger)
				if err != nil {
					if workflow.IsBusy(err) {
						logger.Info("batch already running, tick skipped")
						return nil
					}
					return err
				}
				if summary.HasFailures() {
					return fmt.Errorf("%w: %d of %d skipped", workflow.ErrItemFailures, summary.Skipped, summary.Eligible)
				}
				return nil
			}}

			s, err := scheduler.New(spec, job, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled with %q; next run %s\n", spec, s.Next(timeNow()).Format("2006-01-02 15:04:05"))
			err = s.Start(cmd.Context())
			logger.Info("scheduler exited", logging.Error(err))
			return err
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression, five fields or six with leading seconds (overrides workflow.schedule)")
	return cmd
}
