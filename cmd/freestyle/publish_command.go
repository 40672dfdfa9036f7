package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"freestyle/internal/logging"
	"freestyle/internal/notifications"
	"freestyle/internal/preflight"
	"freestyle/internal/publish"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload delivered assets to Supabase storage and rewrite the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts := publish.Options{
				AssetsDir:     cfg.Paths.AssetsDir,
				CollectionDir: cfg.CollectionDir(),
				ManifestPath:  cfg.Paths.ManifestPath,
				DryRun:        dryRun,
			}

			var uploader publish.Uploader
			if !dryRun {
				if err := cfg.ValidatePublish(); err != nil {
					return err
				}
				check := preflight.CheckSupabaseStorage(cmd.Context(), cfg.Publish.SupabaseURL, cfg.Publish.SupabaseKey, cfg.Publish.Bucket)
				if !check.Passed {
					return fmt.Errorf("%s: %s", check.Name, check.Detail)
				}
				uploader, err = publish.NewSupabaseUploader(cfg.Publish.SupabaseURL, cfg.Publish.SupabaseKey, cfg.Publish.Bucket, cfg.Publish.PublicBaseURL)
				if err != nil {
					return err
				}
			}

			report, err := publish.New(uploader, logger).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(report.Uploads))
			for _, up := range report.Uploads {
				result := up.URL
				switch {
				case dryRun:
					result = "(dry run)"
				case up.Err != nil:
					result = "failed: " + up.Err.Error()
				}
				rows = append(rows, []string{up.Object, result})
			}
			fmt.Fprintln(out, renderTable([]string{"Object", "URL"}, rows))
			fmt.Fprintf(out, "Uploaded: %d  Failed: %d  Manifest fields rewritten: %d\n", report.Uploaded, report.Failed, report.Rewritten)
			if report.MappingPath != "" {
				fmt.Fprintf(out, "Mapping saved to: %s\n", report.MappingPath)
			}

			if !dryRun {
				notifier := notifications.NewService(cfg)
				if err := notifier.Publish(cmd.Context(), notifications.EventPublishCompleted, notifications.Payload{
					"uploaded": report.Uploaded,
					"bucket":   cfg.Publish.Bucket,
				}); err != nil {
					logger.Warn("publish notification failed", logging.Error(err))
				}
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d uploads failed", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the objects that would be uploaded")
	return cmd
}
