package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"overloader/internal/api"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass over recent workouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			summary, runErr := pipeline.Scheduler.RunOnce(cmd.Context())
			dto := api.FromSummary(summary)
			if jsonOut {
				if err := writeJSON(cmd, dto); err != nil {
					return err
				}
				return runErr
			}
			if runErr != nil {
				return fmt.Errorf("sync: %w", runErr)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, heading("Sync summary", colorize))
			rows := [][]string{
				{"Fetched", strconv.Itoa(dto.Fetched)},
				{"Recent", strconv.Itoa(dto.Recent)},
				{"Skipped", strconv.Itoa(dto.Skipped)},
				{"Processed", strconv.Itoa(dto.Processed)},
				{"Failed", strconv.Itoa(dto.Failed)},
				{"Duration", fmt.Sprintf("%dms", dto.DurationMs)},
			}
			fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			if dryRun {
				fmt.Fprintln(out, "Dry run: no routines were modified")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate prescriptions without writing routines")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the summary as JSON")
	return cmd
}
