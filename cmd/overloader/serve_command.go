package main

import (
	"github.com/spf13/cobra"

	"overloader/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var development bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook listener and sync scheduler in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    ctx.logLevel(),
				Development: development,
				DryRun:      dryRun,
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate prescriptions without writing routines")
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log output")
	return cmd
}
