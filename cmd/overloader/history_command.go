package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"overloader/internal/api"
	"overloader/internal/config"
	"overloader/internal/services/hevy"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var pages int
	var pageSize int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent workouts with their cycle position",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tracker, err := newTrackerClient(cfg)
			if err != nil {
				return err
			}
			entries, err := api.ListHistory(cmd.Context(), tracker, pages, pageSize, nil)
			if err != nil {
				return err
			}
			if jsonOut {
				if entries == nil {
					entries = []api.HistoryEntry{}
				}
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No workouts found")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.ID,
					entry.Title,
					cyclePosition(entry.Week, entry.HasWeek),
					cyclePosition(entry.Day, entry.HasDay),
					entry.NextTitle,
					yesNo(entry.RoutineID != ""),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Week", "Day", "Next Title", "Routine"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of history pages to read")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Workouts per page")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output entries as JSON")
	return cmd
}

func newTrackerClient(cfg *config.Config) (*hevy.Client, error) {
	return hevy.New(cfg.Hevy.APIKey, cfg.Hevy.BaseURL,
		hevy.WithTimeout(time.Duration(cfg.Hevy.TimeoutSeconds)*time.Second))
}

func cyclePosition(value int, present bool) string {
	if !present {
		return "-"
	}
	return strconv.Itoa(value)
}
