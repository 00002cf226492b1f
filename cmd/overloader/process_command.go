package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"overloader/internal/api"
	"overloader/internal/intake"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "process <workout-id>",
		Short: "Run the overload pipeline for a single workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			result, err := pipeline.Processor.ProcessWorkout(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("process %s: %w", args[0], err)
			}
			dto := api.FromResult(result)
			if jsonOut {
				return writeJSON(cmd, dto)
			}
			renderProcessResult(cmd, dto)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the prescription without writing the routine")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	return cmd
}

func renderProcessResult(cmd *cobra.Command, dto api.ProcessResult) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, heading("Workout "+dto.WorkoutID, colorize))
	fmt.Fprintf(out, "Title:   %s\n", dto.WorkoutTitle)
	fmt.Fprintf(out, "Outcome: %s\n", dto.Outcome)
	if dto.Outcome == string(intake.OutcomeNoRoutine) {
		fmt.Fprintln(out, "Workout is not linked to a routine; nothing to update")
		return
	}
	fmt.Fprintf(out, "Routine: %s -> %s\n", dto.RoutineID, dto.RoutineTitle)
	fmt.Fprintf(out, "Week:    %d -> %d (deload: %s)\n", dto.CurrentWeek, dto.NextWeek, yesNo(dto.Deload))
	if dto.Reference != "" {
		fmt.Fprintf(out, "Reference: %s\n", dto.Reference)
	}

	if len(dto.Suggestions) > 0 {
		ids := make([]string, 0, len(dto.Suggestions))
		for id := range dto.Suggestions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		rows := make([][]string, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, []string{id, strings.ReplaceAll(dto.Suggestions[id], "\n", ", ")})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Exercise", "Prescription"}, rows, nil))
	}
	if dto.Outcome == string(intake.OutcomeDryRun) {
		fmt.Fprintln(out, "Dry run: routine not modified")
	}
	fmt.Fprintf(out, "Took %sms\n", strconv.FormatInt(dto.DurationMs, 10))
}
