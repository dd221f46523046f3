package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/game-predictor/internal/models"
	"github.com/yourusername/game-predictor/internal/service"
)

var (
	runDate    string
	runGames   string
	runDryRun  bool
	runJSONOut bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate predictions for one game date",
	Example: `  game-predictor run --date 2024-01-10
  game-predictor run --date 2024-01-10 --games 1001,1004
  game-predictor run --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(runDate)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		orchestrator, err := deps.newOrchestrator()
		if err != nil {
			return err
		}

		summary, runErr := orchestrator.Run(ctx, date, service.RunOptions{
			GameIDs: splitIDs(runGames),
			DryRun:  runDryRun,
		})
		if summary != nil {
			if err := printSummary(cmd, summary); err != nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().StringVarP(&runDate, "date", "d", "", "Game date (YYYY-MM-DD), defaults to today in UTC")
	runCmd.Flags().StringVar(&runGames, "games", "", "Comma-separated game ids to re-run")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Evaluate without persisting")
	runCmd.Flags().BoolVar(&runJSONOut, "json", false, "Print the run summary as JSON")
}

func printSummary(cmd *cobra.Command, summary *service.RunSummary) error {
	out := cmd.OutOrStdout()
	if runJSONOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintln(out, summary.String())
	if summary.DryRun && len(summary.Predictions) > 0 {
		fmt.Fprintln(out, renderPredictions(summary.Predictions))
	}
	if len(summary.FailedGameIDs) > 0 {
		fmt.Fprintf(out, "Retry failed games with: --games %s\n", strings.Join(summary.FailedGameIDs, ","))
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(models.GameDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

func splitIDs(value string) []string {
	var ids []string
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
