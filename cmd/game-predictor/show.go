package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/yourusername/game-predictor/internal/models"
)

var showDate string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored predictions for a game date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(showDate)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		predictions, err := deps.repos.Predictions.GetByDate(ctx, date)
		if err != nil {
			return err
		}
		if len(predictions) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No predictions stored for %s\n", date.Format(models.GameDateLayout))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderPredictions(predictions))
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showDate, "date", "d", "", "Game date (YYYY-MM-DD), defaults to today in UTC")
}

var (
	headerStyle          = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle            = lipgloss.NewStyle().Padding(0, 1)
	recommendationColors = map[models.Recommendation]lipgloss.Color{
		models.RecommendationStrongLean: lipgloss.Color("#8BC34A"),
		models.RecommendationLean:       lipgloss.Color("#4db6ac"),
		models.RecommendationAvoid:      lipgloss.Color("#e53935"),
	}
)

// renderPredictions lays out predictions as a bordered table
func renderPredictions(predictions []*models.Prediction) string {
	rows := make([][]string, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, []string{
			p.GameID,
			p.GameTime,
			p.AwayTeam + " @ " + p.HomeTeam,
			p.PredictedWinner,
			percent(p.WinnerProbability()),
			edgeText(p.EdgeVsMarket),
			string(p.Recommendation),
			strconv.FormatFloat(p.ConfidenceScore, 'f', 1, 64),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("GAME", "TIME", "MATCHUP", "PICK", "PROB", "EDGE", "RECOMMENDATION", "CONF").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 6 && row >= 0 && row < len(predictions) {
				if color, ok := recommendationColors[predictions[row].Recommendation]; ok {
					return cellStyle.Foreground(color)
				}
			}
			return cellStyle
		})

	return t.Render()
}

func percent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 1, 64) + "%"
}

func edgeText(edge *float64) string {
	if edge == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *edge*100)
}
