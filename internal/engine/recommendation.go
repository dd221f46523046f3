package engine

import (
	"fmt"

	"github.com/yourusername/game-predictor/internal/models"
)

// RecommendationResult is a category plus the reasoning that produced it
type RecommendationResult struct {
	Category  models.Recommendation
	Reasoning string
}

var recommendationLabels = map[models.Recommendation]string{
	models.RecommendationStrongLean: "Strong lean",
	models.RecommendationLean:       "Lean",
	models.RecommendationSlightLean: "Slight lean",
	models.RecommendationNoEdge:     "No edge",
	models.RecommendationAvoid:      "Avoid",
}

// Classify maps the predicted winner's clamped probability and the optional
// edge to a recommendation. Rules are evaluated in order; first match wins.
func Classify(p float64, edge *float64, team string, t RecommendationThresholds) RecommendationResult {
	hasEdge := edge != nil

	var category models.Recommendation
	switch {
	case p >= t.StrongLeanProbability && hasEdge && *edge >= t.StrongLeanEdge:
		category = models.RecommendationStrongLean
	case p >= t.LeanProbability || (hasEdge && *edge >= t.LeanEdge):
		category = models.RecommendationLean
	case p >= t.SlightLeanProbability:
		category = models.RecommendationSlightLean
	case p >= t.NoEdgeProbability:
		category = models.RecommendationNoEdge
	default:
		category = models.RecommendationAvoid
	}

	return RecommendationResult{
		Category:  category,
		Reasoning: Reasoning(category, p, edge, team),
	}
}

// Reasoning renders the explanation for a category. Percentages use one
// decimal place so the text is reproducible from the numbers alone.
func Reasoning(category models.Recommendation, p float64, edge *float64, team string) string {
	text := fmt.Sprintf("%s on %s: model win probability %s", recommendationLabels[category], team, FormatPercent(p))
	if edge != nil {
		text += fmt.Sprintf(", edge vs market %s", FormatSignedPercent(*edge))
	} else {
		text += ", no market price available"
	}
	return text
}

// FormatPercent renders 0.7 as "70.0%"
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// FormatSignedPercent renders 0.062 as "+6.2%"
func FormatSignedPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v*100)
}
