package engine

import (
	"fmt"
	"time"

	"github.com/yourusername/game-predictor/internal/models"
)

// MatchupInput is everything needed to evaluate one game. It holds no
// references shared with other matchups.
type MatchupInput struct {
	Game                   models.ScheduledGame
	HomeRecord             *models.TeamRecord
	AwayRecord             *models.TeamRecord
	HomeStats              *models.SupplementaryStats
	AwayStats              *models.SupplementaryStats
	HomeInjuryImpact       float64
	AwayInjuryImpact       float64
	InjuryDataIncorporated bool
	GeneratedAt            time.Time
}

// Evaluation carries the intermediate results of a matchup between stages
type Evaluation struct {
	Input          MatchupInput
	Home           models.TeamStrengthProfile
	Away           models.TeamStrengthProfile
	HomeContext    models.MatchupContext
	AwayContext    models.MatchupContext
	Probability    WinProbability
	Market         MarketComparison
	Recommendation RecommendationResult
	Confidence     ConfidenceResult
}

// Evaluator runs the model stages. It is stateless and safe for concurrent use.
type Evaluator struct {
	cal Calibration
}

// NewEvaluator creates an evaluator after validating the calibration
func NewEvaluator(cal Calibration) (*Evaluator, error) {
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	return &Evaluator{cal: cal}, nil
}

// Calibration returns the calibration in effect
func (e *Evaluator) Calibration() Calibration {
	return e.cal
}

// BuildProfiles builds both teams' strength profiles
func (e *Evaluator) BuildProfiles(in MatchupInput) (*Evaluation, error) {
	home, err := BuildStrengthProfile(in.HomeRecord, e.cal)
	if err != nil {
		return nil, fmt.Errorf("home team %s: %w", in.Game.HomeTeam, err)
	}
	away, err := BuildStrengthProfile(in.AwayRecord, e.cal)
	if err != nil {
		return nil, fmt.Errorf("away team %s: %w", in.Game.AwayTeam, err)
	}

	return &Evaluation{Input: in, Home: home, Away: away}, nil
}

// ComputeProbability applies context adjustments, the probability model and
// the market comparison
func (e *Evaluator) ComputeProbability(ev *Evaluation) {
	g := ev.Input.Game
	ev.HomeContext = BuildMatchupContext(true, g.HomeOnBackToBack, g.HomeLastGameDate, g.GameDate, ev.Input.HomeInjuryImpact, e.cal)
	ev.AwayContext = BuildMatchupContext(false, g.AwayOnBackToBack, g.AwayLastGameDate, g.GameDate, ev.Input.AwayInjuryImpact, e.cal)

	ev.Probability = ComputeWinProbability(ev.Home, ev.Away, ev.HomeContext, ev.AwayContext, e.cal)
	ev.Market = CompareMarket(&ev.Input.Game, ev.Probability.Winner, ev.Probability.WinnerProbability(), e.cal.RemoveVig)
}

// Classify assigns the recommendation and confidence score
func (e *Evaluator) Classify(ev *Evaluation) {
	ev.Recommendation = Classify(ev.Probability.WinnerProbability(), ev.Market.Edge, ev.winnerTeam(), e.cal.Thresholds)
	ev.Confidence = ScoreConfidence(ConfidenceInput{
		HomeGamesPlayed:        ev.Home.GamesPlayed,
		AwayGamesPlayed:        ev.Away.GamesPlayed,
		HomeSupplementary:      ev.Input.HomeStats.Complete(),
		AwaySupplementary:      ev.Input.AwayStats.Complete(),
		InjuryDataIncorporated: ev.Input.InjuryDataIncorporated,
	}, e.cal.Confidence)
}

// Prediction assembles the persisted record from a classified evaluation
func (e *Evaluator) Prediction(ev *Evaluation) *models.Prediction {
	in := ev.Input
	g := in.Game

	return &models.Prediction{
		GameID:   g.GameID,
		GameDate: g.GameDate.Format(models.GameDateLayout),
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		GameTime: g.GameTime(),

		HomeNetRating: ev.Home.NetRating,
		HomeOffRating: ev.Home.OffRating,
		HomeDefRating: ev.Home.DefRating,
		AwayNetRating: ev.Away.NetRating,
		AwayOffRating: ev.Away.OffRating,
		AwayDefRating: ev.Away.DefRating,
		HomePace:      e.pace(in.HomeStats),
		AwayPace:      e.pace(in.AwayStats),

		HomeRestDays:     ev.HomeContext.RestDays,
		AwayRestDays:     ev.AwayContext.RestDays,
		HomeBackToBack:   ev.HomeContext.OnBackToBack,
		AwayBackToBack:   ev.AwayContext.OnBackToBack,
		HomeInjuryImpact: ev.HomeContext.InjuryImpact,
		AwayInjuryImpact: ev.AwayContext.InjuryImpact,

		HomeWinProbability: ev.Probability.Home,
		AwayWinProbability: ev.Probability.Away,
		PredictedWinner:    ev.winnerTeam(),
		ConfidenceScore:    ev.Confidence.Score,

		HomeImpliedOdds: ev.Market.HomeImplied,
		AwayImpliedOdds: ev.Market.AwayImplied,
		EdgeVsMarket:    ev.Market.Edge,

		Recommendation:     ev.Recommendation.Category,
		Reasoning:          ev.Recommendation.Reasoning,
		CalibrationFactors: e.factors(ev),
		GeneratedAt:        in.GeneratedAt.UTC(),
	}
}

// Evaluate runs every stage and returns the prediction
func (e *Evaluator) Evaluate(in MatchupInput) (*models.Prediction, error) {
	ev, err := e.BuildProfiles(in)
	if err != nil {
		return nil, err
	}
	e.ComputeProbability(ev)
	e.Classify(ev)
	return e.Prediction(ev), nil
}

// EvaluateMatchup evaluates one matchup under cal
func EvaluateMatchup(in MatchupInput, cal Calibration) (*models.Prediction, error) {
	e, err := NewEvaluator(cal)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(in)
}

func (ev *Evaluation) winnerTeam() string {
	if ev.Probability.Winner == models.SideAway {
		return ev.Input.Game.AwayTeam
	}
	return ev.Input.Game.HomeTeam
}

func (e *Evaluator) pace(stats *models.SupplementaryStats) float64 {
	if stats != nil && stats.Pace > 0 {
		return stats.Pace
	}
	return e.cal.DefaultPace
}

func (e *Evaluator) factors(ev *Evaluation) models.CalibrationFactors {
	in := ev.Input
	return models.CalibrationFactors{
		ModelVersion: e.cal.ModelVersion,

		HomeWins:                 in.HomeRecord.Wins,
		HomeLosses:               in.HomeRecord.Losses,
		HomePointsPerGame:        in.HomeRecord.PointsPerGame,
		HomePointsAllowedPerGame: in.HomeRecord.PointsAllowedPerGame,
		AwayWins:                 in.AwayRecord.Wins,
		AwayLosses:               in.AwayRecord.Losses,
		AwayPointsPerGame:        in.AwayRecord.PointsPerGame,
		AwayPointsAllowedPerGame: in.AwayRecord.PointsAllowedPerGame,

		NetRatingScale:     e.cal.NetRatingScale,
		HomeCourtAdvantage: e.cal.HomeCourtAdvantage,
		BackToBackPenalty:  e.cal.BackToBackPenalty,
		LogisticScale:      e.cal.LogisticScale,
		ProbabilityFloor:   e.cal.ProbabilityFloor,
		ProbabilityCeiling: e.cal.ProbabilityCeiling,

		HomeDifferential:   ev.Probability.HomeDifferential,
		AwayDifferential:   ev.Probability.AwayDifferential,
		RawHomeProbability: ev.Probability.RawHome,
		RawAwayProbability: ev.Probability.RawAway,

		HomeSupplementary: in.HomeStats.Complete(),
		AwaySupplementary: in.AwayStats.Complete(),
		MinGamesPlayed:    ev.Confidence.MinGamesPlayed,
		DataQuality:       ev.Confidence.DataQuality,
		SampleSizeBonus:   ev.Confidence.SampleSizeBonus,
		InjuryDataBonus:   ev.Confidence.InjuryDataBonus,

		HomeMoneyline: in.Game.HomeMoneyline,
		AwayMoneyline: in.Game.AwayMoneyline,
		VigRemoved:    ev.Market.VigRemoved,
	}
}
