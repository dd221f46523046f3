package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/game-predictor/internal/config"
	"github.com/yourusername/game-predictor/internal/datasource"
	"github.com/yourusername/game-predictor/internal/engine"
	"github.com/yourusername/game-predictor/internal/logger"
	"github.com/yourusername/game-predictor/internal/metrics"
	"github.com/yourusername/game-predictor/internal/models"
	"github.com/yourusername/game-predictor/internal/repository"
)

// RunOptions narrows a run
type RunOptions struct {
	// GameIDs restricts the run to these games; empty means every scheduled game
	GameIDs []string
	// DryRun evaluates without persisting
	DryRun bool
}

// Dependencies are the collaborators of the orchestrator. Supplementary,
// InjuryImpact, Clock and BackOff are optional.
type Dependencies struct {
	Provider      datasource.StatsProvider
	Supplementary datasource.SupplementaryStatsStore
	Predictions   repository.PredictionRepository
	Evaluator     *engine.Evaluator
	InjuryImpact  engine.InjuryImpactFunc
	Clock         func() time.Time
	BackOff       func() backoff.BackOff
}

// PredictionOrchestrator runs the daily prediction batch
type PredictionOrchestrator struct {
	deps       Dependencies
	cfg        config.EngineConfig
	injuryFeed bool
	validator  *PredictionValidator
	logger     *logger.PredictionLogger
	audit      *logger.AuditLogger
}

// NewPredictionOrchestrator creates a new orchestrator
func NewPredictionOrchestrator(deps Dependencies, cfg config.EngineConfig, log *logrus.Logger) (*PredictionOrchestrator, error) {
	if deps.Provider == nil || deps.Predictions == nil || deps.Evaluator == nil {
		return nil, fmt.Errorf("%w: provider, prediction repository and evaluator are required", models.ErrConfiguration)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PersistBatchSize <= 0 {
		cfg.PersistBatchSize = 25
	}

	injuryFeed := deps.InjuryImpact != nil
	if !injuryFeed {
		deps.InjuryImpact = engine.NoInjuryImpact
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.BackOff == nil {
		deps.BackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		}
	}

	return &PredictionOrchestrator{
		deps:       deps,
		cfg:        cfg,
		injuryFeed: injuryFeed,
		validator:  NewPredictionValidator(deps.Evaluator.Calibration()),
		logger:     logger.NewPredictionLogger(log),
		audit:      logger.NewAuditLogger(log),
	}, nil
}

// Run predicts every game scheduled on date. Upstream and timeout failures
// abort the run; skipped and failed matchups are reported in the summary.
// A non-nil error wrapping models.ErrPersistence means some chunks were not
// written while the rest were.
func (o *PredictionOrchestrator) Run(ctx context.Context, date time.Time, opts RunOptions) (*RunSummary, error) {
	began := time.Now()
	runID := uuid.NewString()
	generatedAt := o.deps.Clock().UTC()
	summary := NewRunSummary(runID, date, generatedAt, opts.DryRun)
	log := o.logger.ForRun(runID, summary.Date)

	if o.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
		defer cancel()
	}

	err := o.run(ctx, date, opts, generatedAt, summary, log)
	if err != nil {
		summary.fail(err)
	}

	summary.Duration = time.Since(began)
	metrics.RecordRun(summary.Success, summary.PredictionsGenerated, summary.Duration.Seconds(), generatedAt.Unix())
	log.LogRunSummary(summary.GamesFound, summary.PredictionsGenerated, summary.PredictionsPersisted,
		len(summary.SkippedGameIDs), len(summary.FailedGameIDs), summary.Success, summary.Duration)
	return summary, err
}

func (o *PredictionOrchestrator) run(ctx context.Context, date time.Time, opts RunOptions, generatedAt time.Time, summary *RunSummary, log *logger.PredictionLogger) error {
	cal := o.deps.Evaluator.Calibration()
	o.audit.LogCalibration(summary.RunID, cal.ModelVersion, cal.Fields())

	standings, games, err := o.fetch(ctx, date)
	if err != nil {
		return err
	}
	games = filterGames(games, opts.GameIDs)
	summary.GamesFound = len(games)
	metrics.RecordGamesFound(len(games))
	if len(games) == 0 {
		log.Info("No games scheduled")
		summary.Success = true
		return nil
	}

	supplementary := o.fetchSupplementary(ctx, log)

	records := make(map[string]models.TeamRecord, len(standings))
	for _, r := range standings {
		records[r.Abbreviation] = r
	}

	matchups := make([]*matchup, len(games))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i := range games {
		g.Go(func() error {
			matchups[i] = o.evaluate(gctx, games[i], records, supplementary, generatedAt, log)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for _, m := range matchups {
			summary.record(m)
		}
		return fmt.Errorf("run interrupted during evaluation: %w", err)
	}

	var classified []*matchup
	for _, m := range matchups {
		if m.state == StateClassified {
			classified = append(classified, m)
			summary.Predictions = append(summary.Predictions, m.prediction)
		}
	}
	summary.PredictionsGenerated = len(classified)

	var persistErr error
	if opts.DryRun {
		o.audit.LogDryRun(summary.RunID, len(classified))
	} else {
		persistErr = o.persist(ctx, summary.RunID, classified, log)
	}

	for _, m := range matchups {
		summary.record(m)
	}
	summary.Success = persistErr == nil && len(summary.FailedGameIDs) == 0
	return persistErr
}

// fetch loads standings and the schedule. Either failing aborts the run.
func (o *PredictionOrchestrator) fetch(ctx context.Context, date time.Time) ([]models.TeamRecord, []models.ScheduledGame, error) {
	started := time.Now()
	standings, err := o.deps.Provider.FetchStandings(ctx, datasource.SeasonFor(date))
	metrics.RecordUpstreamFetch("standings", time.Since(started).Seconds())
	if err != nil {
		return nil, nil, upstreamError("standings", err)
	}

	started = time.Now()
	games, err := o.deps.Provider.FetchSchedule(ctx, date)
	metrics.RecordUpstreamFetch("schedule", time.Since(started).Seconds())
	if err != nil {
		return nil, nil, upstreamError("schedule", err)
	}
	return standings, games, nil
}

func upstreamError(what string, err error) error {
	if errors.Is(err, models.ErrUpstreamFetch) {
		return fmt.Errorf("failed to fetch %s: %w", what, err)
	}
	return fmt.Errorf("%w: failed to fetch %s: %v", models.ErrUpstreamFetch, what, err)
}

func (o *PredictionOrchestrator) fetchSupplementary(ctx context.Context, log *logger.PredictionLogger) map[string]models.SupplementaryStats {
	if o.deps.Supplementary == nil {
		return nil
	}
	stats, err := o.deps.Supplementary.FetchAll(ctx)
	if err != nil {
		log.WithError(err).Warn("Supplementary stats unavailable, continuing without them")
		return nil
	}
	return stats
}

// evaluate walks one game through the model stages
func (o *PredictionOrchestrator) evaluate(ctx context.Context, game models.ScheduledGame, records map[string]models.TeamRecord, supplementary map[string]models.SupplementaryStats, generatedAt time.Time, log *logger.PredictionLogger) *matchup {
	m := newMatchup(game)
	if err := ctx.Err(); err != nil {
		m.fail(StageProfiles, err)
		return m
	}

	in := engine.MatchupInput{
		Game:                   game,
		HomeRecord:             lookupRecord(records, game.HomeTeam),
		AwayRecord:             lookupRecord(records, game.AwayTeam),
		HomeStats:              lookupStats(supplementary, game.HomeTeam),
		AwayStats:              lookupStats(supplementary, game.AwayTeam),
		HomeInjuryImpact:       o.deps.InjuryImpact(game.HomeTeam, game.GameDate),
		AwayInjuryImpact:       o.deps.InjuryImpact(game.AwayTeam, game.GameDate),
		InjuryDataIncorporated: o.injuryFeed,
		GeneratedAt:            generatedAt,
	}

	ev, err := o.deps.Evaluator.BuildProfiles(in)
	if errors.Is(err, models.ErrMissingTeamData) {
		m.skip(err)
		metrics.RecordSkipped()
		log.LogMatchupSkipped(game.GameID, game.HomeTeam, game.AwayTeam, err)
		return m
	}
	if err != nil {
		o.failMatchup(m, StageProfiles, err, log)
		return m
	}
	m.advance(StateProfilesBuilt)

	o.deps.Evaluator.ComputeProbability(ev)
	m.advance(StateProbabilityComputed)

	o.deps.Evaluator.Classify(ev)
	prediction := o.deps.Evaluator.Prediction(ev)
	if err := o.validator.Validate(prediction); err != nil {
		o.failMatchup(m, StageValidate, err, log)
		return m
	}
	m.prediction = prediction
	m.advance(StateClassified)

	metrics.RecordPrediction(string(prediction.Recommendation), prediction.WinnerProbability(), prediction.ConfidenceScore)
	log.LogMatchupEvaluated(game.GameID, game.HomeTeam, game.AwayTeam, prediction.PredictedWinner,
		prediction.WinnerProbability(), prediction.EdgeVsMarket, string(prediction.Recommendation), prediction.ConfidenceScore)
	return m
}

func (o *PredictionOrchestrator) failMatchup(m *matchup, stage string, err error, log *logger.PredictionLogger) {
	m.fail(stage, err)
	metrics.RecordFailed(stage)
	log.LogMatchupFailed(m.game.GameID, stage, err)
}

// persist writes classified matchups in chunks, retrying each chunk with
// backoff. A failed chunk marks only its own matchups failed.
func (o *PredictionOrchestrator) persist(ctx context.Context, runID string, classified []*matchup, log *logger.PredictionLogger) error {
	var failedChunks, failedPredictions int
	var lastErr error

	for start := 0; start < len(classified); start += o.cfg.PersistBatchSize {
		end := start + o.cfg.PersistBatchSize
		if end > len(classified) {
			end = len(classified)
		}
		chunk := classified[start:end]

		predictions := make([]*models.Prediction, len(chunk))
		gameIDs := make([]string, len(chunk))
		for i, m := range chunk {
			predictions[i] = m.prediction
			gameIDs[i] = m.game.GameID
		}

		attempts := 0
		operation := func() error {
			attempts++
			return o.deps.Predictions.UpsertBatch(ctx, predictions)
		}
		notify := func(err error, wait time.Duration) {
			metrics.RecordPersistRetry()
			log.WithError(err).WithField("retry_in", wait).Warn("Persisting predictions failed, retrying")
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(o.deps.BackOff(), uint64(o.cfg.PersistRetries)), ctx)

		if err := backoff.RetryNotify(operation, policy, notify); err != nil {
			if !errors.Is(err, models.ErrPersistence) {
				err = fmt.Errorf("%w: %v", models.ErrPersistence, err)
			}
			o.audit.LogPersistenceFailure(runID, gameIDs, attempts, err)
			for _, m := range chunk {
				o.failMatchup(m, StagePersist, err, log)
			}
			failedChunks++
			failedPredictions += len(chunk)
			lastErr = err
			continue
		}

		for _, m := range chunk {
			m.advance(StatePersisted)
		}
		metrics.RecordPersisted(len(chunk))
		o.audit.LogPredictionsPersisted(runID, gameIDs, attempts)
	}

	if lastErr != nil {
		return fmt.Errorf("%d of %d predictions in %d chunks not persisted: %w",
			failedPredictions, len(classified), failedChunks, lastErr)
	}
	return nil
}

func filterGames(games []models.ScheduledGame, ids []string) []models.ScheduledGame {
	if len(ids) == 0 {
		return games
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	filtered := make([]models.ScheduledGame, 0, len(ids))
	for _, g := range games {
		if wanted[g.GameID] {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// lookupRecord returns a copy so matchups share no state
func lookupRecord(records map[string]models.TeamRecord, team string) *models.TeamRecord {
	r, ok := records[team]
	if !ok {
		return nil
	}
	return &r
}

func lookupStats(stats map[string]models.SupplementaryStats, team string) *models.SupplementaryStats {
	s, ok := stats[team]
	if !ok {
		return nil
	}
	return &s
}
