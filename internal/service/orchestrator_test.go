package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/game-predictor/internal/config"
	"github.com/yourusername/game-predictor/internal/database"
	"github.com/yourusername/game-predictor/internal/datasource"
	"github.com/yourusername/game-predictor/internal/engine"
	"github.com/yourusername/game-predictor/internal/models"
	"github.com/yourusername/game-predictor/internal/repository"
)

type mockStatsProvider struct {
	mock.Mock
}

func (m *mockStatsProvider) FetchStandings(ctx context.Context, season int) ([]models.TeamRecord, error) {
	args := m.Called(ctx, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamRecord), args.Error(1)
}

func (m *mockStatsProvider) FetchSchedule(ctx context.Context, date time.Time) ([]models.ScheduledGame, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduledGame), args.Error(1)
}

func (m *mockStatsProvider) Name() string {
	return "mock"
}

type mockPredictionRepository struct {
	mock.Mock
}

func (m *mockPredictionRepository) UpsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	return m.Called(ctx, predictions).Error(0)
}

func (m *mockPredictionRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.Prediction, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]*models.Prediction), args.Error(1)
}

func (m *mockPredictionRepository) GetByKey(ctx context.Context, gameID string, date time.Time) (*models.Prediction, error) {
	args := m.Called(ctx, gameID, date)
	return args.Get(0).(*models.Prediction), args.Error(1)
}

type stubSupplementaryStore struct {
	stats map[string]models.SupplementaryStats
	err   error
}

func (s stubSupplementaryStore) FetchAll(context.Context) (map[string]models.SupplementaryStats, error) {
	return s.stats, s.err
}

var (
	gameDay   = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	fixedTime = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
)

func testStandings() []models.TeamRecord {
	return []models.TeamRecord{
		{Abbreviation: "BOS", Wins: 30, Losses: 10, PointsPerGame: 112.5, PointsAllowedPerGame: 110},
		{Abbreviation: "LAL", Wins: 20, Losses: 20, PointsPerGame: 108.5, PointsAllowedPerGame: 110},
		{Abbreviation: "MIA", Wins: 25, Losses: 15, PointsPerGame: 111, PointsAllowedPerGame: 109},
		{Abbreviation: "CHI", Wins: 18, Losses: 22, PointsPerGame: 107, PointsAllowedPerGame: 111},
		{Abbreviation: "NYK", Wins: 24, Losses: 16, PointsPerGame: 113, PointsAllowedPerGame: 110},
	}
}

func testSchedule() []models.ScheduledGame {
	return []models.ScheduledGame{
		{GameID: "1", GameDate: gameDay, HomeTeam: "BOS", AwayTeam: "LAL"},
		{GameID: "2", GameDate: gameDay, HomeTeam: "NYK", AwayTeam: "XXX"},
		{GameID: "3", GameDate: gameDay, HomeTeam: "MIA", AwayTeam: "CHI"},
	}
}

func newProvider(standings []models.TeamRecord, games []models.ScheduledGame) *mockStatsProvider {
	provider := &mockStatsProvider{}
	provider.On("FetchStandings", mock.Anything, 2023).Return(standings, nil)
	provider.On("FetchSchedule", mock.Anything, gameDay).Return(games, nil)
	return provider
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{Workers: 2, PersistBatchSize: 25, PersistRetries: 2, RunTimeout: time.Minute}
}

func newTestOrchestrator(t *testing.T, deps Dependencies, cfg config.EngineConfig) *PredictionOrchestrator {
	t.Helper()

	if deps.Evaluator == nil {
		evaluator, err := engine.NewEvaluator(engine.DefaultCalibration())
		require.NoError(t, err)
		deps.Evaluator = evaluator
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return fixedTime }
	}
	deps.BackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	log := logrus.New()
	log.SetOutput(io.Discard)

	o, err := NewPredictionOrchestrator(deps, cfg, log)
	require.NoError(t, err)
	return o
}

func TestNewPredictionOrchestrator_RequiresCollaborators(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := NewPredictionOrchestrator(Dependencies{}, testEngineConfig(), log)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestRun_SkipsMissingTeamsAndPersists(t *testing.T) {
	repo := &mockPredictionRepository{}
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	o := newTestOrchestrator(t, Dependencies{
		Provider:    newProvider(testStandings(), testSchedule()),
		Predictions: repo,
	}, testEngineConfig())

	summary, err := o.Run(context.Background(), gameDay, RunOptions{})
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "2024-01-10", summary.Date)
	assert.Equal(t, 3, summary.GamesFound)
	assert.Equal(t, 2, summary.PredictionsGenerated)
	assert.Equal(t, 2, summary.PredictionsPersisted)
	assert.Equal(t, []string{"2"}, summary.SkippedGameIDs)
	assert.Empty(t, summary.FailedGameIDs)
	assert.Empty(t, summary.ErrorMessage)
	assert.Equal(t, StatePersisted, summary.States["1"])
	assert.Equal(t, StateSkipped, summary.States["2"])
	assert.Equal(t, StatePersisted, summary.States["3"])

	require.Len(t, summary.Predictions, 2)
	first := summary.Predictions[0]
	assert.Equal(t, "1", first.GameID)
	assert.Equal(t, 0.70, first.HomeWinProbability)
	assert.Equal(t, "BOS", first.PredictedWinner)
	assert.Equal(t, models.RecommendationLean, first.Recommendation)
	assert.Equal(t, 77.0, first.ConfidenceScore)
	assert.Equal(t, fixedTime, first.GeneratedAt)
	assert.Equal(t, "3", summary.Predictions[1].GameID)

	repo.AssertNumberOfCalls(t, "UpsertBatch", 1)
}

func TestRun_UpstreamFailureIsFatal(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(p *mockStatsProvider)
		wantInErr string
	}{
		{
			name: "standings",
			setup: func(p *mockStatsProvider) {
				p.On("FetchStandings", mock.Anything, 2023).Return(nil, errors.New("connection reset"))
			},
			wantInErr: "standings",
		},
		{
			name: "schedule",
			setup: func(p *mockStatsProvider) {
				p.On("FetchStandings", mock.Anything, 2023).Return(testStandings(), nil)
				p.On("FetchSchedule", mock.Anything, gameDay).Return(nil,
					datasource.NewDataSourceError("stats_api", datasource.ErrCodeServerError, "status 503", nil))
			},
			wantInErr: "schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockStatsProvider{}
			tt.setup(provider)
			repo := &mockPredictionRepository{}

			o := newTestOrchestrator(t, Dependencies{Provider: provider, Predictions: repo}, testEngineConfig())
			summary, err := o.Run(context.Background(), gameDay, RunOptions{})

			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrUpstreamFetch)
			assert.Contains(t, err.Error(), tt.wantInErr)
			assert.False(t, summary.Success)
			assert.NotEmpty(t, summary.ErrorMessage)
			repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
		})
	}
}

func TestRun_SupplementaryStats(t *testing.T) {
	full := map[string]models.SupplementaryStats{
		"BOS": {Abbreviation: "BOS", Pace: 99.1, DefensiveRating: 110.2},
		"LAL": {Abbreviation: "LAL", Pace: 101.4, DefensiveRating: 114.0},
	}

	tests := []struct {
		name           string
		store          datasource.SupplementaryStatsStore
		wantConfidence float64
		wantHomePace   float64
	}{
		{name: "absent store", store: nil, wantConfidence: 77, wantHomePace: 100},
		{name: "store failure tolerated", store: stubSupplementaryStore{err: errors.New("timeout")}, wantConfidence: 77, wantHomePace: 100},
		{name: "full data quality", store: stubSupplementaryStore{stats: full}, wantConfidence: 81, wantHomePace: 99.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockPredictionRepository{}
			o := newTestOrchestrator(t, Dependencies{
				Provider:      newProvider(testStandings(), testSchedule()[:1]),
				Supplementary: tt.store,
				Predictions:   repo,
			}, testEngineConfig())

			summary, err := o.Run(context.Background(), gameDay, RunOptions{DryRun: true})
			require.NoError(t, err)
			require.Len(t, summary.Predictions, 1)
			assert.Equal(t, tt.wantConfidence, summary.Predictions[0].ConfidenceScore)
			assert.Equal(t, tt.wantHomePace, summary.Predictions[0].HomePace)
		})
	}
}

func TestRun_DryRunDoesNotPersist(t *testing.T) {
	repo := &mockPredictionRepository{}
	o := newTestOrchestrator(t, Dependencies{
		Provider:    newProvider(testStandings(), testSchedule()),
		Predictions: repo,
	}, testEngineConfig())

	summary, err := o.Run(context.Background(), gameDay, RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 2, summary.PredictionsGenerated)
	assert.Equal(t, 0, summary.PredictionsPersisted)
	assert.Equal(t, StateClassified, summary.States["1"])
	repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestRun_GameIDsSubset(t *testing.T) {
	repo := &mockPredictionRepository{}
	repo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(ps []*models.Prediction) bool {
		return len(ps) == 1 && ps[0].GameID == "3"
	})).Return(nil)

	o := newTestOrchestrator(t, Dependencies{
		Provider:    newProvider(testStandings(), testSchedule()),
		Predictions: repo,
	}, testEngineConfig())

	summary, err := o.Run(context.Background(), gameDay, RunOptions{GameIDs: []string{"3", "99"}})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.GamesFound)
	assert.Equal(t, 1, summary.PredictionsPersisted)
	assert.Len(t, summary.States, 1)
	repo.AssertExpectations(t)
}

func TestRun_FailedChunkMarksOnlyItsMatchups(t *testing.T) {
	games := []models.ScheduledGame{
		{GameID: "1", GameDate: gameDay, HomeTeam: "BOS", AwayTeam: "LAL"},
		{GameID: "2", GameDate: gameDay, HomeTeam: "NYK", AwayTeam: "CHI"},
		{GameID: "3", GameDate: gameDay, HomeTeam: "MIA", AwayTeam: "CHI"},
	}
	chunkFor := func(id string) interface{} {
		return mock.MatchedBy(func(ps []*models.Prediction) bool {
			return len(ps) == 1 && ps[0].GameID == id
		})
	}

	repo := &mockPredictionRepository{}
	repo.On("UpsertBatch", mock.Anything, chunkFor("1")).Return(nil)
	repo.On("UpsertBatch", mock.Anything, chunkFor("2")).Return(errors.New("deadlock detected"))
	repo.On("UpsertBatch", mock.Anything, chunkFor("3")).Return(nil)

	cfg := testEngineConfig()
	cfg.PersistBatchSize = 1
	o := newTestOrchestrator(t, Dependencies{
		Provider:    newProvider(testStandings(), games),
		Predictions: repo,
	}, cfg)

	summary, err := o.Run(context.Background(), gameDay, RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPersistence)

	assert.False(t, summary.Success)
	assert.Equal(t, 3, summary.PredictionsGenerated)
	assert.Equal(t, 2, summary.PredictionsPersisted)
	assert.Equal(t, []string{"2"}, summary.FailedGameIDs)
	assert.Equal(t, StateFailed, summary.States["2"])
	assert.Equal(t, StatePersisted, summary.States["3"])
	assert.Contains(t, summary.ErrorMessage, "deadlock detected")

	// one attempt plus two retries
	repo.AssertNumberOfCalls(t, "UpsertBatch", 5)
}

func TestRun_InjuryFeed(t *testing.T) {
	injuries := func(team string, _ time.Time) float64 {
		if team == "BOS" {
			return 4
		}
		return 0
	}

	o := newTestOrchestrator(t, Dependencies{
		Provider:     newProvider(testStandings(), testSchedule()[:1]),
		Predictions:  &mockPredictionRepository{},
		InjuryImpact: injuries,
	}, testEngineConfig())

	summary, err := o.Run(context.Background(), gameDay, RunOptions{DryRun: true})
	require.NoError(t, err)
	require.Len(t, summary.Predictions, 1)

	p := summary.Predictions[0]
	assert.Equal(t, 4.0, p.HomeInjuryImpact)
	assert.Equal(t, 87.0, p.ConfidenceScore)
	assert.Equal(t, 10.0, p.CalibrationFactors.InjuryDataBonus)
	assert.InDelta(t, 6.5, p.CalibrationFactors.HomeDifferential, 1e-9)
}

func TestRun_CancelledContext(t *testing.T) {
	repo := &mockPredictionRepository{}
	o := newTestOrchestrator(t, Dependencies{
		Provider:    newProvider(testStandings(), testSchedule()),
		Predictions: repo,
	}, testEngineConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := o.Run(ctx, gameDay, RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, summary.Success)
	assert.Len(t, summary.FailedGameIDs, 3)
	repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestRun_NoGames(t *testing.T) {
	o := newTestOrchestrator(t, Dependencies{
		Provider:    newProvider(testStandings(), []models.ScheduledGame{}),
		Predictions: &mockPredictionRepository{},
	}, testEngineConfig())

	summary, err := o.Run(context.Background(), gameDay, RunOptions{})
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 0, summary.GamesFound)
}

func TestRun_RepeatedRunsAreIdempotent(t *testing.T) {
	repos, err := repository.NewSQLiteRepositories(context.Background(), database.SetupTestSQLite(t))
	require.NoError(t, err)

	now := fixedTime
	o := newTestOrchestrator(t, Dependencies{
		Provider:    newProvider(testStandings(), testSchedule()),
		Predictions: repos.Predictions,
		Clock: func() time.Time {
			now = now.Add(7 * time.Millisecond)
			return now
		},
	}, testEngineConfig())

	first, err := o.Run(context.Background(), gameDay, RunOptions{})
	require.NoError(t, err)
	second, err := o.Run(context.Background(), gameDay, RunOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	stored, err := repos.Predictions.GetByDate(context.Background(), gameDay)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, first.Predictions[0], stored[0])
	assert.True(t, second.Predictions[0].GeneratedAt.After(stored[0].GeneratedAt))
}
