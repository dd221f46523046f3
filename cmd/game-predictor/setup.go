package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/game-predictor/internal/config"
	"github.com/yourusername/game-predictor/internal/database"
	"github.com/yourusername/game-predictor/internal/datasource"
	"github.com/yourusername/game-predictor/internal/engine"
	"github.com/yourusername/game-predictor/internal/health"
	"github.com/yourusername/game-predictor/internal/logger"
	"github.com/yourusername/game-predictor/internal/repository"
	"github.com/yourusername/game-predictor/internal/service"
)

// dependencies are the long-lived collaborators shared by the commands
type dependencies struct {
	cfg    *config.Config
	logger *logrus.Logger
	repos  *repository.Repositories
	pinger health.DatabasePinger
	close  func()
}

func setupDependencies(ctx context.Context) (*dependencies, error) {
	bootstrap := logger.NewLogger("info")
	loadEnvFile(bootstrap)

	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Environment, bootstrap.Out)
	deps := &dependencies{cfg: cfg, logger: log}

	if err := deps.openStore(ctx); err != nil {
		return nil, err
	}
	return deps, nil
}

// openStore connects the configured prediction store
func (d *dependencies) openStore(ctx context.Context) error {
	switch d.cfg.Database.Driver {
	case "postgres":
		db, err := database.Initialize(ctx, d.cfg, d.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return err
		}
		d.repos, d.pinger, d.close = repos, db, db.Close

	case "sqlite":
		db, err := database.OpenSQLite(ctx, d.cfg.Database.Path)
		if err != nil {
			return err
		}
		repos, err := repository.NewSQLiteRepositories(ctx, db)
		if err != nil {
			db.Close()
			return err
		}
		d.repos, d.pinger, d.close = repos, health.PingFunc(db.PingContext), closeSQL(db)

	default:
		return fmt.Errorf("unsupported database driver: %s", d.cfg.Database.Driver)
	}

	d.logger.WithField("driver", d.cfg.Database.Driver).Info("Prediction store connected")
	return nil
}

func closeSQL(db *sql.DB) func() {
	return func() { db.Close() }
}

func (d *dependencies) Close() {
	if d.close != nil {
		d.close()
	}
}

// newOrchestrator wires the provider, cached supplementary stats and evaluator
func (d *dependencies) newOrchestrator() (*service.PredictionOrchestrator, error) {
	factory := datasource.NewFactory(d.cfg.Provider, d.logger)
	provider, err := factory.NewStatsProvider()
	if err != nil {
		return nil, err
	}

	evaluator, err := engine.NewEvaluator(d.cfg.Calibration())
	if err != nil {
		return nil, err
	}

	return service.NewPredictionOrchestrator(service.Dependencies{
		Provider:      provider,
		Supplementary: factory.WithCache(d.repos.TeamStats),
		Predictions:   d.repos.Predictions,
		Evaluator:     evaluator,
	}, d.cfg.Engine, d.logger)
}
