package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/game-predictor/internal/health"
	"github.com/yourusername/game-predictor/internal/metrics"
	"github.com/yourusername/game-predictor/internal/scheduler"
)

var scheduleRunOnStart bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run predictions daily on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		if !deps.cfg.Scheduler.Enabled {
			return fmt.Errorf("scheduler is disabled in configuration")
		}

		orchestrator, err := deps.newOrchestrator()
		if err != nil {
			return err
		}

		sched, err := scheduler.NewScheduler(orchestrator, deps.cfg.Scheduler, deps.cfg.Engine.RunTimeout, deps.logger)
		if err != nil {
			return err
		}
		if err := sched.ScheduleDailyRun(deps.cfg.Scheduler.Cron); err != nil {
			return err
		}

		healthCfg := health.Config{
			ServiceName: deps.cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        deps.cfg.Scheduler.HealthPort,
			Logger:      deps.logger,
			DB:          deps.pinger,
			Runs:        sched,
		}
		if deps.cfg.Metrics.Enabled {
			metrics.InitRegistry()
			if deps.cfg.Metrics.Port == deps.cfg.Scheduler.HealthPort {
				healthCfg.MetricsHandler = metrics.Handler()
				healthCfg.MetricsPath = deps.cfg.Metrics.Path
			} else {
				stopMetrics := serveMetrics(deps)
				defer stopMetrics()
			}
		}
		server := health.NewServer(healthCfg)
		if err := server.Start(ctx); err != nil {
			return err
		}

		if err := sched.Start(); err != nil {
			return err
		}
		server.SetReady(true)
		deps.logger.WithField("next_run", sched.GetNextRun()).Info("Scheduler running")

		if scheduleRunOnStart {
			go func() {
				if _, err := sched.RunNow(context.WithoutCancel(ctx)); errors.Is(err, scheduler.ErrRunInProgress) {
					deps.logger.Info("Start-up run skipped, a scheduled run is already in progress")
				}
			}()
		}

		<-ctx.Done()
		server.SetReady(false)
		return sched.Stop()
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleRunOnStart, "run-now", false, "Also run once immediately on start")
}

// serveMetrics exposes the registry on metrics.port at metrics.path and
// returns a function that shuts the listener down.
func serveMetrics(deps *dependencies) func() {
	srv := metrics.NewServer(deps.cfg.Metrics.Port, deps.cfg.Metrics.Path)
	log := deps.logger.WithFields(logrus.Fields{
		"port": deps.cfg.Metrics.Port,
		"path": deps.cfg.Metrics.Path,
	})

	go func() {
		log.Info("Metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server stopped unexpectedly")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown incomplete")
		}
	}
}
