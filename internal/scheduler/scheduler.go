// Package scheduler triggers the daily prediction run on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/game-predictor/internal/config"
	"github.com/yourusername/game-predictor/internal/service"
)

// ErrRunInProgress is returned by RunNow while another run is executing
var ErrRunInProgress = errors.New("prediction run already in progress")

// Runner executes a prediction run for a date
type Runner interface {
	Run(ctx context.Context, date time.Time, opts service.RunOptions) (*service.RunSummary, error)
}

// Scheduler manages the scheduled prediction job
type Scheduler struct {
	cron            *cron.Cron
	runner          Runner
	logger          *logrus.Entry
	location        *time.Location
	dayOffset       int
	runTimeout      time.Duration
	now             func() time.Time
	mu              sync.RWMutex
	runMu           sync.Mutex
	inflight        sync.WaitGroup
	isRunning       bool
	jobIDs          []cron.EntryID
	lastSummary     *service.RunSummary
	lastFinished    time.Time
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Overlapping runs are skipped, whether
// fired by cron or requested through RunNow.
func NewScheduler(runner Runner, cfg config.SchedulerConfig, runTimeout time.Duration, logger *logrus.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}

	entry := logger.WithField("component", "scheduler")
	cronLogger := cron.VerbosePrintfLogger(entry)

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner:          runner,
		logger:          entry,
		location:        location,
		dayOffset:       cfg.DayOffset,
		runTimeout:      runTimeout,
		now:             time.Now,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}, nil
}

// ScheduleDailyRun schedules the prediction run
func (s *Scheduler) ScheduleDailyRun(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		_, _ = s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled daily prediction run")

	return nil
}

// TargetDate returns the game date a run started at now should predict
func (s *Scheduler) TargetDate(now time.Time) time.Time {
	local := now.In(s.location).AddDate(0, 0, s.dayOffset)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// RunNow executes one run for the current target date and records its summary.
// It returns ErrRunInProgress without running when another run holds the slot.
func (s *Scheduler) RunNow(ctx context.Context) (*service.RunSummary, error) {
	if !s.runMu.TryLock() {
		s.logger.Warn("Skipping prediction run: previous run still in progress")
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	s.inflight.Add(1)
	defer s.inflight.Done()

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	date := s.TargetDate(s.now())
	s.logger.WithField("game_date", date.Format("2006-01-02")).Info("Starting scheduled prediction run")

	summary, err := s.runner.Run(ctx, date, service.RunOptions{})
	if err != nil {
		s.logger.WithError(err).Error("Scheduled prediction run failed")
	} else {
		s.logger.WithField("summary", summary.String()).Info("Scheduled prediction run completed")
	}

	s.mu.Lock()
	s.lastSummary = summary
	s.lastFinished = s.now()
	s.mu.Unlock()

	return summary, err
}

// LastRun reports when the last run finished and whether it succeeded
func (s *Scheduler) LastRun() (time.Time, bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastFinished.IsZero() {
		return time.Time{}, false, false
	}
	success := s.lastSummary != nil && s.lastSummary.Success
	return s.lastFinished, success, true
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job including
// one started through RunNow
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("timed out waiting for running job after %v", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
