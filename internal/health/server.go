// Package health serves liveness, readiness and optionally metrics for the
// scheduler daemon.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to DatabasePinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// RunReporter exposes the outcome of the most recent scheduled run.
type RunReporter interface {
	LastRun() (finishedAt time.Time, success bool, ok bool)
}

// Check and report statuses.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
	StatusFailed      = "failed"
	StatusNone        = "none"
)

// Check is the outcome of one named check. Only critical checks decide readiness.
type Check struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Critical bool   `json:"critical"`
}

// Report is the body returned by every endpoint.
type Report struct {
	Status  string  `json:"status"`
	Service string  `json:"service"`
	Version string  `json:"version,omitempty"`
	Commit  string  `json:"commit,omitempty"`
	Time    string  `json:"time"`
	Uptime  string  `json:"uptime"`
	Checks  []Check `json:"checks,omitempty"`
}

// Check returns the named check, if present.
func (r Report) Check(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName    string
	Version        string
	Commit         string
	Port           int
	Logger         *logrus.Logger
	DB             DatabasePinger
	Runs           RunReporter
	MetricsHandler http.Handler
	MetricsPath    string
	PingTimeout    time.Duration
}

// Server answers /live, /health and /ready.
type Server struct {
	cfg     Config
	logger  *logrus.Entry
	now     func() time.Time
	started time.Time
	ready   atomic.Bool
	srv     *http.Server
}

// NewServer creates a health server. It reports not ready until SetReady(true).
func NewServer(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 3 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Server{
		cfg:     cfg,
		logger:  log.WithField("component", "health"),
		now:     time.Now,
		started: time.Now(),
	}
}

// SetReady flips the scheduler readiness check.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady returns whether the server has been marked ready.
func (s *Server) IsReady() bool {
	return s.ready.Load()
}

// Handler returns the endpoint mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if s.cfg.MetricsHandler != nil {
		mux.Handle(s.cfg.MetricsPath, s.cfg.MetricsHandler)
	}
	return mux
}

// Start binds the port, then serves in the background until ctx is done.
// A bind failure is returned to the caller.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.cfg.Port))
	if err != nil {
		return fmt.Errorf("health server: listen on port %d: %w", s.cfg.Port, err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	s.logger.WithField("port", s.cfg.Port).Info("Health server listening")

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Health server stopped unexpectedly")
		}
	}()
	context.AfterFunc(ctx, func() {
		if err := s.Shutdown(); err != nil {
			s.logger.WithError(err).Warn("Health server shutdown incomplete")
		}
	})

	return nil
}

// Shutdown stops the listener, allowing in-flight requests five seconds.
func (s *Server) Shutdown() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.report(StatusOK, nil))
}

// handleHealth always answers 200 and carries the informational checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.report(StatusOK, s.runCheck()))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := append(s.criticalChecks(r.Context()), s.runCheck()...)

	status, code := StatusOK, http.StatusOK
	for _, c := range checks {
		if c.Critical && c.Status != StatusOK {
			status, code = StatusUnavailable, http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, s.report(status, checks))
}

func (s *Server) criticalChecks(ctx context.Context) []Check {
	scheduler := Check{Name: "scheduler", Status: StatusOK, Critical: true}
	if !s.IsReady() {
		scheduler.Status = StatusUnavailable
		scheduler.Detail = "not started"
	}
	checks := []Check{scheduler}

	if s.cfg.DB != nil {
		store := Check{Name: "database", Status: StatusOK, Critical: true}
		pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
		defer cancel()
		if err := s.cfg.DB.Ping(pingCtx); err != nil {
			store.Status = StatusFailed
			store.Detail = err.Error()
		}
		checks = append(checks, store)
	}
	return checks
}

// runCheck reports the last scheduled run without affecting readiness.
func (s *Server) runCheck() []Check {
	if s.cfg.Runs == nil {
		return nil
	}
	last := Check{Name: "last_run", Status: StatusNone}
	if at, success, ok := s.cfg.Runs.LastRun(); ok {
		last.Status = StatusOK
		if !success {
			last.Status = StatusFailed
		}
		last.Detail = at.UTC().Format(time.RFC3339)
	}
	return []Check{last}
}

func (s *Server) report(status string, checks []Check) Report {
	now := s.now()
	return Report{
		Status:  status,
		Service: s.cfg.ServiceName,
		Version: s.cfg.Version,
		Commit:  s.cfg.Commit,
		Time:    now.UTC().Format(time.RFC3339),
		Uptime:  now.Sub(s.started).Truncate(time.Second).String(),
		Checks:  checks,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
