package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuns struct {
	at      time.Time
	success bool
	ok      bool
}

func (f fakeRuns) LastRun() (time.Time, bool, bool) {
	return f.at, f.success, f.ok
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, Report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body Report
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestLiveAndHealth(t *testing.T) {
	s := NewServer(Config{
		ServiceName: "game-predictor",
		Version:     "1.2.0",
		Runs:        fakeRuns{},
	})
	start := s.started
	s.now = func() time.Time { return start.Add(90 * time.Second) }
	h := s.Handler()

	rec, body := get(t, h, "/live")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusOK, body.Status)
	assert.Equal(t, "1.2.0", body.Version)
	assert.Equal(t, "1m30s", body.Uptime)
	assert.Empty(t, body.Checks)

	// not ready yet, but /health still answers 200
	rec, body = get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	last, ok := body.Check("last_run")
	require.True(t, ok)
	assert.Equal(t, StatusNone, last.Status)
	assert.False(t, last.Critical)

	rec, _ = get(t, h, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReady(t *testing.T) {
	finished := time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		ready      bool
		ping       error
		runs       RunReporter
		wantCode   int
		wantChecks map[string]string
	}{
		{
			name:       "not marked ready",
			ready:      false,
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]string{"scheduler": StatusUnavailable, "database": StatusOK},
		},
		{
			name:       "database down",
			ready:      true,
			ping:       errors.New("connection refused"),
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]string{"scheduler": StatusOK, "database": StatusFailed},
		},
		{
			name:       "failed run does not fail readiness",
			ready:      true,
			runs:       fakeRuns{at: finished, success: false, ok: true},
			wantCode:   http.StatusOK,
			wantChecks: map[string]string{"scheduler": StatusOK, "database": StatusOK, "last_run": StatusFailed},
		},
		{
			name:       "no run yet",
			ready:      true,
			runs:       fakeRuns{},
			wantCode:   http.StatusOK,
			wantChecks: map[string]string{"scheduler": StatusOK, "database": StatusOK, "last_run": StatusNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ping := tt.ping
			s := NewServer(Config{
				ServiceName: "game-predictor",
				DB:          PingFunc(func(context.Context) error { return ping }),
				Runs:        tt.runs,
			})
			s.SetReady(tt.ready)

			rec, body := get(t, s.Handler(), "/ready")
			assert.Equal(t, tt.wantCode, rec.Code)

			got := make(map[string]string, len(body.Checks))
			for _, c := range body.Checks {
				got[c.Name] = c.Status
			}
			assert.Equal(t, tt.wantChecks, got)
		})
	}
}

func TestReadyReportsPingError(t *testing.T) {
	s := NewServer(Config{DB: PingFunc(func(context.Context) error { return errors.New("connection refused") })})
	s.SetReady(true)

	_, body := get(t, s.Handler(), "/ready")
	assert.Equal(t, StatusUnavailable, body.Status)
	db, ok := body.Check("database")
	require.True(t, ok)
	assert.True(t, db.Critical)
	assert.Equal(t, "connection refused", db.Detail)
}

func TestLastRunDetail(t *testing.T) {
	finished := time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC)
	s := NewServer(Config{Runs: fakeRuns{at: finished, success: true, ok: true}})

	_, body := get(t, s.Handler(), "/health")
	last, ok := body.Check("last_run")
	require.True(t, ok)
	assert.Equal(t, StatusOK, last.Status)
	assert.Equal(t, "2024-01-10T14:00:00Z", last.Detail)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("game_predictor_runs_total 1\n"))
	})

	tests := []struct {
		name string
		path string
		hit  string
		miss string
	}{
		{name: "default path", path: "", hit: "/metrics", miss: "/internal/metrics"},
		{name: "configured path", path: "/internal/metrics", hit: "/internal/metrics", miss: "/metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{MetricsHandler: metrics, MetricsPath: tt.path})

			rec, _ := get(t, s.Handler(), tt.hit)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "game_predictor_runs_total")

			rec, _ = get(t, s.Handler(), tt.miss)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	assert.NoError(t, NewServer(Config{}).Shutdown())
}
