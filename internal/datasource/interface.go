// Package datasource provides the upstream statistics collaborators: the
// standings/schedule provider and the optional supplementary stats store.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/game-predictor/internal/models"
)

// StatsProvider fetches season records and scheduled games
type StatsProvider interface {
	// FetchStandings returns every team's season-to-date record
	FetchStandings(ctx context.Context, season int) ([]models.TeamRecord, error)

	// FetchSchedule returns the games scheduled on date
	FetchSchedule(ctx context.Context, date time.Time) ([]models.ScheduledGame, error)

	// Name returns the name of the provider
	Name() string
}

// SupplementaryStatsStore returns optional pace and defensive figures keyed by
// team abbreviation. Callers tolerate failures.
type SupplementaryStatsStore interface {
	FetchAll(ctx context.Context) (map[string]models.SupplementaryStats, error)
}

// SeasonFor returns the season a game date belongs to, identified by the year
// it starts in. Seasons begin in October.
func SeasonFor(date time.Time) int {
	if date.Month() >= time.October {
		return date.Year()
	}
	return date.Year() - 1
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is makes every DataSourceError match models.ErrUpstreamFetch
func (e DataSourceError) Is(target error) bool {
	return target == models.ErrUpstreamFetch
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// ErrCircuitOpen is returned while the HTTP client's circuit breaker is open
var ErrCircuitOpen = errors.New("circuit breaker open")

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
