package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/game-predictor/internal/config"
	"github.com/yourusername/game-predictor/internal/models"
)

// SourceType represents the type of statistics provider
type SourceType string

const (
	// StatsAPISourceType is the JSON statistics API provider
	StatsAPISourceType SourceType = statsAPISourceName
)

// Factory creates providers based on configuration
type Factory struct {
	logger *logrus.Logger
	config config.ProviderConfig
}

// NewFactory creates a new data source factory
func NewFactory(cfg config.ProviderConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// HTTPClientConfig maps the provider section onto the HTTP client settings
func (f *Factory) HTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           f.config.Timeout,
		MaxRetries:        f.config.MaxRetries,
		RetryWaitMin:      f.config.RetryWaitMin,
		RetryWaitMax:      f.config.RetryWaitMax,
		RateLimit:         f.config.RateLimit,
		CircuitBreakerMax: f.config.CircuitBreakerMax,
	}
}

// NewStatsProvider creates the configured statistics provider
func (f *Factory) NewStatsProvider() (StatsProvider, error) {
	switch SourceType(f.config.Name) {
	case StatsAPISourceType:
		httpClient := NewRateLimitedHTTPClient(f.HTTPClientConfig(), f.logger)
		return NewStatsAPIClient(httpClient, f.config.BaseURL, f.config.APIKey, f.logger)
	default:
		return nil, fmt.Errorf("%w: unknown stats provider: %s", models.ErrConfiguration, f.config.Name)
	}
}

// WithCache wraps a supplementary store with the configured TTL cache
func (f *Factory) WithCache(store SupplementaryStatsStore) SupplementaryStatsStore {
	if store == nil || f.config.SupplementaryCacheTTL <= 0 {
		return store
	}
	return NewCachedSupplementaryStore(store, f.config.SupplementaryCacheTTL)
}
