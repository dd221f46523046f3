// Package config provides configuration management for the game predictor.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/game-predictor/internal/engine"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Provider  ProviderConfig  `mapstructure:"provider" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents prediction store configuration.
// The sqlite driver only needs Path; postgres needs the connection fields.
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,dbdriver"`
	Path           string `mapstructure:"path"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// ProviderConfig represents the statistics provider configuration
type ProviderConfig struct {
	Name                  string        `mapstructure:"name" validate:"required,oneof=stats_api"`
	BaseURL               string        `mapstructure:"base_url" validate:"required,url"`
	APIKey                string        `mapstructure:"api_key"`
	Timeout               time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries            int           `mapstructure:"max_retries" validate:"gte=0"`
	RetryWaitMin          time.Duration `mapstructure:"retry_wait_min" validate:"gt=0"`
	RetryWaitMax          time.Duration `mapstructure:"retry_wait_max" validate:"gtfield=RetryWaitMin"`
	RateLimit             float64       `mapstructure:"rate_limit" validate:"gt=0"`
	CircuitBreakerMax     int           `mapstructure:"circuit_breaker_max" validate:"gt=0"`
	SupplementaryCacheTTL time.Duration `mapstructure:"supplementary_cache_ttl" validate:"gt=0"`
}

// EngineConfig represents batch run behaviour
type EngineConfig struct {
	Workers          int           `mapstructure:"workers" validate:"gt=0,lte=64"`
	PersistBatchSize int           `mapstructure:"persist_batch_size" validate:"gt=0"`
	PersistRetries   int           `mapstructure:"persist_retries" validate:"gte=0"`
	RunTimeout       time.Duration `mapstructure:"run_timeout" validate:"gt=0"`
}

// ModelConfig holds the calibration constants of the win probability model
type ModelConfig struct {
	Version              string           `mapstructure:"version" validate:"required"`
	NetRatingScale       float64          `mapstructure:"net_rating_scale" validate:"gt=0"`
	NeutralPointsPerGame float64          `mapstructure:"neutral_points_per_game" validate:"gt=0"`
	DefaultPace          float64          `mapstructure:"default_pace" validate:"gt=0"`
	DefaultRestDays      int              `mapstructure:"default_rest_days" validate:"gte=0"`
	HomeCourtAdvantage   float64          `mapstructure:"home_court_advantage" validate:"gte=0"`
	BackToBackPenalty    float64          `mapstructure:"back_to_back_penalty" validate:"gte=0"`
	LogisticScale        float64          `mapstructure:"logistic_scale" validate:"gt=0"`
	ProbabilityFloor     float64          `mapstructure:"probability_floor" validate:"gte=0,lt=1"`
	ProbabilityCeiling   float64          `mapstructure:"probability_ceiling" validate:"gtfield=ProbabilityFloor,lte=1"`
	RemoveVig            bool             `mapstructure:"remove_vig"`
	Thresholds           ThresholdsConfig `mapstructure:"thresholds"`
	Confidence           ConfidenceConfig `mapstructure:"confidence"`
}

// ThresholdsConfig holds the recommendation cut-offs
type ThresholdsConfig struct {
	StrongLeanProbability float64 `mapstructure:"strong_lean_probability" validate:"gte=0,lte=1"`
	StrongLeanEdge        float64 `mapstructure:"strong_lean_edge"`
	LeanProbability       float64 `mapstructure:"lean_probability" validate:"gte=0,lte=1"`
	LeanEdge              float64 `mapstructure:"lean_edge"`
	SlightLeanProbability float64 `mapstructure:"slight_lean_probability" validate:"gte=0,lte=1"`
	NoEdgeProbability     float64 `mapstructure:"no_edge_probability" validate:"gte=0,lte=1"`
}

// ConfidenceConfig holds the confidence score weights
type ConfidenceConfig struct {
	Base               float64                `mapstructure:"base"`
	DataQualityWeight  float64                `mapstructure:"data_quality_weight" validate:"gte=0"`
	FullDataQuality    float64                `mapstructure:"full_data_quality" validate:"gte=0,lte=1"`
	PartialDataQuality float64                `mapstructure:"partial_data_quality" validate:"gte=0,lte=1"`
	InjuryDataBonus    float64                `mapstructure:"injury_data_bonus" validate:"gte=0"`
	SampleSizeTiers    []SampleSizeTierConfig `mapstructure:"sample_size_tiers" validate:"dive"`
}

// SampleSizeTierConfig is one sample size bonus tier
type SampleSizeTierConfig struct {
	MinGames int     `mapstructure:"min_games" validate:"gt=0"`
	Bonus    float64 `mapstructure:"bonus" validate:"gte=0"`
}

// SchedulerConfig represents the daily batch schedule
type SchedulerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Cron       string `mapstructure:"cron" validate:"required,cron"`
	Timezone   string `mapstructure:"timezone" validate:"required"`
	DayOffset  int    `mapstructure:"day_offset" validate:"gte=0,lte=7"`
	HealthPort int    `mapstructure:"health_port" validate:"min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration.
// A port equal to scheduler.health_port shares the health listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// SecretsConfig locates the optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Calibration converts the model section into the engine calibration
func (c *Config) Calibration() engine.Calibration {
	m := c.Model
	tiers := make([]engine.SampleSizeTier, len(m.Confidence.SampleSizeTiers))
	for i, t := range m.Confidence.SampleSizeTiers {
		tiers[i] = engine.SampleSizeTier{MinGames: t.MinGames, Bonus: t.Bonus}
	}

	return engine.Calibration{
		ModelVersion:         m.Version,
		NetRatingScale:       m.NetRatingScale,
		NeutralPointsPerGame: m.NeutralPointsPerGame,
		DefaultPace:          m.DefaultPace,
		DefaultRestDays:      m.DefaultRestDays,
		HomeCourtAdvantage:   m.HomeCourtAdvantage,
		BackToBackPenalty:    m.BackToBackPenalty,
		LogisticScale:        m.LogisticScale,
		ProbabilityFloor:     m.ProbabilityFloor,
		ProbabilityCeiling:   m.ProbabilityCeiling,
		RemoveVig:            m.RemoveVig,
		Thresholds: engine.RecommendationThresholds{
			StrongLeanProbability: m.Thresholds.StrongLeanProbability,
			StrongLeanEdge:        m.Thresholds.StrongLeanEdge,
			LeanProbability:       m.Thresholds.LeanProbability,
			LeanEdge:              m.Thresholds.LeanEdge,
			SlightLeanProbability: m.Thresholds.SlightLeanProbability,
			NoEdgeProbability:     m.Thresholds.NoEdgeProbability,
		},
		Confidence: engine.ConfidenceWeights{
			Base:               m.Confidence.Base,
			DataQualityWeight:  m.Confidence.DataQualityWeight,
			FullDataQuality:    m.Confidence.FullDataQuality,
			PartialDataQuality: m.Confidence.PartialDataQuality,
			InjuryDataBonus:    m.Confidence.InjuryDataBonus,
			SampleSizeTiers:    tiers,
		},
	}
}
