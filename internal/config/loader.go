package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. GAME_PREDICTOR_APP_LOG_LEVEL
	EnvPrefix = "GAME_PREDICTOR"

	// DefaultConfigPath is used when no path is supplied
	DefaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables are used.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults mirrors the reference calibration so an empty file yields a
// working sqlite-backed configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "game-predictor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/predictions.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "game_predictor")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("provider.name", "stats_api")
	v.SetDefault("provider.base_url", "http://localhost:8000/v1")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout", "30s")
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.retry_wait_min", "100ms")
	v.SetDefault("provider.retry_wait_max", "10s")
	v.SetDefault("provider.rate_limit", 10.0)
	v.SetDefault("provider.circuit_breaker_max", 5)
	v.SetDefault("provider.supplementary_cache_ttl", "6h")

	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.persist_batch_size", 25)
	v.SetDefault("engine.persist_retries", 3)
	v.SetDefault("engine.run_timeout", "5m")

	v.SetDefault("model.version", "net-rating-logistic-v1")
	v.SetDefault("model.net_rating_scale", 2.0)
	v.SetDefault("model.neutral_points_per_game", 110.0)
	v.SetDefault("model.default_pace", 100.0)
	v.SetDefault("model.default_rest_days", 1)
	v.SetDefault("model.home_court_advantage", 2.5)
	v.SetDefault("model.back_to_back_penalty", 1.5)
	v.SetDefault("model.logistic_scale", 0.15)
	v.SetDefault("model.probability_floor", 0.30)
	v.SetDefault("model.probability_ceiling", 0.70)
	v.SetDefault("model.remove_vig", false)
	v.SetDefault("model.thresholds.strong_lean_probability", 0.60)
	v.SetDefault("model.thresholds.strong_lean_edge", 0.05)
	v.SetDefault("model.thresholds.lean_probability", 0.55)
	v.SetDefault("model.thresholds.lean_edge", 0.03)
	v.SetDefault("model.thresholds.slight_lean_probability", 0.52)
	v.SetDefault("model.thresholds.no_edge_probability", 0.48)
	v.SetDefault("model.confidence.base", 50.0)
	v.SetDefault("model.confidence.data_quality_weight", 20.0)
	v.SetDefault("model.confidence.full_data_quality", 0.8)
	v.SetDefault("model.confidence.partial_data_quality", 0.6)
	v.SetDefault("model.confidence.injury_data_bonus", 10.0)
	v.SetDefault("model.confidence.sample_size_tiers", []map[string]interface{}{
		{"min_games": 30, "bonus": 15.0},
		{"min_games": 20, "bonus": 10.0},
		{"min_games": 10, "bonus": 5.0},
	})

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.cron", "0 9 * * *")
	v.SetDefault("scheduler.timezone", "America/New_York")
	v.SetDefault("scheduler.day_offset", 0)
	v.SetDefault("scheduler.health_port", 8080)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}
