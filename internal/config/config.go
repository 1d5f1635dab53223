package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"dxsim/internal/errors"
)

const (
	defaultMaxPopulation       = 1_000_000
	defaultMaxSweepRows  int64 = 20_000_000
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Simulation SimulationConfig
	Export     ExportConfig
	Metrics    MetricsConfig
	LogLevel   string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// SimulationConfig holds defaults applied when a request leaves them out
type SimulationConfig struct {
	// Seed 0 means derive one from the clock per run
	Seed        uint64
	Replicates  int
	Parallelism int
	// Request bounds enforced by the services
	MaxPopulation int
	MaxSweepRows  int64
}

// ExportConfig holds file export settings
type ExportConfig struct {
	Dir string
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	simConfig, err := loadSimulationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load simulation configuration")
	}

	config := &Config{
		Server:     *loadServerConfig(),
		Simulation: *simConfig,
		Export:     ExportConfig{Dir: getEnvOrDefault("EXPORT_DIR", ".")},
		Metrics:    MetricsConfig{Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true)},
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Port: "8080"},
		Simulation: SimulationConfig{
			Replicates:    200,
			Parallelism:   runtime.NumCPU(),
			MaxPopulation: defaultMaxPopulation,
			MaxSweepRows:  defaultMaxSweepRows,
		},
		Export:     ExportConfig{Dir: "."},
		Metrics:    MetricsConfig{Enabled: true},
		LogLevel:   "INFO",
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadSimulationConfig() (*SimulationConfig, error) {
	cfg := &SimulationConfig{
		Replicates:    getEnvIntOrDefault("SIM_REPLICATES", 200),
		Parallelism:   getEnvIntOrDefault("SIM_PARALLELISM", runtime.NumCPU()),
		MaxPopulation: getEnvIntOrDefault("SIM_MAX_POPULATION", defaultMaxPopulation),
		MaxSweepRows:  getEnvInt64OrDefault("SIM_MAX_SWEEP_ROWS", defaultMaxSweepRows),
	}
	if value := os.Getenv("SIM_SEED"); value != "" {
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("SIM_SEED must be an unsigned integer, got %q", value))
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Simulation.Replicates < 1 {
		return errors.ConfigInvalid("SIM_REPLICATES must be at least 1")
	}
	if config.Simulation.Parallelism < 1 {
		return errors.ConfigInvalid("SIM_PARALLELISM must be at least 1")
	}
	if config.Simulation.MaxPopulation < 1 {
		return errors.ConfigInvalid("SIM_MAX_POPULATION must be at least 1")
	}
	if config.Simulation.MaxSweepRows < 1 {
		return errors.ConfigInvalid("SIM_MAX_SWEEP_ROWS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
