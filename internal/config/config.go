package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurningYang107/sensor-data-viewer/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig `validate:"required"`
	Data      DataConfig   `validate:"required"`
	Session   SessionConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// DataConfig holds upload and preload settings
type DataConfig struct {
	// MaxUploadBytes caps accepted upload sizes.
	MaxUploadBytes int64
	// PreloadFile, when set, is loaded into a session at startup. Handy for
	// development against a fixed export.
	PreloadFile string
}

// SessionConfig holds in-memory session store settings
type SessionConfig struct {
	// TTL is how long an idle session keeps its dataset in memory.
	TTL time.Duration
	// MaxConcurrentLoads bounds how many uploads may parse at once.
	MaxConcurrentLoads int64
}

// ProfilingConfig holds the ops server settings (health + pprof)
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	config.Server = *loadServerConfig()
	config.Data = *loadDataConfig()
	config.Session = *loadSessionConfig()
	config.Profiling = *loadProfilingConfig()

	// Validate required fields
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	maxMB := getEnvIntOrDefault("MAX_UPLOAD_MB", 50)
	return &DataConfig{
		MaxUploadBytes: int64(maxMB) * 1024 * 1024,
		PreloadFile:    getEnvOrDefault("DATA_FILE", ""),
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		TTL:                getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
		MaxConcurrentLoads: int64(getEnvIntOrDefault("MAX_CONCURRENT_LOADS", 4)),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Data.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Session.MaxConcurrentLoads <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_LOADS must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
