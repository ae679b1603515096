package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/JiarongF/StatsLearning/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Study    StudyConfig
	Export   ExportConfig
}

// DatabaseConfig holds database connection settings. URL may be empty, in
// which case the app runs with in-memory stores only.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StudyConfig holds stimulus defaults for the study session
type StudyConfig struct {
	DefaultSeed       int64
	DefaultSampleSize int
	// PrewarmSeeds are base vectors computed at startup so the first
	// slider interaction of each stimulus has no cold-cache hitch.
	PrewarmSeeds []int64
	CacheSize    int
}

// ExportConfig holds answer export settings
type ExportConfig struct {
	OutputPath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Study: StudyConfig{
			DefaultSeed:       getEnvInt64OrDefault("STUDY_DEFAULT_SEED", 42),
			DefaultSampleSize: getEnvIntOrDefault("STUDY_SAMPLE_SIZE", 30),
			PrewarmSeeds:      getEnvSeedsOrDefault("STUDY_PREWARM_SEEDS", []int64{42}),
			CacheSize:         getEnvIntOrDefault("STUDY_CACHE_SIZE", 256),
		},
		Export: ExportConfig{
			OutputPath: getEnvOrDefault("EXPORT_PATH", "answers.xlsx"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Study.DefaultSampleSize < 2 {
		return errors.ConfigInvalid("sample size must be at least 2")
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

// getEnvSeedsOrDefault parses a comma-separated seed list.
func getEnvSeedsOrDefault(key string, defaultValue []int64) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var seeds []int64
	for _, part := range strings.Split(value, ",") {
		seed, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return defaultValue
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		return defaultValue
	}
	return seeds
}
