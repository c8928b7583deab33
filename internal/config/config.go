// Package config loads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"mtp-placer/internal/placement"
)

// Config holds the service settings.
type Config struct {
	Port         string
	Environment  string
	DBPath       string // empty disables the layout store
	LibraryPath  string // empty uses the built-in symbols only
	ReadTimeout  int    // seconds
	WriteTimeout int    // seconds
	Workers      int    // layout goroutines, 0 = one per CPU
	BodyLimit    int    // bytes

	Search placement.SearchParams
}

// Load reads the configuration from MTP_* environment variables.
func Load() *Config {
	search := placement.DefaultSearchParams()
	return &Config{
		Port:         getEnv("MTP_PORT", "3000"),
		Environment:  getEnv("MTP_ENV", "development"),
		DBPath:       getEnv("MTP_DB", ""),
		LibraryPath:  getEnv("MTP_LIBRARY", ""),
		ReadTimeout:  getEnvAsInt("MTP_READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("MTP_WRITE_TIMEOUT", 30),
		Workers:      getEnvAsInt("MTP_WORKERS", 0),
		BodyLimit:    getEnvAsInt("MTP_BODY_LIMIT", 8<<20),
		Search: placement.SearchParams{
			RangeScale: getEnvAsFloat("MTP_FIT_RANGE_SCALE", search.RangeScale),
			RangeRot:   getEnvAsFloat("MTP_FIT_RANGE_ROT", search.RangeRot),
			RangeXY:    getEnvAsFloat("MTP_FIT_RANGE_XY", search.RangeXY),
			Steps:      getEnvAsInt("MTP_FIT_STEPS", search.Steps),
			Iterations: getEnvAsInt("MTP_FIT_ITERATIONS", search.Iterations),
		},
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Timeouts returns the read and write timeouts as durations.
func (c *Config) Timeouts() (time.Duration, time.Duration) {
	return time.Duration(c.ReadTimeout) * time.Second, time.Duration(c.WriteTimeout) * time.Second
}

// PlacementOptions returns placer options with the configured search.
func (c *Config) PlacementOptions() placement.Options {
	opts := placement.DefaultOptions()
	opts.Search = c.Search
	return opts
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
