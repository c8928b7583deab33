package config

import (
	"testing"
	"time"

	"mtp-placer/internal/placement"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, placement.DefaultSearchParams(), cfg.Search)

	read, write := cfg.Timeouts()
	assert.Equal(t, 10*time.Second, read)
	assert.Equal(t, 30*time.Second, write)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MTP_PORT", "8081")
	t.Setenv("MTP_ENV", "production")
	t.Setenv("MTP_WORKERS", "4")
	t.Setenv("MTP_FIT_STEPS", "6")
	t.Setenv("MTP_FIT_RANGE_ROT", "12.5")
	t.Setenv("MTP_FIT_ITERATIONS", "not a number")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 6, cfg.PlacementOptions().Search.Steps)
	assert.Equal(t, 12.5, cfg.Search.RangeRot)
	assert.Equal(t, placement.DefaultSearchParams().Iterations, cfg.Search.Iterations)
}
