package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuropilot/internal/domain/entity"
)

func TestLoadDefaults(t *testing.T) {
	_ = os.Unsetenv("PILOT_RATE_LIMIT_MAX")
	_ = os.Unsetenv("PILOT_CLASSIFIER_MODEL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.ClassifierModel)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, 60, cfg.RateLimitWindow)
	assert.Equal(t, 500, cfg.SanitizerMaxLen)
	assert.Equal(t, 1000, cfg.MaxMessageLen)
	assert.Equal(t, 100, cfg.FreeQuota)
	assert.Equal(t, 2000, cfg.ProQuota)
	assert.Equal(t, 15.0, cfg.MinMarginPct)
	assert.Equal(t, 30, cfg.IntervalMinutes)
	assert.True(t, cfg.Headless)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PILOT_RATE_LIMIT_MAX", "25")
	t.Setenv("PILOT_CLASSIFIER_MODEL", "gemini-2.5-pro")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.RateLimitMax)
	assert.Equal(t, "gemini-2.5-pro", cfg.ClassifierModel)
}

func TestQuotaFor(t *testing.T) {
	cfg := &Config{FreeQuota: 100, ProQuota: 2000}
	assert.Equal(t, 100, cfg.QuotaFor(entity.PlanFree))
	assert.Equal(t, 2000, cfg.QuotaFor(entity.PlanPro))
	assert.Equal(t, 100, cfg.QuotaFor(entity.Plan("unknown")))
}

func TestCostForKnownModel(t *testing.T) {
	cost := CostFor("gemini-2.5-flash", 1000)
	assert.InDelta(t, 0.0003, cost, 1e-9)
}

func TestCostForUnknownModelBillsHigh(t *testing.T) {
	// Unknown models are priced at the most expensive known rate.
	unknown := CostFor("some-future-model", 1000)
	pro := CostFor("gemini-2.5-pro", 1000)
	assert.Equal(t, pro, unknown)
}

func TestCostForZeroTokens(t *testing.T) {
	assert.Zero(t, CostFor("gemini-2.5-flash", 0))
}
