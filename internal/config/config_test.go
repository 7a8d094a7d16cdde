package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warehouse.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://api.stlouisfed.org/fred", cfg.FRED.BaseURL)
	assert.Equal(t, 100, cfg.FRED.RequestsPerMinute)
	assert.Equal(t, 4, cfg.FRED.IngestWorkers)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 4, cfg.Eval.Workers)
	assert.InDelta(t, 1e-6, cfg.Eval.Tolerance, 1e-12)
	assert.False(t, cfg.Eval.RequireCitations)
	assert.InDelta(t, 90.0, cfg.Eval.MinPassRate, 0.001)
	assert.Equal(t, 0, cfg.Eval.MaxCriticalFails)
	assert.Equal(t, 5, cfg.Eval.ReportExampleCap)
	assert.Equal(t, uint64(42), cfg.Sampler.Seed)
	assert.Equal(t, 10, cfg.Sampler.PerSeries)
	assert.Equal(t, "base", cfg.Sampler.Profile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/macro
log:
  level: debug
  format: console
sampler:
  seed: 7
  per_series: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/macro", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, uint64(7), cfg.Sampler.Seed)
	assert.Equal(t, 25, cfg.Sampler.PerSeries)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Eval.Workers)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("MACROEVAL_STORE_DRIVER", "postgres")
	t.Setenv("MACROEVAL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("MACROEVAL_EVAL_WORKERS", "12")
	t.Setenv("MACROEVAL_FRED_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Eval.Workers)
	assert.Equal(t, "env-key", cfg.FRED.Key)
}

func validDefaults() *Config {
	return &Config{
		Store:   StoreConfig{Driver: "sqlite", SQLitePath: "warehouse.db"},
		Eval:    EvalConfig{Workers: 4, Tolerance: 1e-6},
		Sampler: SamplerConfig{Seed: 42, PerSeries: 10, Profile: "base"},
	}
}

func TestValidateIngest(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fred.key is required")

	cfg.FRED.Key = "abc"
	assert.NoError(t, cfg.Validate("ingest"))
}

func TestValidateRun(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("run"))

	cfg.Eval.Workers = 0
	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eval.workers must be between 1 and 64")

	cfg.Eval.Workers = 4
	cfg.Eval.Tolerance = 0
	err = cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eval.tolerance must be > 0")
}

func TestValidateGolden(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("golden"))

	cfg.Sampler.PerSeries = 0
	err := cfg.Validate("golden")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per_series")
}

func TestValidateStoreDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.Driver = "mysql"
	err = cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
