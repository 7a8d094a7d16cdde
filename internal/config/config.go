package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	FRED      FREDConfig      `yaml:"fred" mapstructure:"fred"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Eval      EvalConfig      `yaml:"eval" mapstructure:"eval"`
	Sampler   SamplerConfig   `yaml:"sampler" mapstructure:"sampler"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the warehouse backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// FREDConfig holds FRED API settings.
type FREDConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	IngestWorkers     int    `yaml:"ingest_workers" mapstructure:"ingest_workers"`
}

// AnthropicConfig holds Anthropic API settings for the Claude agent.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// EvalConfig configures run verification and pass criteria.
type EvalConfig struct {
	Workers          int     `yaml:"workers" mapstructure:"workers"`
	Tolerance        float64 `yaml:"tolerance" mapstructure:"tolerance"`
	RequireCitations bool    `yaml:"require_citations" mapstructure:"require_citations"`
	MinPassRate      float64 `yaml:"min_pass_rate" mapstructure:"min_pass_rate"`
	MaxCriticalFails int     `yaml:"max_critical_fails" mapstructure:"max_critical_fails"`
	ReportExampleCap int     `yaml:"report_example_cap" mapstructure:"report_example_cap"`
}

// SamplerConfig configures golden set generation.
type SamplerConfig struct {
	Seed      uint64 `yaml:"seed" mapstructure:"seed"`
	PerSeries int    `yaml:"per_series" mapstructure:"per_series"`
	Profile   string `yaml:"profile" mapstructure:"profile"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MACROEVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "warehouse.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("fred.requests_per_minute", 100)
	v.SetDefault("fred.ingest_workers", 4)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("eval.workers", 4)
	v.SetDefault("eval.tolerance", 1e-6)
	v.SetDefault("eval.require_citations", false)
	v.SetDefault("eval.min_pass_rate", 90.0)
	v.SetDefault("eval.max_critical_fails", 0)
	v.SetDefault("eval.report_example_cap", 5)
	v.SetDefault("sampler.seed", 42)
	v.SetDefault("sampler.per_series", 10)
	v.SetDefault("sampler.profile", "base")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields required for the given mode are set.
// Modes correspond to command entry points: "ingest" needs FRED
// credentials, "run" needs agent credentials, "golden" only needs the
// warehouse.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "ingest":
		if c.FRED.Key == "" {
			problems = append(problems, "fred.key is required")
		}
	case "run":
		if c.Eval.Workers < 1 || c.Eval.Workers > 64 {
			problems = append(problems, "eval.workers must be between 1 and 64")
		}
		if c.Eval.Tolerance <= 0 {
			problems = append(problems, "eval.tolerance must be > 0")
		}
	case "golden":
		if c.Sampler.PerSeries < 1 {
			problems = append(problems, "sampler.per_series must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
