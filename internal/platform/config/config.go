package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "ONBOARDING_"
	envFileVar = "ONBOARDING_CONFIG"
)

type Config struct {
	Addr               string `koanf:"addr"`
	DatabaseURL        string `koanf:"database_url"`
	Environment        string `koanf:"env"`
	LogLevel           string `koanf:"log_level"`
	MaxBodyBytes       int64  `koanf:"max_body_bytes"`
	RateLimitPerMinute int    `koanf:"rate_limit_per_minute"`
	MetricsEnabled     bool   `koanf:"metrics_enabled"`
	RunMigrations      bool   `koanf:"run_migrations"`
	RunSeed            bool   `koanf:"run_seed"`
	MigrationsDir      string `koanf:"migrations_dir"`

	// Zero disables the background progress sweep.
	ProgressSweepInterval time.Duration `koanf:"progress_sweep_interval"`

	// Progress rules. Zero values fall back to the built-in defaults.
	ProbationDays         int     `koanf:"probation_days"`
	BehindDaysThreshold   int     `koanf:"behind_days_threshold"`
	BehindCompletionRatio float64 `koanf:"behind_completion_ratio"`
}

func Default() Config {
	return Config{
		Addr:                  ":8080",
		Environment:           "development",
		LogLevel:              "info",
		MaxBodyBytes:          1048576,
		RateLimitPerMinute:    120,
		MetricsEnabled:        true,
		RunMigrations:         true,
		RunSeed:               true,
		MigrationsDir:         "migrations",
		ProgressSweepInterval: 5 * time.Minute,
		ProbationDays:         90,
		BehindDaysThreshold:   30,
		BehindCompletionRatio: 0.7,
	}
}

// Load layers defaults, an optional YAML file named by ONBOARDING_CONFIG,
// and ONBOARDING_* environment variables, in that order.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Empty variables are skipped so they do not clobber defaults.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		if key == envFileVar || strings.TrimSpace(value) == "" {
			return "", nil
		}
		return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env config: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) UsePostgres() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ONBOARDING_ADDR must not be empty")
	}
	if c.IsProduction() && !c.UsePostgres() {
		return fmt.Errorf("ONBOARDING_DATABASE_URL is required in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("ONBOARDING_MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("ONBOARDING_RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ProgressSweepInterval < 0 {
		return fmt.Errorf("ONBOARDING_PROGRESS_SWEEP_INTERVAL must not be negative")
	}
	if c.ProbationDays < 0 {
		return fmt.Errorf("ONBOARDING_PROBATION_DAYS must not be negative")
	}
	if c.BehindDaysThreshold < 0 {
		return fmt.Errorf("ONBOARDING_BEHIND_DAYS_THRESHOLD must not be negative")
	}
	if c.BehindCompletionRatio < 0 || c.BehindCompletionRatio > 1 {
		return fmt.Errorf("ONBOARDING_BEHIND_COMPLETION_RATIO must be between 0 and 1")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("ONBOARDING_LOG_LEVEL must be one of debug, info, warn, error")
	}
	return nil
}
