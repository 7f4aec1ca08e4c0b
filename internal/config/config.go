// Package config loads service configuration from the environment, an
// optional .env file and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"supplyscope/internal/domain/procurement"
)

// Config is the complete service configuration.
type Config struct {
	App      AppConfig                 `mapstructure:"app"`
	Database DatabaseConfig            `mapstructure:"database"`
	Log      LogConfig                 `mapstructure:"log"`
	Scoring  procurement.ScoringConfig `mapstructure:"scoring"`
	Report   procurement.ReportConfig  `mapstructure:"report"`
	Worker   WorkerConfig              `mapstructure:"worker"`
}

type AppConfig struct {
	Env             string        `mapstructure:"env"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// IsDevelopment reports whether the service runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type WorkerConfig struct {
	// Interval between report refreshes
	Interval time.Duration `mapstructure:"interval"`
	// RunOnStart refreshes once before the first tick
	RunOnStart bool `mapstructure:"run_on_start"`
	// MetricsAddr serves /metrics when set, e.g. ":9091"
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Procurement returns the scoring and ranking parameters.
func (c *Config) Procurement() procurement.Config {
	return procurement.Config{Scoring: c.Scoring, Report: c.Report}
}

// Load reads configuration. Precedence: environment, then .env, then
// config.yaml in the working directory or ./configs, then defaults.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvVariables(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.read_timeout", 15*time.Second)
	v.SetDefault("app.write_timeout", 30*time.Second)
	v.SetDefault("app.idle_timeout", 60*time.Second)
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("log.level", "info")

	scoring := procurement.DefaultScoringConfig()
	v.SetDefault("scoring.on_time_weight", scoring.OnTimeWeight)
	v.SetDefault("scoring.frequency_weight", scoring.FrequencyWeight)
	v.SetDefault("scoring.value_weight", scoring.ValueWeight)
	v.SetDefault("scoring.consistency_weight", scoring.ConsistencyWeight)
	v.SetDefault("scoring.grace_period_days", scoring.GracePeriodDays)
	v.SetDefault("scoring.grace_credit", scoring.GraceCredit)
	v.SetDefault("scoring.orders_per_month_benchmark", scoring.OrdersPerMonthBenchmark)
	v.SetDefault("scoring.days_per_month", scoring.DaysPerMonth)
	v.SetDefault("scoring.order_value_benchmark", scoring.OrderValueBenchmark)
	v.SetDefault("scoring.min_consistency_dates", scoring.MinConsistencyDates)
	v.SetDefault("scoring.neutral_consistency", scoring.NeutralConsistency)

	report := procurement.DefaultReportConfig()
	v.SetDefault("report.min_completed_orders", report.MinCompletedOrders)
	v.SetDefault("report.limit", report.Limit)
	v.SetDefault("report.rating_weight", report.RatingWeight)
	v.SetDefault("report.value_weight", report.ValueWeight)
	v.SetDefault("report.value_divisor", report.ValueDivisor)
	v.SetDefault("report.value_cap", report.ValueCap)

	v.SetDefault("worker.interval", 5*time.Minute)
	v.SetDefault("worker.run_on_start", true)
	v.SetDefault("worker.metrics_addr", "")
}

// bindEnvVariables maps the conventional short names onto config keys.
// Nested keys are also reachable as APP_PORT, SCORING_GRACE_PERIOD_DAYS, ...
func bindEnvVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.env":         {"APP_ENV"},
		"app.port":        {"APP_PORT", "PORT"},
		"database.url":    {"DATABASE_URL"},
		"log.level":       {"LOG_LEVEL"},
		"worker.interval": {"WORKER_INTERVAL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks required values and parameter sanity.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url (DATABASE_URL) is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port out of range: %d", c.App.Port)
	}
	if c.Worker.Interval <= 0 {
		return fmt.Errorf("worker.interval must be positive")
	}
	if c.Scoring.OrdersPerMonthBenchmark <= 0 || c.Scoring.OrderValueBenchmark <= 0 || c.Scoring.DaysPerMonth <= 0 {
		return fmt.Errorf("scoring benchmarks must be positive")
	}
	if c.Report.ValueDivisor <= 0 {
		return fmt.Errorf("report.value_divisor must be positive")
	}
	return nil
}
