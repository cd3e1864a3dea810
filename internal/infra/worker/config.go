// Package worker holds the scheduled-ingestion side of the worker binary:
// its configuration, the cron job wrapper, metrics and the health server.
package worker

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "newsdigest/internal/pkg/config"
)

// Config controls scheduling and the worker's HTTP listeners.
type Config struct {
	// CronSchedule is a standard 5-field cron expression.
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string

	// CrawlTimeout bounds one whole ingestion run.
	CrawlTimeout time.Duration

	// RunOnStart triggers one run immediately after start-up.
	RunOnStart bool

	HealthPort  int
	MetricsPort int
}

// DefaultConfig returns hourly ingestion in UTC with a 30 minute run budget.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "0 * * * *",
		Timezone:     "UTC",
		CrawlTimeout: 30 * time.Minute,
		RunOnStart:   true,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if err := pkgconfig.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.CrawlTimeout); err != nil {
		errs = append(errs, fmt.Errorf("crawl timeout: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ (%d)", c.HealthPort))
	}

	return errors.Join(errs...)
}

// LoadConfigFromEnv reads CRON_SCHEDULE, WORKER_TIMEZONE, CRAWL_TIMEOUT,
// RUN_ON_START, WORKER_HEALTH_PORT and METRICS_PORT. Invalid values fall back
// to the defaults and are reported through r.
func LoadConfigFromEnv(r *pkgconfig.Reporter) Config {
	cfg := DefaultConfig()

	cfg.CronSchedule = pkgconfig.Report(r, "cron_schedule",
		pkgconfig.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, pkgconfig.ValidateCronSchedule))
	cfg.Timezone = pkgconfig.Report(r, "timezone",
		pkgconfig.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, pkgconfig.ValidateTimezone))
	cfg.CrawlTimeout = pkgconfig.Report(r, "crawl_timeout",
		pkgconfig.LoadEnvDuration("CRAWL_TIMEOUT", cfg.CrawlTimeout, func(d time.Duration) error {
			return pkgconfig.ValidateDuration(d, time.Minute, 4*time.Hour)
		}))
	cfg.RunOnStart = pkgconfig.Report(r, "run_on_start",
		pkgconfig.LoadEnvBool("RUN_ON_START", cfg.RunOnStart))
	cfg.HealthPort = pkgconfig.Report(r, "health_port",
		pkgconfig.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1024, 65535)
		}))
	cfg.MetricsPort = pkgconfig.Report(r, "metrics_port",
		pkgconfig.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1024, 65535)
		}))

	return cfg
}
