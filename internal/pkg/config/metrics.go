package config

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics exposes configuration health for one component:
//   - {component}_config_load_timestamp
//   - {component}_config_validation_errors_total{field}
//   - {component}_config_fallbacks_total{field}
//   - {component}_config_fallback_active
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge
}

// NewConfigMetrics registers the metrics for componentName with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewConfigMetrics(componentName string, reg prometheus.Registerer) *ConfigMetrics {
	factory := promauto.With(reg)
	return &ConfigMetrics{
		LoadTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", componentName),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", componentName),
		}),
		ValidationErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", componentName),
			Help: fmt.Sprintf("Total number of %s configuration validation errors", componentName),
		}, []string{"field"}),
		FallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", componentName),
			Help: fmt.Sprintf("Total number of %s configuration fallback operations", componentName),
		}, []string{"field"}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", componentName),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", componentName),
		}),
	}
}

// Reporter collects the fallbacks of one configuration load so they are logged
// and counted the same way in every component.
//
//	r := config.NewReporter(logger, metrics)
//	cfg.CronSchedule = config.Report(r, "cron_schedule",
//	    config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
//	r.Finish()
type Reporter struct {
	logger   *slog.Logger
	metrics  *ConfigMetrics
	fallback bool
}

// NewReporter returns a Reporter. metrics may be nil.
func NewReporter(logger *slog.Logger, metrics *ConfigMetrics) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger, metrics: metrics}
}

// Report logs and counts a fallback, if any, and returns the loaded value.
func Report[T any](r *Reporter, field string, result LoadResult[T]) T {
	if !result.FallbackApplied {
		return result.Value
	}
	r.fallback = true
	if r.metrics != nil {
		r.metrics.ValidationErrorsTotal.WithLabelValues(field).Inc()
		r.metrics.FallbacksTotal.WithLabelValues(field).Inc()
	}
	for _, warning := range result.Warnings {
		r.logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
	return result.Value
}

// Finish records the load timestamp and whether any fallback is active.
// It reports whether a fallback was applied.
func (r *Reporter) Finish() bool {
	if r.metrics != nil {
		r.metrics.LoadTimestamp.SetToCurrentTime()
		if r.fallback {
			r.metrics.FallbackActive.Set(1)
		} else {
			r.metrics.FallbackActive.Set(0)
		}
	}
	return r.fallback
}
