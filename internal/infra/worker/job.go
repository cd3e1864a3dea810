package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/usecase/ingest"
)

// Runner performs one ingestion run.
type Runner interface {
	Run(ctx context.Context) (*ingest.RunStats, error)
}

// Job wraps a Runner with the crawl timeout, job metrics and logging.
type Job struct {
	runner  Runner
	timeout time.Duration
	metrics *WorkerMetrics
	logger  *slog.Logger
}

// NewJob creates a Job. metrics may be nil.
func NewJob(runner Runner, timeout time.Duration, metrics *WorkerMetrics, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{runner: runner, timeout: timeout, metrics: metrics, logger: logger}
}

// Run executes one crawl bounded by the configured timeout. A run cut short
// by the timeout still reports the articles it stored before stopping.
func (j *Job) Run(ctx context.Context) (*ingest.RunStats, error) {
	start := time.Now()
	j.record(func(m *WorkerMetrics) { m.RecordJobRun("started") })
	j.logger.Info("crawl started")

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	stats, err := j.runner.Run(ctx)
	if stats == nil {
		stats = &ingest.RunStats{}
	}
	elapsed := time.Since(start)
	j.record(func(m *WorkerMetrics) {
		m.RecordJobDuration(elapsed.Seconds())
		m.RecordArticlesInserted(stats.Inserted)
	})

	if err != nil {
		j.record(func(m *WorkerMetrics) { m.RecordJobRun("failure") })
		attrs := []any{slog.Any("error", respond.SanitizeError(err)), slog.Duration("duration", elapsed)}
		if errors.Is(err, context.DeadlineExceeded) {
			attrs = append(attrs, slog.Duration("timeout", j.timeout))
		}
		attrs = append(attrs, slog.Int("inserted", stats.Inserted))
		j.logger.Error("crawl failed", attrs...)
		return stats, err
	}

	j.record(func(m *WorkerMetrics) {
		m.RecordJobRun("success")
		m.RecordLastSuccess()
	})
	j.logger.Info("crawl completed",
		slog.Int("sources", stats.Sources),
		slog.Int("entries", stats.Entries),
		slog.Int("inserted", stats.Inserted),
		slog.Int("duplicated", stats.Duplicated),
		slog.Duration("duration", elapsed),
	)
	return stats, nil
}

func (j *Job) record(fn func(m *WorkerMetrics)) {
	if j.metrics != nil {
		fn(j.metrics)
	}
}

// Scheduler triggers a Job on a cron schedule. A tick that arrives while the
// previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	job     *Job
	metrics *WorkerMetrics
	logger  *slog.Logger

	ctx context.Context
}

// NewScheduler creates a Scheduler for cfg.CronSchedule in cfg.Timezone.
func NewScheduler(cfg Config, job *Job, metrics *WorkerMetrics, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	s := &Scheduler{job: job, metrics: metrics, logger: logger, ctx: context.Background()}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s})),
	)
	if _, err := s.cron.AddFunc(cfg.CronSchedule, s.tick); err != nil {
		return nil, fmt.Errorf("add cron job %q: %w", cfg.CronSchedule, err)
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is cancelled. It then waits
// for a running job to finish; the job itself sees the cancellation through ctx.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Time("next_run", s.Next()))

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler stopped")
}

// Next returns the time of the next scheduled run, or the zero time before Run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) tick() {
	_, _ = s.job.Run(s.ctx)
}

// cronLogger adapts slog to cron.Logger so skipped ticks are logged and counted.
type cronLogger struct {
	s *Scheduler
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		l.s.logger.Warn("crawl skipped, previous run still in progress")
		if l.s.metrics != nil {
			l.s.metrics.RecordJobRun("skipped")
		}
		return
	}
	l.s.logger.Debug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.logger.Error("cron "+msg, append(keysAndValues, slog.Any("error", err))...)
}
