package rotation

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Config struct {
	AccessCron  string `mapstructure:"access_cron"`  // intended: every minute
	RefreshCron string `mapstructure:"refresh_cron"` // intended: daily
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Runner owns the two cron jobs. Each job takes the store and codec through
// the usecase; nothing is reached through globals.
type Runner struct {
	Log *zap.Logger
	UC  *Usecase
	Cfg *Config

	mRotated *prometheus.CounterVec
	mSkipped *prometheus.CounterVec
	mErr     prometheus.Counter
	mTickDur prometheus.Histogram
}

func New(log *zap.Logger, uc *Usecase, cfg *Config) *Runner {
	return &Runner{
		Log: log,
		UC:  uc,
		Cfg: cfg,
		mRotated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rotation_tokens_rotated_total", Help: "Token records rotated",
		}, []string{"job"}),
		mSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rotation_records_skipped_total", Help: "Due records left untouched",
		}, []string{"job"}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rotation_errors_total", Help: "Errors in rotation ticks",
		}),
		mTickDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "rotation_tick_duration_seconds", Help: "Rotation tick duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) tick(ctx context.Context, job string, rotate func(context.Context) (int, int, error)) {
	start := time.Now()
	rotated, skipped, err := rotate(ctx)
	if err != nil {
		r.mErr.Inc()
		r.Log.Warn("rotation tick error", zap.String("job", job), zap.Error(err))
	}
	if rotated > 0 || skipped > 0 {
		r.mRotated.WithLabelValues(job).Add(float64(rotated))
		r.mSkipped.WithLabelValues(job).Add(float64(skipped))
		r.Log.Debug("rotation tick",
			zap.String("job", job), zap.Int("rotated", rotated), zap.Int("skipped", skipped))
	}
	r.mTickDur.Observe(time.Since(start).Seconds())
}

// Run schedules both jobs and blocks until ctx is canceled. A tick already in
// flight finishes before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	c := cron.New()

	if _, err := c.AddFunc(r.Cfg.AccessCron, func() {
		r.tick(ctx, "access", r.UC.RotateAccess)
	}); err != nil {
		return fmt.Errorf("schedule access job %q: %w", r.Cfg.AccessCron, err)
	}
	if _, err := c.AddFunc(r.Cfg.RefreshCron, func() {
		r.tick(ctx, "refresh", r.UC.RotateRefresh)
	}); err != nil {
		return fmt.Errorf("schedule refresh job %q: %w", r.Cfg.RefreshCron, err)
	}

	c.Start()
	r.Log.Info("rotation jobs scheduled",
		zap.String("access_cron", r.Cfg.AccessCron),
		zap.String("refresh_cron", r.Cfg.RefreshCron),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
