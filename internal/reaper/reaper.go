package reaper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ErlanBelekov/campus-marketplace/internal/metrics"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

const batchSize = 100

// Reaper purges OTP records that expired more than retention ago. Verify
// never deletes, so without it the table only grows.
type Reaper struct {
	repo      repository.OtpRepository
	logger    *slog.Logger
	schedule  cron.Schedule
	retention time.Duration
	now       func() time.Time
}

// New parses expr with the standard cron parser, which also accepts
// descriptors such as "@every 1h" and "@daily". retention must be positive,
// otherwise the cutoff would reach codes that are still live.
func New(repo repository.OtpRepository, logger *slog.Logger, expr string, retention time.Duration) (*Reaper, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("reaper retention must be positive, got %s", retention)
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse reaper schedule %q: %w", expr, err)
	}
	return &Reaper{
		repo:      repo,
		logger:    logger.With("component", "reaper"),
		schedule:  sched,
		retention: retention,
		now:       time.Now,
	}, nil
}

func (r *Reaper) Start(ctx context.Context) {
	r.logger.Info("reaper started", "retention", r.retention)

	for {
		next := r.schedule.Next(r.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("reaper shut down")
			return
		case <-timer.C:
			r.Reap(ctx)
		}
	}
}

// Reap deletes expired records in batches until a batch comes back short.
// It returns the number of records removed.
func (r *Reaper) Reap(ctx context.Context) int {
	start := time.Now()
	defer func() { metrics.ReaperCycleDuration.Observe(time.Since(start).Seconds()) }()

	cutoff := r.now().Add(-r.retention)
	total := 0
	for {
		n, err := r.repo.DeleteExpiredBefore(ctx, cutoff, batchSize)
		if err != nil {
			r.logger.ErrorContext(ctx, "purge expired otps", "error", err)
			break
		}
		total += n
		if n < batchSize || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		metrics.ReaperPurgedTotal.Add(float64(total))
		r.logger.InfoContext(ctx, "purged expired otps", "count", total, "cutoff", cutoff)
	}
	return total
}
