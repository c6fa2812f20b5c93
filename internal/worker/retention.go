// Package worker runs background maintenance jobs next to the HTTP server.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type clickPurger interface {
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}

// Retention periodically deletes click events older than a fixed age.
type Retention struct {
	purger   clickPurger
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewRetention(purger clickPurger, maxAge, interval time.Duration, logger *slog.Logger) *Retention {
	return &Retention{
		purger:   purger,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run purges once immediately and then on every tick until ctx is done.
// A failed purge is logged and retried on the next tick.
func (w *Retention) Run(ctx context.Context) error {
	const op = "worker.Retention.Run"

	if w.maxAge <= 0 || w.interval <= 0 {
		return fmt.Errorf("%s: max age and interval must be positive", op)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.purge(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
		}
	}
}

func (w *Retention) purge(ctx context.Context) {
	const op = "worker.Retention.purge"

	cutoff := w.now().Add(-w.maxAge)

	n, err := w.purger.PurgeBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		w.logger.ErrorContext(ctx, "failed to purge click events",
			slog.Group(op, slog.Time("cutoff", cutoff), slog.Any("err", err)),
		)
		return
	}

	w.logger.InfoContext(ctx, "purged click events",
		slog.Group(op, slog.Time("cutoff", cutoff), slog.Int64("deleted", n)),
	)
}
