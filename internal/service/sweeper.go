package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes abandoned sessions: entries older than the
// retention age that never recorded an exit.
type Sweeper struct {
	sessions  SessionStore
	logger    *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewSweeper(sessions SessionStore, interval, retention time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		sessions:  sessions,
		logger:    logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	sw.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sw.sweep(ctx)
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	cutoff := sw.now().Add(-sw.retention)
	deleted, err := sw.sessions.DeleteAbandonedBefore(ctx, cutoff)
	if err != nil {
		sw.logger.Error("retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		sw.logger.Info("retention sweep removed abandoned sessions",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
}
