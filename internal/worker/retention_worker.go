package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger deletes expired withdrawn complaints.
type Purger interface {
	PurgeExpiredWithdrawals(ctx context.Context) (int64, error)
}

// RetentionWorker runs the purge once after an initial delay and then on a fixed interval.
type RetentionWorker struct {
	purger       Purger
	initialDelay time.Duration
	interval     time.Duration
	logger       *zap.Logger
}

// NewRetentionWorker builds the worker.
func NewRetentionWorker(purger Purger, initialDelay, interval time.Duration, logger *zap.Logger) *RetentionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &RetentionWorker{
		purger:       purger,
		initialDelay: initialDelay,
		interval:     interval,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled. Purge failures are logged and retried on the next tick.
func (w *RetentionWorker) Run(ctx context.Context) error {
	w.logger.Info("retention worker started",
		zap.Duration("initial_delay", w.initialDelay),
		zap.Duration("interval", w.interval))

	timer := time.NewTimer(w.initialDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("retention worker stopped")
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	purged, err := w.purger.PurgeExpiredWithdrawals(ctx)
	if err != nil {
		w.logger.Error("retention sweep failed", zap.Error(err))
		return
	}
	w.logger.Debug("retention sweep finished", zap.Int64("purged", purged))
}
