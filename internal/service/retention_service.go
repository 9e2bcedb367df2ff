package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
)

// RetentionService permanently removes complaints withdrawn longer than the retention window.
type RetentionService struct {
	store     repository.Store
	retention time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       Clock
}

// RetentionDependencies bundles collaborators for the retention service.
type RetentionDependencies struct {
	Store     repository.Store
	Retention time.Duration
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Clock     Clock
}

// NewRetentionService constructs the service.
func NewRetentionService(deps RetentionDependencies) *RetentionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retention := deps.Retention
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &RetentionService{
		store:     deps.Store,
		retention: retention,
		metrics:   deps.Metrics,
		logger:    logger,
		now:       clockOrDefault(deps.Clock),
	}
}

// PurgeExpiredWithdrawals hard-deletes every complaint withdrawn before now minus
// the retention window. Votes and edit history go with it.
func (s *RetentionService) PurgeExpiredWithdrawals(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	purged, err := s.store.Repos().Complaints.DeleteWithdrawnBefore(ctx, cutoff)
	s.metrics.RecordSweep(purged, err)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("purged withdrawn complaints", zap.Int64("count", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}
