package relation

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReconcilerService runs the reconciler on a fixed interval under a suture
// supervisor. A failed pass is logged and retried on the next tick.
type ReconcilerService struct {
	reconciler Reconciler
	interval   time.Duration
	logger     *zap.Logger
}

func NewReconcilerService(reconciler Reconciler, interval time.Duration, logger *zap.Logger) *ReconcilerService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcilerService{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
	}
}

// Serve implements suture.Service.
func (s *ReconcilerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.reconciler.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("scheduled reconciliation failed", zap.Error(err))
			}
		}
	}
}

func (s *ReconcilerService) String() string {
	return "relation-reconciler"
}
