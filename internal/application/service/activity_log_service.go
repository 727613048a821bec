package service

import (
	"context"
	"sync"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ActivityLogService writes the audit trail in the background. Recording
// never blocks the caller and never fails it.
type ActivityLogService struct {
	logRepo repository.ActivityLogRepository
	pool    *ants.Pool
	wg      sync.WaitGroup
}

// NewActivityLogService creates a new activity log service
func NewActivityLogService(logRepo repository.ActivityLogRepository, pool *ants.Pool) *ActivityLogService {
	return &ActivityLogService{
		logRepo: logRepo,
		pool:    pool,
	}
}

// Record queues action for the actor carried by ctx.
func (s *ActivityLogService) Record(ctx context.Context, action string) {
	if action == "" {
		return
	}
	bg := context.WithoutCancel(ctx)

	s.wg.Add(1)
	err := s.pool.Submit(func() {
		defer s.wg.Done()
		s.logRepo.Add(bg, action)
	})
	if err != nil {
		s.wg.Done()
		zap.S().Warnw("activity log dropped", "action", action, "error", err)
	}
}

// List returns the audit trail.
func (s *ActivityLogService) List(ctx context.Context) []entity.ActivityLog {
	return s.logRepo.List(ctx)
}

// Wait blocks until every queued entry has been attempted.
func (s *ActivityLogService) Wait() {
	s.wg.Wait()
}
