package schedulerengine

import (
	"context"
	"os"
	"sync"
	"time"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/services/worker"
	"gitlab.com/mcpricing.net/internal/domain"
)

// WorkerSource is what the heartbeat reports on
type WorkerSource interface {
	ID() string
	Size() int
	Stats() worker.Stats
}

type SchedulerEngine struct {
	registry worker.IWorkerRegistrationService
	logger   primary.Logger
	hostname string
	wg       sync.WaitGroup
}

func NewSchedulerEngine(registry worker.IWorkerRegistrationService, logger primary.Logger) *SchedulerEngine {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &SchedulerEngine{
		registry: registry,
		logger:   logger,
		hostname: hostname,
	}
}

// StartHeartbeatEngine reports the pool to the registry right away and then
// every interval until ctx is done
func (s *SchedulerEngine) StartHeartbeatEngine(ctx context.Context, source WorkerSource, interval time.Duration) {
	s.SendHeartbeat(ctx, source)
	s.every(ctx, interval, func(ctx context.Context) {
		s.SendHeartbeat(ctx, source)
	})
}

// StartCleanupEngine drops expired workers from the registry every interval
func (s *SchedulerEngine) StartCleanupEngine(ctx context.Context, interval time.Duration) {
	s.every(ctx, interval, s.CleanupWorkers)
}

// Wait blocks until every started engine has returned
func (s *SchedulerEngine) Wait() {
	s.wg.Wait()
}

func (s *SchedulerEngine) every(ctx context.Context, interval time.Duration, task func(ctx context.Context)) {
	if interval <= 0 {
		s.logger.Error("Background task not started, interval must be positive", "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task(ctx)
			}
		}
	}()
}

func (s *SchedulerEngine) SendHeartbeat(ctx context.Context, source WorkerSource) {
	stats := source.Stats()
	info := &domain.WorkerInfo{
		ID:          source.ID(),
		Hostname:    s.hostname,
		PoolSize:    source.Size(),
		Processed:   stats.Processed,
		Dropped:     stats.Dropped,
		CacheSize:   stats.CacheSize,
		CacheClears: stats.CacheClears,
	}

	if err := s.registry.Heartbeat(ctx, info); err != nil {
		s.logger.Error("Failed to send heartbeat", "workerId", info.ID, "error", err)
	}
}

func (s *SchedulerEngine) CleanupWorkers(ctx context.Context) {
	if err := s.registry.CleanupInactiveWorkers(ctx); err != nil {
		s.logger.Error("Failed to clean up workers", "error", err)
	}
}
