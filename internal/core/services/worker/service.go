package worker

import (
	"context"

	"gitlab.com/mcpricing.net/internal/domain"
)

// IWorkerService is a consumer of the shared work queue
type IWorkerService interface {
	// Run consumes job requests until ctx is done (nil) or a protocol
	// violation occurs (errs.ErrProtocolViolation).
	Run(ctx context.Context) error

	// Stats reports the counters of the worker
	Stats() Stats
}

// IWorkerRegistrationService tracks liveness of worker processes
type IWorkerRegistrationService interface {
	// Heartbeat records the worker's current status
	Heartbeat(ctx context.Context, workerInfo *domain.WorkerInfo) error

	// GetAllWorkers gets all registered workers
	GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error)

	// CleanupInactiveWorkers removes workers that haven't sent a heartbeat recently
	CleanupInactiveWorkers(ctx context.Context) error
}

// Stats counts what a worker (or a pool of them) has done so far
type Stats struct {
	Processed   uint64
	Dropped     uint64
	CacheSize   int
	CacheClears uint64
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Processed:   s.Processed + o.Processed,
		Dropped:     s.Dropped + o.Dropped,
		CacheSize:   s.CacheSize + o.CacheSize,
		CacheClears: s.CacheClears + o.CacheClears,
	}
}
