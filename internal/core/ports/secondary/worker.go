package secondary

import (
	"context"
	"time"

	"gitlab.com/mcpricing.net/internal/domain"
)

type WorkerRepository interface {
	// SaveWorker saves worker information
	SaveWorker(ctx context.Context, worker *domain.WorkerInfo) error

	// GetWorker retrieves worker information by ID
	GetWorker(ctx context.Context, workerID string) (*domain.WorkerInfo, error)

	// GetAllWorkers retrieves every registered worker
	GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error)

	// RemoveInactiveWorkers removes workers that haven't sent a heartbeat recently
	RemoveInactiveWorkers(ctx context.Context, cutoffTime time.Time) error
}
