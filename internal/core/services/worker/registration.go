package worker

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
)

const (
	activeThreshold   = 2 * time.Minute
	inactiveThreshold = 5 * time.Minute
)

var _ IWorkerRegistrationService = &WorkerRegistrationService{}

// WorkerRegistrationService implements the IWorkerRegistrationService interface
type WorkerRegistrationService struct {
	workerRepo secondary.WorkerRepository
	logger     primary.Logger
	now        func() time.Time
}

// NewWorkerRegistrationService creates a new worker registration service
func NewWorkerRegistrationService(workerRepo secondary.WorkerRepository, logger primary.Logger) *WorkerRegistrationService {
	return &WorkerRegistrationService{
		workerRepo: workerRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// Heartbeat stamps and saves the worker's status
func (s *WorkerRegistrationService) Heartbeat(ctx context.Context, workerInfo *domain.WorkerInfo) error {
	s.logger.Debug("Worker heartbeat", "workerId", workerInfo.ID, "processed", workerInfo.Processed)

	workerInfo.LastHeartbeat = s.now()
	if err := s.workerRepo.SaveWorker(ctx, workerInfo); err != nil {
		s.logger.Error("Failed to save worker heartbeat", "workerId", workerInfo.ID, "error", err)
		return fmt.Errorf("failed to update worker heartbeat: %w", err)
	}

	return nil
}

func (s *WorkerRegistrationService) GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error) {
	s.logger.Debug("Getting all workers")

	workers, err := s.workerRepo.GetAllWorkers(ctx)
	if err != nil {
		s.logger.Error("Failed to get all workers", "error", err)
		return nil, fmt.Errorf("failed to get all workers: %w", err)
	}

	// Annotate with active status
	heartbeatThreshold := s.now().Add(-activeThreshold)
	for _, worker := range workers {
		worker.IsActive = worker.LastHeartbeat.After(heartbeatThreshold)
	}

	return workers, nil
}

// CleanupInactiveWorkers removes workers that haven't sent a heartbeat recently
func (s *WorkerRegistrationService) CleanupInactiveWorkers(ctx context.Context) error {
	s.logger.Debug("Cleaning up inactive workers")

	cutoffTime := s.now().Add(-inactiveThreshold)
	if err := s.workerRepo.RemoveInactiveWorkers(ctx, cutoffTime); err != nil {
		s.logger.Error("Failed to remove inactive workers", "error", err)
		return fmt.Errorf("failed to clean up inactive workers: %w", err)
	}

	return nil
}
