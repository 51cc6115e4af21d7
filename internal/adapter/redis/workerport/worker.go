package workerport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
)

const (
	workerKeyPrefix  = "worker:"
	workerIndexKey   = "workers:index"
	workerExpiration = 5 * time.Minute
)

var _ secondary.WorkerRepository = &WorkerRepository{}

// WorkerRepository implements the WorkerRepository interface with Redis
type WorkerRepository struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewWorkerRepository creates a new Redis worker repository
func NewWorkerRepository(redisClient *redis.Client, logger primary.Logger) *WorkerRepository {
	return &WorkerRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

// GetAllWorkers retrieves all worker information from Redis.
func (r *WorkerRepository) GetAllWorkers(ctx context.Context) ([]*domain.WorkerInfo, error) {
	workerIDs, err := r.redisClient.SMembers(ctx, workerIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get worker IDs: %w", err)
	}

	if len(workerIDs) == 0 {
		return nil, nil // No workers found
	}

	workerKeys := make([]string, 0, len(workerIDs))
	for _, workerID := range workerIDs {
		workerKeys = append(workerKeys, workerKeyPrefix+workerID)
	}

	// Use MGET to retrieve all worker data at once
	workerData, err := r.redisClient.MGet(ctx, workerKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve worker data: %w", err)
	}

	// Deserialize each worker data
	workers := make([]*domain.WorkerInfo, 0, len(workerData))
	for _, data := range workerData {
		raw, ok := data.(string)
		if !ok {
			continue // expired since SMEMBERS
		}
		var worker domain.WorkerInfo
		if err := json.Unmarshal([]byte(raw), &worker); err != nil {
			return nil, fmt.Errorf("failed to unmarshal worker data: %w", err)
		}
		workers = append(workers, &worker)
	}

	return workers, nil
}

// SaveWorker saves worker information to Redis
func (r *WorkerRepository) SaveWorker(ctx context.Context, worker *domain.WorkerInfo) error {
	// Serialize worker info
	workerJSON, err := json.Marshal(worker)
	if err != nil {
		r.logger.Error("Failed to marshal worker info", "error", err)
		return fmt.Errorf("failed to marshal worker info: %w", err)
	}

	// Save worker info with expiration
	workerKey := fmt.Sprintf("%s%s", workerKeyPrefix, worker.ID)
	if err := r.redisClient.Set(ctx, workerKey, workerJSON, workerExpiration).Err(); err != nil {
		r.logger.Error("Failed to save worker info", "error", err)
		return fmt.Errorf("failed to save worker info: %w", err)
	}

	if err := r.redisClient.SAdd(ctx, workerIndexKey, worker.ID).Err(); err != nil {
		r.logger.Error("Failed to add worker to index", "error", err)
		return fmt.Errorf("failed to add worker to index: %w", err)
	}

	return nil
}

// GetWorker retrieves worker information from Redis by ID
func (r *WorkerRepository) GetWorker(ctx context.Context, workerID string) (*domain.WorkerInfo, error) {
	workerKey := fmt.Sprintf("%s%s", workerKeyPrefix, workerID)
	workerJSON, err := r.redisClient.Get(ctx, workerKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get worker info", "error", err)
		return nil, fmt.Errorf("failed to get worker info: %w", err)
	}

	var worker domain.WorkerInfo
	if err := json.Unmarshal(workerJSON, &worker); err != nil {
		r.logger.Error("Failed to unmarshal worker info", "error", err)
		return nil, fmt.Errorf("failed to unmarshal worker info: %w", err)
	}

	return &worker, nil
}

// RemoveInactiveWorkers drops workers from the index whose key has expired or
// whose last heartbeat is older than cutoffTime
func (r *WorkerRepository) RemoveInactiveWorkers(ctx context.Context, cutoffTime time.Time) error {
	workerIDs, err := r.redisClient.SMembers(ctx, workerIndexKey).Result()
	if err != nil {
		r.logger.Error("Failed to get worker IDs", "error", err)
		return fmt.Errorf("failed to get worker IDs: %w", err)
	}

	for _, workerID := range workerIDs {
		worker, err := r.GetWorker(ctx, workerID)
		if err != nil {
			r.logger.Error("Failed to check worker", "workerId", workerID, "error", err)
			continue
		}

		if worker != nil && worker.LastHeartbeat.After(cutoffTime) {
			continue
		}

		if err := r.redisClient.SRem(ctx, workerIndexKey, workerID).Err(); err != nil {
			r.logger.Error("Failed to remove worker from index", "workerId", workerID, "error", err)
			continue
		}
		if worker != nil {
			r.redisClient.Del(ctx, workerKeyPrefix+workerID)
		}
		r.logger.Info("Removed inactive worker", "workerId", workerID)
	}

	return nil
}
