package worker

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gitlab.com/mcpricing.net/internal/config"
	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/montecarlo"
	"gitlab.com/mcpricing.net/internal/protocol"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

var _ IWorkerService = &WorkerService{}

// WorkerService evaluates one payout sample per job request it consumes
type WorkerService struct {
	id            string
	broker        secondary.Broker
	logger        primary.Logger
	cacheCapacity int
	factory       GeneratorFactory
	cache         *GeneratorCache
	handlers      map[byte]primary.MessageHandler

	processed atomic.Uint64
	dropped   atomic.Uint64
}

// WorkerOption configures a WorkerService
type WorkerOption func(*WorkerService)

// WithID sets the worker id used in logs
func WithID(id string) WorkerOption {
	return func(w *WorkerService) {
		w.id = id
	}
}

// WithCacheCapacity sets the generator cache capacity
func WithCacheCapacity(capacity int) WorkerOption {
	return func(w *WorkerService) {
		w.cacheCapacity = capacity
	}
}

// WithGeneratorFactory replaces the Brownian path generator
func WithGeneratorFactory(factory GeneratorFactory) WorkerOption {
	return func(w *WorkerService) {
		w.factory = factory
	}
}

// NewWorkerService creates a worker consuming from broker
func NewWorkerService(broker secondary.Broker, logger primary.Logger, options ...WorkerOption) *WorkerService {
	w := &WorkerService{
		id:            uuid.NewString(),
		broker:        broker,
		logger:        logger,
		cacheCapacity: config.DefaultCacheCapacity,
	}

	// Apply options
	for _, option := range options {
		option(w)
	}

	w.logger = w.logger.With("workerID", w.id)

	if w.factory == nil {
		w.factory = brownianFactory(w.id)
	}
	w.cache = NewGeneratorCache(w.cacheCapacity, w.factory)
	w.setupMessageHandlers()

	return w
}

// brownianFactory gives every worker its own random stream
func brownianFactory(workerID string) GeneratorFactory {
	h := fnv.New64a()
	_, _ = h.Write([]byte(workerID))
	rnd := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(h.Sum64())))

	return func(option domain.OptionSpec) secondary.PathGenerator {
		return montecarlo.NewBrownianPathGenerator(option, rnd)
	}
}

// setupMessageHandlers registers all message handlers
func (w *WorkerService) setupMessageHandlers() {
	w.handlers = map[byte]primary.MessageHandler{
		protocol.MsgJobRequest: &JobRequestHandler{Cache: w.cache, Replies: w.broker, Logger: w.logger},
		protocol.MsgControl:    &ControlHandler{Logger: w.logger},
	}
}

func (w *WorkerService) ID() string {
	return w.id
}

// Run consumes job requests until ctx is done or a protocol violation occurs
func (w *WorkerService) Run(ctx context.Context) error {
	w.logger.Info("Worker started")

	for {
		frame, err := w.broker.ConsumeRequest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Worker stopped")
				return nil
			}
			w.logger.Error("Failed to consume request", "error", err)
			return fmt.Errorf("failed to consume request: %w", err)
		}

		if err := w.handleFrame(ctx, frame); err != nil {
			if errors.Is(err, errs.ErrProtocolViolation) {
				w.logger.Error("Protocol violation, worker terminating", "error", err)
				return err
			}
			w.dropped.Add(1)
			w.logger.Warn("Dropped message", "error", err)
			continue
		}
	}
}

func (w *WorkerService) handleFrame(ctx context.Context, frame []byte) error {
	msgType, payload, err := protocol.DecodeFrame(frame)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
	}

	// Find handler for message type
	handler, exists := w.handlers[msgType]
	if !exists {
		return fmt.Errorf("%w: %#x", errs.ErrUnknownMessageType, msgType)
	}

	if err := handler.HandleMessage(ctx, payload); err != nil {
		return err
	}

	if msgType == protocol.MsgJobRequest {
		w.processed.Add(1)
	}
	return nil
}

func (w *WorkerService) Stats() Stats {
	cacheStats := w.cache.Stats()
	return Stats{
		Processed:   w.processed.Load(),
		Dropped:     w.dropped.Load(),
		CacheSize:   cacheStats.Size,
		CacheClears: cacheStats.Clears,
	}
}
