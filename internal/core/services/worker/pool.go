package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

var _ IWorkerService = &Pool{}

// Pool runs several independent workers in one process. Workers share nothing
// but the broker.
type Pool struct {
	id      string
	workers []*WorkerService
	logger  primary.Logger
}

// NewPool creates size workers; options apply to each of them
func NewPool(size int, broker secondary.Broker, logger primary.Logger, options ...WorkerOption) *Pool {
	id := uuid.NewString()
	workers := make([]*WorkerService, 0, size)
	for i := 0; i < size; i++ {
		workerOptions := append([]WorkerOption{WithID(fmt.Sprintf("%s-%d", id, i))}, options...)
		workers = append(workers, NewWorkerService(broker, logger, workerOptions...))
	}

	return &Pool{
		id:      id,
		workers: workers,
		logger:  logger.With("poolID", id),
	}
}

func (p *Pool) ID() string {
	return p.id
}

func (p *Pool) Size() int {
	return len(p.workers)
}

// Run runs every worker until ctx is done. The first worker failure stops the
// others and is returned.
func (p *Pool) Run(ctx context.Context) error {
	if len(p.workers) == 0 {
		return fmt.Errorf("%w: worker pool is empty", errs.ErrInvalidConfig)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		w := w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	p.logger.Info("Worker pool started", "size", len(p.workers))
	return g.Wait()
}

// Stats sums the counters of every worker in the pool
func (p *Pool) Stats() Stats {
	var total Stats
	for _, w := range p.workers {
		total = total.add(w.Stats())
	}
	return total
}
