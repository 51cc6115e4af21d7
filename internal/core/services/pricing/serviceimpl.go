package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/mcpricing.net/internal/config"
	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/protocol"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

const progressLogInterval = 10000

var _ IPricingService = &PricingService{}

// PricingService implements the IPricingService interface
type PricingService struct {
	broker     secondary.Broker
	optionRepo secondary.OptionRepository
	logger     primary.Logger
	cfg        *config.PricingCfg
	newOwnerID func() string
}

// NewPricingService creates a new pricing coordinator. optionRepo may be nil
// when no option catalog is available.
func NewPricingService(
	broker secondary.Broker,
	optionRepo secondary.OptionRepository,
	logger primary.Logger,
	cfg *config.PricingCfg,
) *PricingService {
	return &PricingService{
		broker:     broker,
		optionRepo: optionRepo,
		logger:     logger,
		cfg:        cfg,
		newOwnerID: uuid.NewString,
	}
}

func (s *PricingService) DefaultParams() domain.JobParams {
	return domain.JobParams{
		ConfidenceLevel: s.cfg.ConfidenceLevel,
		ToleranceRate:   s.cfg.ToleranceRate,
		BatchSize:       s.cfg.BatchSize,
	}
}

// PriceOption looks the option up in the catalog and runs a job for it
func (s *PricingService) PriceOption(ctx context.Context, name string, payoutType domain.PayoutType, params domain.JobParams) (*domain.PricingResult, error) {
	if s.optionRepo == nil {
		return nil, fmt.Errorf("%w: no option catalog configured", errs.ErrOptionNotFound)
	}

	record, err := s.optionRepo.GetOption(ctx, name, payoutType)
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s/%s", errs.ErrOptionNotFound, name, payoutType)
	}

	return s.RunJob(ctx, record.OptionSpec, params)
}

// RunJob runs the batched send/receive/convergence loop for one option
func (s *PricingService) RunJob(ctx context.Context, option domain.OptionSpec, params domain.JobParams) (*domain.PricingResult, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}
	if s.cfg.MaxBatchSize > 0 && params.BatchSize > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: batch size %d exceeds the maximum of %d",
			errs.ErrInvalidConfig, params.BatchSize, s.cfg.MaxBatchSize)
	}
	if err := option.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}

	bound, err := TwoSidedBound(params.ConfidenceLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}

	replyChannel := protocol.ReplyChannelName(s.newOwnerID(), option)
	request, err := protocol.EncodeJobRequest(domain.JobRequest{Option: option, ReplyChannel: replyChannel})
	if err != nil {
		return nil, err
	}

	sub, err := s.broker.OpenReplyChannel(ctx, replyChannel)
	if err != nil {
		s.logger.Error("Failed to open reply channel", "channel", replyChannel, "error", err)
		return nil, fmt.Errorf("failed to open reply channel: %w", err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			s.logger.Warn("Failed to close reply channel", "channel", replyChannel, "error", err)
		}
	}()

	s.logger.Info("Pricing job started",
		"option", option.Name,
		"payoutType", option.PayoutType,
		"channel", replyChannel,
		"bound", bound,
		"tolerance", params.ToleranceRate,
		"batchSize", params.BatchSize,
	)

	start := time.Now()
	stats := NewRunningStats()
	batches := 0
	for {
		if err := s.runBatch(ctx, sub, request, params.BatchSize, stats); err != nil {
			s.logger.Error("Pricing job aborted", "channel", replyChannel, "samples", stats.Count(), "error", err)
			return nil, err
		}
		batches++

		if Converged(bound, stats, params.ToleranceRate) {
			break
		}
	}

	result := &domain.PricingResult{
		Option:       option,
		Price:        DiscountedPrice(stats.Mean(), option),
		Mean:         stats.Mean(),
		Std:          stats.Std(),
		Samples:      stats.Count(),
		Batches:      batches,
		ReplyChannel: replyChannel,
		Elapsed:      time.Since(start),
	}

	s.logger.Info("Pricing job converged",
		"option", option.Name,
		"payoutType", option.PayoutType,
		"price", result.Price,
		"samples", result.Samples,
		"batches", result.Batches,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// runBatch publishes the request batchSize times, then folds exactly
// batchSize replies into stats
func (s *PricingService) runBatch(
	ctx context.Context,
	sub secondary.ReplySubscription,
	request []byte,
	batchSize int,
	stats StatsAccumulator,
) error {
	for i := 0; i < batchSize; i++ {
		if err := s.broker.PublishRequest(ctx, request); err != nil {
			return fmt.Errorf("failed to publish job request: %w", err)
		}
	}

	for i := 0; i < batchSize; i++ {
		reply, err := sub.Receive(ctx)
		if err != nil {
			return fmt.Errorf("failed to receive payout: %w", err)
		}

		sample, err := protocol.DecodePayoutSample(reply)
		if err != nil {
			return fmt.Errorf("failed to decode payout: %w", err)
		}

		stats.Update(sample.Value)
		if stats.Count()%progressLogInterval == 0 {
			s.logger.Debug("Pricing progress", "samples", stats.Count(), "mean", stats.Mean(), "std", stats.Std())
		}
	}

	return nil
}
