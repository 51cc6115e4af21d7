package catalog

import (
	"context"
	"fmt"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

var _ ICatalogService = &CatalogService{}

type CatalogService struct {
	optionRepo secondary.OptionRepository
	logger     primary.Logger
}

func NewCatalogService(optionRepo secondary.OptionRepository, logger primary.Logger) *CatalogService {
	return &CatalogService{
		optionRepo: optionRepo,
		logger:     logger,
	}
}

func (s *CatalogService) SaveOption(ctx context.Context, option domain.OptionSpec) error {
	if err := option.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}

	if err := s.optionRepo.SaveOption(ctx, option); err != nil {
		return fmt.Errorf("failed to save option: %w", err)
	}

	s.logger.Info("Option saved", "name", option.Name, "payoutType", option.PayoutType)
	return nil
}

func (s *CatalogService) GetOption(ctx context.Context, name string, payoutType domain.PayoutType) (*domain.OptionRecord, error) {
	record, err := s.optionRepo.GetOption(ctx, name, payoutType)
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s/%s", errs.ErrOptionNotFound, name, payoutType)
	}
	return record, nil
}

func (s *CatalogService) ListOptions(ctx context.Context) ([]*domain.OptionRecord, error) {
	records, err := s.optionRepo.ListOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	if records == nil {
		records = []*domain.OptionRecord{}
	}
	return records, nil
}
