package pricing

import (
	"context"

	"gitlab.com/mcpricing.net/internal/domain"
)

// IPricingService defines the interface of the pricing coordinator
type IPricingService interface {
	// RunJob prices option by dispatching batches of simulation requests until
	// the sample mean converges. It blocks until convergence, a transport
	// failure or ctx cancellation.
	RunJob(ctx context.Context, option domain.OptionSpec, params domain.JobParams) (*domain.PricingResult, error)

	// PriceOption looks the option up in the catalog and runs a job for it
	PriceOption(ctx context.Context, name string, payoutType domain.PayoutType, params domain.JobParams) (*domain.PricingResult, error)

	// DefaultParams returns the configured convergence parameters
	DefaultParams() domain.JobParams
}
