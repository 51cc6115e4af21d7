package secondary

import (
	"context"

	"gitlab.com/mcpricing.net/internal/domain"
)

type OptionRepository interface {
	// SaveOption inserts or replaces an option definition
	SaveOption(ctx context.Context, option domain.OptionSpec) error

	// GetOption retrieves an option by name and payout type
	GetOption(ctx context.Context, name string, payoutType domain.PayoutType) (*domain.OptionRecord, error)

	// ListOptions retrieves every stored option
	ListOptions(ctx context.Context) ([]*domain.OptionRecord, error)
}
