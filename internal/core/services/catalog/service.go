package catalog

import (
	"context"

	"gitlab.com/mcpricing.net/internal/domain"
)

// ICatalogService manages the option definitions jobs can be started from
type ICatalogService interface {
	// SaveOption validates and stores an option definition
	SaveOption(ctx context.Context, option domain.OptionSpec) error

	// GetOption returns errs.ErrOptionNotFound when the option is not stored
	GetOption(ctx context.Context, name string, payoutType domain.PayoutType) (*domain.OptionRecord, error)

	ListOptions(ctx context.Context) ([]*domain.OptionRecord, error)
}
