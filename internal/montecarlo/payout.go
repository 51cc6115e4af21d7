package montecarlo

import (
	"fmt"

	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

type europeanCall struct {
	strike float64
}

func (c europeanCall) Payout(path []float64) float64 {
	if len(path) == 0 {
		return 0
	}
	return max(path[len(path)-1]-c.strike, 0)
}

type asianCall struct {
	strike float64
}

func (c asianCall) Payout(path []float64) float64 {
	if len(path) == 0 {
		return 0
	}
	var sum float64
	for _, price := range path {
		sum += price
	}
	return max(sum/float64(len(path))-c.strike, 0)
}

// NewPayoutEvaluator returns the call payout for the given strike and payout type
func NewPayoutEvaluator(strike float64, payoutType domain.PayoutType) (secondary.PayoutEvaluator, error) {
	switch payoutType {
	case domain.PayoutTypeEuropean:
		return europeanCall{strike: strike}, nil
	case domain.PayoutTypeAsian:
		return asianCall{strike: strike}, nil
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownPayoutType, payoutType)
}
