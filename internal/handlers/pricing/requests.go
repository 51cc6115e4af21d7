package pricing

import (
	"github.com/shopspring/decimal"

	"gitlab.com/mcpricing.net/internal/domain"
)

// priceDecimals is the precision of the reported price
const priceDecimals = 6

// PricingRequest prices either an inline option or one from the catalog
type PricingRequest struct {
	Option          *domain.OptionSpec `json:"option,omitempty"`
	OptionName      string             `json:"option_name,omitempty"`
	PayoutType      string             `json:"payout_type,omitempty"`
	ConfidenceLevel *float64           `json:"confidence_level,omitempty"`
	ToleranceRate   *float64           `json:"tolerance_rate,omitempty"`
	BatchSize       *int               `json:"batch_size,omitempty"`
}

// params overlays the request's convergence parameters on the defaults
func (r PricingRequest) params(defaults domain.JobParams) domain.JobParams {
	params := defaults
	if r.ConfidenceLevel != nil {
		params.ConfidenceLevel = *r.ConfidenceLevel
	}
	if r.ToleranceRate != nil {
		params.ToleranceRate = *r.ToleranceRate
	}
	if r.BatchSize != nil {
		params.BatchSize = *r.BatchSize
	}
	return params
}

type PricingResponse struct {
	OptionName string          `json:"option_name"`
	PayoutType string          `json:"payout_type"`
	Price      decimal.Decimal `json:"price"`
	Mean       float64         `json:"mean"`
	Std        float64         `json:"std"`
	Samples    int             `json:"samples"`
	Batches    int             `json:"batches"`
	ElapsedMs  int64           `json:"elapsed_ms"`
}

func NewPricingResponse(result *domain.PricingResult) PricingResponse {
	return PricingResponse{
		OptionName: result.Option.Name,
		PayoutType: string(result.Option.PayoutType),
		Price:      decimal.NewFromFloat(result.Price).Round(priceDecimals),
		Mean:       result.Mean,
		Std:        result.Std,
		Samples:    result.Samples,
		Batches:    result.Batches,
		ElapsedMs:  result.Elapsed.Milliseconds(),
	}
}
