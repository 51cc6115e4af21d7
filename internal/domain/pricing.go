package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	// ControlTagEnding asks workers to wind down. It is logged and otherwise ignored.
	ControlTagEnding = "ending"

	// MinSamples is the sample count the stopping rule must exceed before it may fire
	MinSamples = 20
)

// JobRequest asks a worker to evaluate one payout sample for Option and publish it to ReplyChannel
type JobRequest struct {
	Option       OptionSpec
	ReplyChannel string
}

// PayoutSample is a single payout value returned by a worker
type PayoutSample struct {
	Value float64
}

// ControlMessage is an out-of-band message on the work queue
type ControlMessage struct {
	Tag string
}

// JobParams are the convergence parameters of one pricing job
type JobParams struct {
	ConfidenceLevel float64
	ToleranceRate   float64
	BatchSize       int
}

// Validate rejects parameters that would make the stopping rule meaningless
func (p JobParams) Validate() error {
	if !(p.ConfidenceLevel > 0 && p.ConfidenceLevel < 1) {
		return fmt.Errorf("confidence level must be in (0, 1), got %g", p.ConfidenceLevel)
	}
	if !(p.ToleranceRate > 0) || math.IsInf(p.ToleranceRate, 1) {
		return fmt.Errorf("tolerance rate must be finite and positive, got %g", p.ToleranceRate)
	}
	if p.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", p.BatchSize)
	}
	return nil
}

// PricingResult is the outcome of a converged pricing job
type PricingResult struct {
	Option       OptionSpec
	Price        float64
	Mean         float64
	Std          float64
	Samples      int
	Batches      int
	ReplyChannel string
	Elapsed      time.Duration
}
