// Package montecarlo holds the numeric option model used by the workers:
// price path generation and payout evaluation.
package montecarlo

import (
	"math"
	"math/rand"

	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
)

var _ secondary.PathGenerator = &BrownianPathGenerator{}

// BrownianPathGenerator simulates geometric Brownian motion with a unit time step
type BrownianPathGenerator struct {
	rnd          *rand.Rand
	initialPrice float64
	drift        float64
	volatility   float64
	steps        int
}

// NewBrownianPathGenerator creates a generator for option drawing normals from rnd
func NewBrownianPathGenerator(option domain.OptionSpec, rnd *rand.Rand) *BrownianPathGenerator {
	return &BrownianPathGenerator{
		rnd:          rnd,
		initialPrice: option.InitialPrice,
		drift:        option.InterestRate - 0.5*option.Volatility*option.Volatility,
		volatility:   option.Volatility,
		steps:        option.Duration,
	}
}

// Generate returns the prices at steps 1..Duration
func (g *BrownianPathGenerator) Generate() []float64 {
	path := make([]float64, g.steps)
	price := g.initialPrice
	for i := range path {
		// S(t+1) = S(t) * exp((r - 0.5 * sigma^2) + sigma * Z)
		price *= math.Exp(g.drift + g.volatility*g.rnd.NormFloat64())
		path[i] = price
	}
	return path
}
