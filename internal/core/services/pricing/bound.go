package pricing

import (
	"fmt"
	"math"

	"gitlab.com/mcpricing.net/internal/domain"
)

// rationalApproximation is formula 26.2.23 of Abramowitz and Stegun; the
// absolute error is below 4.5e-4.
func rationalApproximation(t float64) float64 {
	const (
		c0, c1, c2 = 2.515517, 0.802853, 0.010328
		d1, d2, d3 = 1.432788, 0.189269, 0.001308
	)
	return t - ((c2*t+c1)*t+c0)/(((d3*t+d2)*t+d1)*t+1.0)
}

// NormalCDFInverse returns z such that P(Z <= z) = p for a standard normal Z
func NormalCDFInverse(p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("p must be in (0, 1), got %g", p)
	}

	if p < 0.5 {
		return -rationalApproximation(math.Sqrt(-2.0 * math.Log(p))), nil
	}
	// F^-1(p) = -F^-1(1-p)
	return rationalApproximation(math.Sqrt(-2.0 * math.Log(1-p))), nil
}

// TwoSidedBound returns the z value leaving (1-confidence)/2 in each tail
func TwoSidedBound(confidenceLevel float64) (float64, error) {
	return NormalCDFInverse(confidenceLevel + (1-confidenceLevel)/2.0)
}

// Converged is the stopping rule: the confidence interval half-width is below
// the tolerance and more than domain.MinSamples samples were folded in.
func Converged(bound float64, stats StatsAccumulator, toleranceRate float64) bool {
	n := stats.Count()
	if n <= domain.MinSamples {
		return false
	}
	return bound*stats.Std()/math.Sqrt(float64(n)) < toleranceRate
}

// DiscountedPrice discounts the mean payout over the option duration
func DiscountedPrice(mean float64, option domain.OptionSpec) float64 {
	return mean * math.Exp(-option.InterestRate*float64(option.Duration))
}
