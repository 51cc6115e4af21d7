package secondary

// PathGenerator produces one simulated price path per call. Implementations are
// stateful and not safe for concurrent use.
type PathGenerator interface {
	Generate() []float64
}

// PayoutEvaluator computes the payout of an option on a simulated path
type PayoutEvaluator interface {
	Payout(path []float64) float64
}
