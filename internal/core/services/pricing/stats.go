package pricing

import "math"

// StatsAccumulator ingests payout samples and reports their running moments
type StatsAccumulator interface {
	Update(x float64)
	Count() int
	Mean() float64
	Std() float64
}

var _ StatsAccumulator = &RunningStats{}

// RunningStats keeps the mean and variance of the samples seen so far using
// Welford's update, so no sample is retained.
type RunningStats struct {
	n    int
	mean float64
	m2   float64
}

func NewRunningStats() *RunningStats {
	return &RunningStats{}
}

func (s *RunningStats) Update(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

func (s *RunningStats) Count() int {
	return s.n
}

func (s *RunningStats) Mean() float64 {
	return s.mean
}

// Std is the sample standard deviation; zero until two samples were seen
func (s *RunningStats) Std() float64 {
	if s.n < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.n-1))
}
