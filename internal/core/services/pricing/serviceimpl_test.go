package pricing_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/mcpricing.net/internal/adapter/logging"
	"gitlab.com/mcpricing.net/internal/adapter/memory/broker"
	"gitlab.com/mcpricing.net/internal/config"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/core/services/pricing"
	"gitlab.com/mcpricing.net/internal/core/services/worker"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/protocol"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

type fixedPath []float64

func (p fixedPath) Generate() []float64 {
	return p
}

type optionCatalog struct {
	options map[string]domain.OptionSpec
}

func (c *optionCatalog) SaveOption(_ context.Context, option domain.OptionSpec) error {
	c.options[option.Name+"/"+string(option.PayoutType)] = option
	return nil
}

func (c *optionCatalog) GetOption(_ context.Context, name string, payoutType domain.PayoutType) (*domain.OptionRecord, error) {
	option, ok := c.options[name+"/"+string(payoutType)]
	if !ok {
		return nil, nil
	}
	return &domain.OptionRecord{OptionSpec: option}, nil
}

func (c *optionCatalog) ListOptions(context.Context) ([]*domain.OptionRecord, error) {
	records := make([]*domain.OptionRecord, 0, len(c.options))
	for _, option := range c.options {
		records = append(records, &domain.OptionRecord{OptionSpec: option})
	}
	return records, nil
}

var _ secondary.OptionRepository = &optionCatalog{}

func pricingCfg() *config.PricingCfg {
	return &config.PricingCfg{
		ConfidenceLevel: config.DefaultConfidenceLevel,
		ToleranceRate:   config.DefaultToleranceRate,
		BatchSize:       config.DefaultBatchSize,
	}
}

func ibm(payoutType domain.PayoutType, strike float64) domain.OptionSpec {
	return domain.OptionSpec{
		Name:         "IBM",
		PayoutType:   payoutType,
		InterestRate: 0.0001,
		Volatility:   0.01,
		StrikePrice:  strike,
		Duration:     252,
		InitialPrice: 152.35,
	}
}

// startPool runs workers whose generator always yields path
func startPool(t *testing.T, b secondary.Broker, size int, path ...float64) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pool := worker.NewPool(size, b, logging.NewNopLogger(),
		worker.WithGeneratorFactory(func(domain.OptionSpec) secondary.PathGenerator {
			return fixedPath(path)
		}),
	)
	done := make(chan error, 1)
	go func() {
		done <- pool.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestRunJobConstantPayoutStopsAfterFirstBatch(t *testing.T) {
	chk := require.New(t)
	b := broker.NewBroker()
	startPool(t, b, 2, 175)

	svc := pricing.NewPricingService(b, nil, logging.NewNopLogger(), pricingCfg())
	option := ibm(domain.PayoutTypeEuropean, 165)
	result, err := svc.RunJob(context.Background(), option, domain.JobParams{
		ConfidenceLevel: 0.96,
		ToleranceRate:   0.1,
		BatchSize:       25,
	})
	chk.NoError(err)
	chk.Equal(25, result.Samples)
	chk.Equal(1, result.Batches)
	chk.Equal(10.0, result.Mean)
	chk.Zero(result.Std)
	chk.InDelta(10*math.Exp(-0.0001*252), result.Price, 1e-12)
	chk.True(strings.HasPrefix(result.ReplyChannel, "pricing:result:"))
	chk.True(strings.HasSuffix(result.ReplyChannel, ":IBM:European"))

	// reply channel is closed once the job ends
	chk.Zero(b.OpenReplyChannels())
	chk.Zero(b.PendingRequests())
}

func TestRunJobNeedsMoreThanMinSamples(t *testing.T) {
	chk := require.New(t)
	b := broker.NewBroker()
	startPool(t, b, 1, 100, 200)

	svc := pricing.NewPricingService(b, nil, logging.NewNopLogger(), pricingCfg())
	result, err := svc.RunJob(context.Background(), ibm(domain.PayoutTypeAsian, 100), domain.JobParams{
		ConfidenceLevel: 0.96,
		ToleranceRate:   0.1,
		BatchSize:       5,
	})
	chk.NoError(err)
	// zero variance, so the first batch boundary past 20 samples stops the job
	chk.Equal(25, result.Samples)
	chk.Equal(5, result.Batches)
	chk.Equal(50.0, result.Mean)
}

func withField(option domain.OptionSpec, set func(*domain.OptionSpec)) domain.OptionSpec {
	set(&option)
	return option
}

func TestRunJobRejectsInvalidConfig(t *testing.T) {
	b := broker.NewBroker()
	svc := pricing.NewPricingService(b, nil, logging.NewNopLogger(), pricingCfg())
	option := ibm(domain.PayoutTypeEuropean, 165)

	tests := []struct {
		name   string
		option domain.OptionSpec
		params domain.JobParams
	}{
		{"confidence zero", option, domain.JobParams{ConfidenceLevel: 0, ToleranceRate: 0.1, BatchSize: 10}},
		{"confidence one", option, domain.JobParams{ConfidenceLevel: 1, ToleranceRate: 0.1, BatchSize: 10}},
		{"tolerance zero", option, domain.JobParams{ConfidenceLevel: 0.9, ToleranceRate: 0, BatchSize: 10}},
		{"batch zero", option, domain.JobParams{ConfidenceLevel: 0.9, ToleranceRate: 0.1, BatchSize: 0}},
		{"bad duration", domain.OptionSpec{Name: "X", PayoutType: domain.PayoutTypeAsian, InitialPrice: 1}, svc.DefaultParams()},
		{"confidence NaN", option, domain.JobParams{ConfidenceLevel: math.NaN(), ToleranceRate: 0.1, BatchSize: 10}},
		{"tolerance NaN", option, domain.JobParams{ConfidenceLevel: 0.9, ToleranceRate: math.NaN(), BatchSize: 10}},
		{"tolerance infinite", option, domain.JobParams{ConfidenceLevel: 0.9, ToleranceRate: math.Inf(1), BatchSize: 10}},
		{"volatility NaN", withField(option, func(o *domain.OptionSpec) { o.Volatility = math.NaN() }), svc.DefaultParams()},
		{"interest rate NaN", withField(option, func(o *domain.OptionSpec) { o.InterestRate = math.NaN() }), svc.DefaultParams()},
		{"strike infinite", withField(option, func(o *domain.OptionSpec) { o.StrikePrice = math.Inf(-1) }), svc.DefaultParams()},
		{"initial price NaN", withField(option, func(o *domain.OptionSpec) { o.InitialPrice = math.NaN() }), svc.DefaultParams()},
		{"bad payout type", domain.OptionSpec{Name: "X", PayoutType: "Bermudan", Duration: 1, InitialPrice: 1}, svc.DefaultParams()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RunJob(context.Background(), tt.option, tt.params)
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
			require.Zero(t, b.PendingRequests())
			require.Zero(t, b.OpenReplyChannels())
		})
	}
}

func TestRunJobRejectsOversizedBatch(t *testing.T) {
	b := broker.NewBroker()
	cfg := pricingCfg()
	cfg.MaxBatchSize = 1000
	svc := pricing.NewPricingService(b, nil, logging.NewNopLogger(), cfg)

	_, err := svc.RunJob(context.Background(), ibm(domain.PayoutTypeEuropean, 165), domain.JobParams{
		ConfidenceLevel: 0.96,
		ToleranceRate:   0.1,
		BatchSize:       1_000_000_000,
	})
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	require.Zero(t, b.PendingRequests())
	require.Zero(t, b.OpenReplyChannels())
}

func TestRunJobCancelled(t *testing.T) {
	chk := require.New(t)
	b := broker.NewBroker()
	svc := pricing.NewPricingService(b, nil, logging.NewNopLogger(), pricingCfg())

	// no workers, the job blocks on its first receive
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := svc.RunJob(ctx, ibm(domain.PayoutTypeEuropean, 165), domain.JobParams{
		ConfidenceLevel: 0.96,
		ToleranceRate:   0.1,
		BatchSize:       10,
	})
	chk.ErrorIs(err, context.DeadlineExceeded)
	chk.Equal(10, b.PendingRequests())
	chk.Zero(b.OpenReplyChannels())
}

func TestRunJobAbortsOnCorruptReply(t *testing.T) {
	chk := require.New(t)
	b := broker.NewBroker()
	svc := pricing.NewPricingService(b, nil, logging.NewNopLogger(), pricingCfg())

	// answer every request with a control frame instead of a payout
	go func() {
		frame, err := b.ConsumeRequest(context.Background())
		if err != nil {
			return
		}
		msgType, payload, err := protocol.DecodeFrame(frame)
		if err != nil || msgType != protocol.MsgJobRequest {
			return
		}
		req, err := protocol.DecodeJobRequest(payload)
		if err != nil {
			return
		}
		bogus, _ := protocol.EncodeControl(domain.ControlMessage{Tag: domain.ControlTagEnding})
		_ = b.PublishReply(context.Background(), req.ReplyChannel, bogus)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := svc.RunJob(ctx, ibm(domain.PayoutTypeEuropean, 165), domain.JobParams{
		ConfidenceLevel: 0.96,
		ToleranceRate:   0.1,
		BatchSize:       1,
	})
	chk.ErrorIs(err, errs.ErrUnknownMessageType)
}

func TestConcurrentJobsAreIsolated(t *testing.T) {
	chk := require.New(t)
	b := broker.NewBroker()
	startPool(t, b, 4, 150, 170)

	svc := pricing.NewPricingService(b, nil, logging.NewNopLogger(), pricingCfg())
	params := domain.JobParams{ConfidenceLevel: 0.96, ToleranceRate: 0.1, BatchSize: 30}

	jobs := []domain.OptionSpec{
		ibm(domain.PayoutTypeEuropean, 165),
		ibm(domain.PayoutTypeAsian, 155),
		ibm(domain.PayoutTypeEuropean, 165),
	}
	results := make([]*domain.PricingResult, len(jobs))
	jobErrs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, option := range jobs {
		wg.Add(1)
		go func(i int, option domain.OptionSpec) {
			defer wg.Done()
			results[i], jobErrs[i] = svc.RunJob(context.Background(), option, params)
		}(i, option)
	}
	wg.Wait()

	for i := range jobs {
		chk.NoError(jobErrs[i])
		chk.Equal(30, results[i].Samples)
	}
	chk.Equal(5.0, results[0].Mean)
	chk.Equal(5.0, results[1].Mean)
	chk.Equal(5.0, results[2].Mean)
	// same option, different owners
	chk.NotEqual(results[0].ReplyChannel, results[2].ReplyChannel)
}

func TestPriceOption(t *testing.T) {
	chk := require.New(t)
	b := broker.NewBroker()
	startPool(t, b, 2, 170)

	catalog := &optionCatalog{options: map[string]domain.OptionSpec{}}
	chk.NoError(catalog.SaveOption(context.Background(), ibm(domain.PayoutTypeEuropean, 165)))

	svc := pricing.NewPricingService(b, catalog, logging.NewNopLogger(), pricingCfg())
	params := domain.JobParams{ConfidenceLevel: 0.96, ToleranceRate: 0.1, BatchSize: 21}

	result, err := svc.PriceOption(context.Background(), "IBM", domain.PayoutTypeEuropean, params)
	chk.NoError(err)
	chk.Equal(5.0, result.Mean)
	chk.Equal(21, result.Samples)

	_, err = svc.PriceOption(context.Background(), "IBM", domain.PayoutTypeAsian, params)
	chk.True(errors.Is(err, errs.ErrOptionNotFound))

	noCatalog := pricing.NewPricingService(b, nil, logging.NewNopLogger(), pricingCfg())
	_, err = noCatalog.PriceOption(context.Background(), "IBM", domain.PayoutTypeEuropean, params)
	chk.ErrorIs(err, errs.ErrOptionNotFound)
}
