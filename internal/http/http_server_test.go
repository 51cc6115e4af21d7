package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/mcpricing.net/internal/adapter/logging"
	"gitlab.com/mcpricing.net/internal/adapter/memory/broker"
	"gitlab.com/mcpricing.net/internal/config"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/core/services/catalog"
	"gitlab.com/mcpricing.net/internal/core/services/pricing"
	"gitlab.com/mcpricing.net/internal/core/services/worker"
	"gitlab.com/mcpricing.net/internal/domain"
	pricinghdl "gitlab.com/mcpricing.net/internal/handlers/pricing"
	http2 "gitlab.com/mcpricing.net/internal/http"
)

type fixedPath []float64

func (p fixedPath) Generate() []float64 {
	return p
}

type memoryRepo struct {
	options map[string]domain.OptionSpec
}

func (r *memoryRepo) SaveOption(_ context.Context, option domain.OptionSpec) error {
	r.options[option.Name+"/"+string(option.PayoutType)] = option
	return nil
}

func (r *memoryRepo) GetOption(_ context.Context, name string, payoutType domain.PayoutType) (*domain.OptionRecord, error) {
	option, ok := r.options[name+"/"+string(payoutType)]
	if !ok {
		return nil, nil
	}
	return &domain.OptionRecord{OptionSpec: option}, nil
}

func (r *memoryRepo) ListOptions(context.Context) ([]*domain.OptionRecord, error) {
	var records []*domain.OptionRecord
	for _, option := range r.options {
		records = append(records, &domain.OptionRecord{OptionSpec: option})
	}
	return records, nil
}

type workerRepo struct {
	workers []*domain.WorkerInfo
}

func (r *workerRepo) SaveWorker(_ context.Context, w *domain.WorkerInfo) error {
	r.workers = append(r.workers, w)
	return nil
}

func (r *workerRepo) GetWorker(context.Context, string) (*domain.WorkerInfo, error) {
	return nil, nil
}

func (r *workerRepo) GetAllWorkers(context.Context) ([]*domain.WorkerInfo, error) {
	return r.workers, nil
}

func (r *workerRepo) RemoveInactiveWorkers(context.Context, time.Time) error {
	return nil
}

var (
	_ secondary.OptionRepository = &memoryRepo{}
	_ secondary.WorkerRepository = &workerRepo{}
)

func newTestServer(t *testing.T) (http.Handler, *workerRepo) {
	t.Helper()
	logger := logging.NewNopLogger()
	b := broker.NewBroker()

	ctx, cancel := context.WithCancel(context.Background())
	pool := worker.NewPool(2, b, logger, worker.WithGeneratorFactory(func(domain.OptionSpec) secondary.PathGenerator {
		return fixedPath{150, 160}
	}))
	done := make(chan error, 1)
	go func() {
		done <- pool.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	options := &memoryRepo{options: map[string]domain.OptionSpec{}}
	workers := &workerRepo{}
	cfg := &config.PricingCfg{ConfidenceLevel: 0.96, ToleranceRate: 0.1, BatchSize: 25, MaxBatchSize: 1000}

	provider := http2.NewServiceProvider(
		pricing.NewPricingService(b, options, logger, cfg),
		catalog.NewCatalogService(options, logger),
		worker.NewWorkerRegistrationService(workers, logger),
	)
	server := http2.NewServer(0, "pricing", *provider, logger)
	require.NoError(t, server.Init())
	return server.Handler(), workers
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ibmEuropean() domain.OptionSpec {
	return domain.OptionSpec{
		Name:         "IBM",
		PayoutType:   domain.PayoutTypeEuropean,
		InterestRate: 0.0001,
		Volatility:   0.01,
		StrikePrice:  155,
		Duration:     252,
		InitialPrice: 152.35,
	}
}

func TestPriceInlineOption(t *testing.T) {
	chk := require.New(t)
	h, _ := newTestServer(t)

	option := ibmEuropean()
	rec := do(t, h, http.MethodPost, "/api/pricing", map[string]interface{}{"option": option})
	chk.Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp pricinghdl.PricingResponse
	chk.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	chk.Equal("IBM", resp.OptionName)
	chk.Equal("European", resp.PayoutType)
	chk.Equal(25, resp.Samples)
	chk.Equal(5.0, resp.Mean)
	// 5 * exp(-0.0252) rounded to six places
	chk.Equal("4.875574", resp.Price.String())
}

func TestPriceCatalogOption(t *testing.T) {
	chk := require.New(t)
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/pricing", map[string]interface{}{
		"option_name": "IBM",
		"payout_type": "European",
	})
	chk.Equal(http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/options", ibmEuropean())
	chk.Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/options/IBM/European", nil)
	chk.Equal(http.StatusOK, rec.Code)
	var record domain.OptionRecord
	chk.NoError(json.Unmarshal(rec.Body.Bytes(), &record))
	chk.Equal(ibmEuropean(), record.OptionSpec)

	rec = do(t, h, http.MethodGet, "/api/options", nil)
	chk.Equal(http.StatusOK, rec.Code)
	var records []domain.OptionRecord
	chk.NoError(json.Unmarshal(rec.Body.Bytes(), &records))
	chk.Len(records, 1)

	rec = do(t, h, http.MethodPost, "/api/pricing", map[string]interface{}{
		"option_name": "IBM",
		"payout_type": "European",
		"batch_size":  30,
	})
	chk.Equal(http.StatusOK, rec.Code, rec.Body.String())
	var resp pricinghdl.PricingResponse
	chk.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	chk.Equal(30, resp.Samples)
}

func TestPricingRejectsBadRequests(t *testing.T) {
	chk := require.New(t)
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/pricing", map[string]interface{}{})
	chk.Equal(http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/pricing", map[string]interface{}{
		"option":           ibmEuropean(),
		"confidence_level": 1.5,
	})
	chk.Equal(http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/pricing", map[string]interface{}{
		"option":     ibmEuropean(),
		"batch_size": 1000000000,
	})
	chk.Equal(http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/pricing", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	chk.Equal(http.StatusBadRequest, rec.Code)

	invalid := ibmEuropean()
	invalid.InitialPrice = 0
	rec = do(t, h, http.MethodPost, "/api/options", invalid)
	chk.Equal(http.StatusBadRequest, rec.Code)
}

func TestListWorkers(t *testing.T) {
	chk := require.New(t)
	h, workers := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/workers", nil)
	chk.Equal(http.StatusOK, rec.Code)
	chk.JSONEq(`[]`, rec.Body.String())

	workers.workers = append(workers.workers, &domain.WorkerInfo{ID: "pool-1", LastHeartbeat: time.Now()})
	rec = do(t, h, http.MethodGet, "/api/workers", nil)
	chk.Equal(http.StatusOK, rec.Code)
	var infos []domain.WorkerInfo
	chk.NoError(json.Unmarshal(rec.Body.Bytes(), &infos))
	chk.Len(infos, 1)
	chk.True(infos[0].IsActive)
}
