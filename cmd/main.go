package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"gitlab.com/mcpricing.net/internal/adapter/logging"
	memorybroker "gitlab.com/mcpricing.net/internal/adapter/memory/broker"
	"gitlab.com/mcpricing.net/internal/adapter/postgres/optionrepository"
	redisbroker "gitlab.com/mcpricing.net/internal/adapter/redis/broker"
	"gitlab.com/mcpricing.net/internal/adapter/redis/workerport"
	"gitlab.com/mcpricing.net/internal/config"
	"gitlab.com/mcpricing.net/internal/core/services/catalog"
	"gitlab.com/mcpricing.net/internal/core/services/pricing"
	"gitlab.com/mcpricing.net/internal/core/services/worker"
	"gitlab.com/mcpricing.net/internal/domain"
	logger2 "gitlab.com/mcpricing.net/internal/global/logger"
	http2 "gitlab.com/mcpricing.net/internal/http"
	"gitlab.com/mcpricing.net/internal/publishers"
	"gitlab.com/mcpricing.net/internal/schedulerengine"
)

const (
	roleCoordinator = "coordinator"
	roleWorker      = "worker"
	roleLocal       = "local"
)

func main() {
	role := InitReader()
	logger := logger2.Logger
	defer func() { _ = logger.Sync() }()

	sysCfg := config.NewSystemConfig()
	if sysCfg.DebugMode {
		logger = logging.NewZapLoggerWithLevel(zapcore.DebugLevel)
	}

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch role {
	case roleCoordinator:
		err = runCoordinator(ctx, sysCfg, logger)
	case roleWorker:
		err = runWorker(ctx, sysCfg, logger)
	case roleLocal:
		err = runLocal(ctx, sysCfg, logger)
	default:
		err = fmt.Errorf("unknown role %q", role)
	}

	if err != nil {
		logger.Error("Exiting with error", "role", role, "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("successfully shutdown", "role", role)
}

// runCoordinator serves the pricing API against Redis workers
func runCoordinator(ctx context.Context, sysCfg *config.AppConfig, logger *logging.ZapLogger) error {
	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	redisClient := setupRedis(sysCfg.RedisConfig)
	defer redisClient.Close()

	// SECONDARY PORTS
	broker := redisbroker.NewRedisBroker(redisClient, logger)
	optionRepo := optionrepository.NewOptionRepository(db, logger, "public")
	workerRepo := workerport.NewWorkerRepository(redisClient, logger)

	//services
	pricingSvc := pricing.NewPricingService(broker, optionRepo, logger, sysCfg.PricingCfg)
	catalogSvc := catalog.NewCatalogService(optionRepo, logger)
	registrySvc := worker.NewWorkerRegistrationService(workerRepo, logger)

	//server
	serviceProvider := http2.NewServiceProvider(pricingSvc, catalogSvc, registrySvc)
	httpServer := http2.NewServer(sysCfg.HttpCfg.Port, "pricingCoordinator", *serviceProvider, logger)
	if err := httpServer.Init(); err != nil {
		return err
	}
	httpServer.Start(ctx)

	engine := schedulerengine.NewSchedulerEngine(registrySvc, logger)
	engine.StartCleanupEngine(ctx, sysCfg.PricingCfg.CleanupInterval)

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	engine.Wait()
	return httpServer.Stop(shutdownCtx)
}

// runWorker consumes the Redis work queue until interrupted or a protocol violation
func runWorker(ctx context.Context, sysCfg *config.AppConfig, logger *logging.ZapLogger) error {
	redisClient := setupRedis(sysCfg.RedisConfig)
	defer redisClient.Close()

	broker := redisbroker.NewRedisBroker(redisClient, logger)
	registrySvc := worker.NewWorkerRegistrationService(workerport.NewWorkerRepository(redisClient, logger), logger)

	pool := worker.NewPool(sysCfg.WorkerCfg.PoolSize, broker, logger,
		worker.WithCacheCapacity(sysCfg.WorkerCfg.CacheCapacity),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	engine := schedulerengine.NewSchedulerEngine(registrySvc, logger)
	engine.StartHeartbeatEngine(ctx, pool, sysCfg.WorkerCfg.HeartbeatInterval)

	err := pool.Run(ctx)
	cancel()
	engine.Wait()
	return err
}

// runLocal prices the two IBM sample options against an in-process broker
func runLocal(ctx context.Context, sysCfg *config.AppConfig, logger *logging.ZapLogger) error {
	broker := memorybroker.NewBroker()
	pool := worker.NewPool(sysCfg.WorkerCfg.PoolSize, broker, logger,
		worker.WithCacheCapacity(sysCfg.WorkerCfg.CacheCapacity),
	)

	poolCtx, cancelPool := context.WithCancel(ctx)
	defer cancelPool()
	poolErr := make(chan error, 1)
	go func() {
		poolErr <- pool.Run(poolCtx)
	}()

	pricingSvc := pricing.NewPricingService(broker, nil, logger, sysCfg.PricingCfg)
	params := domain.JobParams{ConfidenceLevel: 0.96, ToleranceRate: 0.1, BatchSize: sysCfg.PricingCfg.BatchSize}
	jobs := []domain.OptionSpec{
		sampleOption(domain.PayoutTypeEuropean, 165),
		sampleOption(domain.PayoutTypeAsian, 164),
	}

	results := make([]*domain.PricingResult, len(jobs))
	g, jobCtx := errgroup.WithContext(ctx)
	for i, option := range jobs {
		i, option := i, option
		g.Go(func() error {
			result, err := pricingSvc.RunJob(jobCtx, option, params)
			if err != nil {
				return fmt.Errorf("failed to price %s %s: %w", option.Name, option.PayoutType, err)
			}
			results[i] = result
			return nil
		})
	}
	jobErr := g.Wait()

	for _, result := range results {
		if result == nil {
			continue
		}
		fmt.Printf("%s %s option price: %.6f (%d samples)\n",
			result.Option.Name, result.Option.PayoutType, result.Price, result.Samples)
	}

	// one "ending" per worker, then give the pool a moment to drain the queue
	control := publishers.NewControlPublisher(broker, logger)
	if err := control.SendEnding(ctx, pool.Size()); err == nil {
		waitForDrain(ctx, broker, 2*time.Second)
	}

	cancelPool()
	if err := <-poolErr; err != nil {
		return err
	}
	return jobErr
}

// waitForDrain polls until the work queue is empty or timeout elapses
func waitForDrain(ctx context.Context, broker *memorybroker.Broker, timeout time.Duration) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(timeout)
	for broker.PendingRequests() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-ticker.C:
		}
	}
}

func sampleOption(payoutType domain.PayoutType, strike float64) domain.OptionSpec {
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

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// InitReader loads <env>.env and returns the role, "local" by default
func InitReader() string {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}

	if len(os.Args) > 2 {
		return os.Args[2]
	}
	return roleLocal
}
