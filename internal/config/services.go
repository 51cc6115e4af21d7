package config

import (
	"math"
	"os"
	"strconv"
	"time"
)

const (
	DefaultConfidenceLevel = 0.96
	DefaultToleranceRate   = 0.01
	DefaultBatchSize       = 100
	DefaultCacheCapacity   = 200
	DefaultMaxBatchSize    = 10000
	DefaultPoolSize        = 4

	defaultCleanupIntervalSec   = 60
	defaultHeartbeatIntervalSec = 30
)

// PricingCfg holds the coordinator defaults applied when a job does not set its own
type PricingCfg struct {
	ConfidenceLevel float64
	ToleranceRate   float64
	BatchSize       int
	MaxBatchSize    int
	CleanupInterval time.Duration
}

func NewPricingCfg() *PricingCfg {
	return &PricingCfg{
		ConfidenceLevel: getFloatEnv("PRICING_CONFIDENCE_LEVEL", DefaultConfidenceLevel),
		ToleranceRate:   getFloatEnv("PRICING_TOLERANCE_RATE", DefaultToleranceRate),
		BatchSize:       getPositiveIntEnv("PRICING_BATCH_SIZE", DefaultBatchSize),
		MaxBatchSize:    getPositiveIntEnv("PRICING_MAX_BATCH_SIZE", DefaultMaxBatchSize),
		CleanupInterval: time.Duration(getPositiveIntEnv("WORKER_CLEANUP_INTERVAL_SEC", defaultCleanupIntervalSec)) * time.Second,
	}
}

type WorkerCfg struct {
	PoolSize          int
	CacheCapacity     int
	HeartbeatInterval time.Duration
}

func NewWorkerCfg() *WorkerCfg {
	return &WorkerCfg{
		PoolSize:          getPositiveIntEnv("WORKER_POOL_SIZE", DefaultPoolSize),
		CacheCapacity:     getPositiveIntEnv("WORKER_CACHE_CAPACITY", DefaultCacheCapacity),
		HeartbeatInterval: time.Duration(getPositiveIntEnv("HEARTBEAT_INTERVAL_SEC", defaultHeartbeatIntervalSec)) * time.Second,
	}
}

type HttpCfg struct {
	Port int
}

func NewHttpCfg() *HttpCfg {
	return &HttpCfg{
		Port: getIntEnv("HTTP_PORT", 8082),
	}
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getIntEnv gets an environment variable as an integer with a fallback
func getIntEnv(key string, fallback int) int {
	varInt, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return varInt
}

// getPositiveIntEnv is getIntEnv that also falls back on zero or negative values
func getPositiveIntEnv(key string, fallback int) int {
	if varInt := getIntEnv(key, fallback); varInt > 0 {
		return varInt
	}
	return fallback
}

// getFloatEnv falls back on unparsable, NaN and infinite values
func getFloatEnv(key string, fallback float64) float64 {
	varFloat, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || math.IsNaN(varFloat) || math.IsInf(varFloat, 0) {
		return fallback
	}
	return varFloat
}
