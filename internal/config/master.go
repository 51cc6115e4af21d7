package config

import "os"

type AppConfig struct {
	DebugMode      bool
	PricingCfg     *PricingCfg
	WorkerCfg      *WorkerCfg
	HttpCfg        *HttpCfg
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		PricingCfg:     NewPricingCfg(),
		WorkerCfg:      NewWorkerCfg(),
		HttpCfg:        NewHttpCfg(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
	}
}
