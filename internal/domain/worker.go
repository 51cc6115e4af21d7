package domain

import "time"

// WorkerInfo represents information about a worker
type WorkerInfo struct {
	ID            string    `json:"id"`
	Hostname      string    `json:"hostname"`
	PoolSize      int       `json:"pool_size"`
	Processed     uint64    `json:"processed"`
	Dropped       uint64    `json:"dropped"`
	CacheSize     int       `json:"cache_size"`
	CacheClears   uint64    `json:"cache_clears"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	IsActive      bool      `json:"is_active"`
}
