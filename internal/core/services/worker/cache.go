package worker

import (
	"sync/atomic"

	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
)

// GeneratorFactory builds the path generator for an option
type GeneratorFactory func(option domain.OptionSpec) secondary.PathGenerator

// GeneratorCache maps reply channels to path generators. When an insert pushes
// it past its capacity the whole map is dropped, not just the oldest entry.
// Lookups are single goroutine; the counters may be read concurrently.
type GeneratorCache struct {
	capacity   int
	generators map[string]secondary.PathGenerator
	factory    GeneratorFactory

	size   atomic.Int64
	hits   atomic.Uint64
	misses atomic.Uint64
	clears atomic.Uint64
}

func NewGeneratorCache(capacity int, factory GeneratorFactory) *GeneratorCache {
	return &GeneratorCache{
		capacity:   capacity,
		generators: make(map[string]secondary.PathGenerator),
		factory:    factory,
	}
}

// Get returns the generator cached under key, building it from option on a miss
func (c *GeneratorCache) Get(key string, option domain.OptionSpec) secondary.PathGenerator {
	generator, ok := c.generators[key]
	if ok {
		c.hits.Add(1)
		return generator
	}

	c.misses.Add(1)
	generator = c.factory(option)
	c.generators[key] = generator

	if len(c.generators) > c.capacity {
		c.generators = make(map[string]secondary.PathGenerator)
		c.clears.Add(1)
	}
	c.size.Store(int64(len(c.generators)))

	return generator
}

func (c *GeneratorCache) Len() int {
	return int(c.size.Load())
}

// CacheStats is a point-in-time view of the cache counters
type CacheStats struct {
	Size   int
	Hits   uint64
	Misses uint64
	Clears uint64
}

func (c *GeneratorCache) Stats() CacheStats {
	return CacheStats{
		Size:   c.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Clears: c.clears.Load(),
	}
}
