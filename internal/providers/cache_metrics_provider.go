package providers

import "soulhealing/internal/structures"

// instrumentedListCache counts hits and misses on every lookup.
type instrumentedListCache struct {
	inner   ListCacheInterface
	metrics MetricsProviderInterface
	logger  Logger
}

func (c *instrumentedListCache) Key(collection, query string) string {
	return c.inner.Key(collection, query)
}

func (c *instrumentedListCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *instrumentedListCache) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *instrumentedListCache) Invalidate(collections ...string) {
	if len(collections) == 0 {
		c.logger.Debugf(TypeApp, "List cache flushed")
	} else {
		c.logger.Debugf(TypeApp, "List cache invalidated for %v", collections)
	}
	c.inner.Invalidate(collections...)
}

// NewInstrumentedListCache returns the list cache wrapped with hit/miss
// counters. A disabled cache stays unwrapped so it does not report a miss
// for every request.
func NewInstrumentedListCache(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) ListCacheInterface {
	inner := NewListCache(conf, logger)
	if _, ok := inner.(*noopListCache); ok {
		return inner
	}
	return &instrumentedListCache{
		inner:   inner,
		metrics: metrics,
		logger:  logger,
	}
}
