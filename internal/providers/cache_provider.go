package providers

import (
	"soulhealing/internal/structures"
	"strconv"
	"sync"
	"unsafe"

	"github.com/coocood/freecache"
)

// ListCacheInterface caches rendered list responses grouped by collection.
// Keys carry the collection generation, so a key taken before a write can
// never serve data after the collection was invalidated.
type ListCacheInterface interface {
	Key(collection, query string) string
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	// Invalidate drops the given collections, or everything when called
	// without arguments.
	Invalidate(collections ...string)
}

type ListCache struct {
	cache *freecache.Cache
	ttl   int

	mu          sync.RWMutex
	epoch       uint64
	generations map[string]uint64
}

func NewListCache(conf *structures.Config, logger Logger) ListCacheInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "List cache disabled")
		return &noopListCache{}
	}

	ttl := max(conf.Cache.TTL, 1)
	logger.Infof(TypeApp, "List cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &ListCache{
		cache:       freecache.NewCache(conf.Cache.Size * 1024 * 1024),
		ttl:         ttl,
		generations: make(map[string]uint64),
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys, so the result is never written to.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *ListCache) Key(collection, query string) string {
	c.mu.RLock()
	epoch, gen := c.epoch, c.generations[collection]
	c.mu.RUnlock()

	return collection + "/" + strconv.FormatUint(epoch, 10) + "." + strconv.FormatUint(gen, 10) + "/" + query
}

func (c *ListCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *ListCache) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

func (c *ListCache) Invalidate(collections ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(collections) == 0 {
		c.epoch++
		c.cache.Clear()
		return
	}
	// stale entries age out through the TTL or LRU eviction
	for _, collection := range collections {
		c.generations[collection]++
	}
}

type noopListCache struct{}

func (n *noopListCache) Key(collection, query string) string { return collection + "/" + query }
func (n *noopListCache) Get(_ string) ([]byte, bool)         { return nil, false }
func (n *noopListCache) Set(_ string, _ []byte)              {}
func (n *noopListCache) Invalidate(_ ...string)              {}
