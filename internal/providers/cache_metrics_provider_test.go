package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type cacheMetricsTestMetrics struct {
	hits   int
	misses int
}

func (m *cacheMetricsTestMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *cacheMetricsTestMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *cacheMetricsTestMetrics) IncCacheHits()                                    { m.hits++ }
func (m *cacheMetricsTestMetrics) IncCacheMisses()                                  { m.misses++ }
func (m *cacheMetricsTestMetrics) ObserveStorageDuration(_, _ string, _ time.Duration, _ error) {
}
func (m *cacheMetricsTestMetrics) ObserveBackupDuration(_ string, _ time.Duration) {}
func (m *cacheMetricsTestMetrics) SetBackupRecords(_ string, _ int)                {}

type recordingListCache struct {
	data          map[string][]byte
	invalidations [][]string
}

func (c *recordingListCache) Key(collection, query string) string { return collection + "/" + query }
func (c *recordingListCache) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *recordingListCache) Set(key string, value []byte) { c.data[key] = value }
func (c *recordingListCache) Invalidate(collections ...string) {
	c.invalidations = append(c.invalidations, collections)
}

func newInstrumented(data map[string][]byte) (*instrumentedListCache, *recordingListCache, *cacheMetricsTestMetrics) {
	inner := &recordingListCache{data: data}
	metrics := &cacheMetricsTestMetrics{}
	return &instrumentedListCache{inner: inner, metrics: metrics, logger: &cacheTestLogger{}}, inner, metrics
}

func TestInstrumentedListCache_CountsLookups(t *testing.T) {
	cache, _, metrics := newInstrumented(map[string][]byte{"notes/*": []byte("[]")})

	cache.Get("notes/*")   // hit
	cache.Get("people/*")  // miss
	cache.Get("notes/*")   // hit
	cache.Get("notes/1")   // miss
	cache.Get("people/12") // miss

	assert.Equal(t, 2, metrics.hits)
	assert.Equal(t, 3, metrics.misses)
}

func TestInstrumentedListCache_Delegates(t *testing.T) {
	cache, inner, metrics := newInstrumented(map[string][]byte{})

	key := cache.Key("people", "3")
	assert.Equal(t, "people/3", key)

	cache.Set(key, []byte(`[{"id":3}]`))
	assert.Equal(t, []byte(`[{"id":3}]`), inner.data[key])

	cache.Invalidate("people")
	cache.Invalidate()
	assert.Equal(t, [][]string{{"people"}, nil}, inner.invalidations)
	assert.Zero(t, metrics.hits+metrics.misses)
}

func TestNewInstrumentedListCache(t *testing.T) {
	disabled := NewInstrumentedListCache(cacheConfig(false, 1, 5), &cacheTestLogger{}, &cacheMetricsTestMetrics{})
	assert.IsType(t, &noopListCache{}, disabled)

	enabled := NewInstrumentedListCache(cacheConfig(true, 1, 5), &cacheTestLogger{}, &cacheMetricsTestMetrics{})
	assert.IsType(t, &instrumentedListCache{}, enabled)
}
