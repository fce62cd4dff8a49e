package testutil

import (
	"fmt"
	"soulhealing/internal/providers"
	"strings"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// HasMessage reports whether any entry at level contains substr.
func (m *MockLogger) HasMessage(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu              sync.Mutex
	StorageOps      []StorageOp
	BackupOps       []string
	BackupRecords   map[string]int
	CacheHitCount   int
	CacheMissCount  int
	RequestCounters map[string]int
}

type StorageOp struct {
	Driver    string
	Operation string
	Err       error
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		BackupRecords:   make(map[string]int),
		RequestCounters: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCounters[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHitCount++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMissCount++
}

func (m *MockMetrics) ObserveStorageDuration(driver, operation string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageOps = append(m.StorageOps, StorageOp{Driver: driver, Operation: operation, Err: err})
}

func (m *MockMetrics) ObserveBackupDuration(operation string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackupOps = append(m.BackupOps, operation)
}

func (m *MockMetrics) SetBackupRecords(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackupRecords[kind] = count
}

// MockListCache implements providers.ListCacheInterface without
// generations: keys are "collection/query".
type MockListCache struct {
	mu            sync.Mutex
	Data          map[string][]byte
	Invalidations [][]string
}

func NewMockListCache() *MockListCache {
	return &MockListCache{Data: make(map[string][]byte)}
}

func (m *MockListCache) Key(collection, query string) string {
	return collection + "/" + query
}

func (m *MockListCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockListCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockListCache) Invalidate(collections ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidations = append(m.Invalidations, collections)
	if len(collections) == 0 {
		m.Data = make(map[string][]byte)
		return
	}
	for key := range m.Data {
		for _, collection := range collections {
			if strings.HasPrefix(key, collection+"/") {
				delete(m.Data, key)
			}
		}
	}
}

// MockCompressor implements document.Compressor with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}
