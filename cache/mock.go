package cache

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/stratix-ai/stratix/store"
)

// MockCacheService is an in-memory implementation of CacheService for testing
// consumers without a store.
type MockCacheService struct {
	mu      sync.RWMutex
	entries map[string]*mockEntry
}

type mockEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMockCacheService creates a new MockCacheService.
func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		entries: make(map[string]*mockEntry),
	}
}

func (m *MockCacheService) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MockCacheService) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if !json.Valid(value) {
		return newError("set", key, "value is not valid JSON", nil)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &mockEntry{
		value:     append([]byte(nil), value...),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MockCacheService) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MockCacheService) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*mockEntry)
	return nil
}

func (m *MockCacheService) InvalidatePattern(_ context.Context, pattern string) error {
	matcher, err := compileMockPattern(strings.ReplaceAll(pattern, "*", "%"))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if matcher.MatchString(key) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MockCacheService) GetOrSet(ctx context.Context, key string, producer Producer, ttl time.Duration) ([]byte, error) {
	if value, ok, err := m.Get(ctx, key); err != nil || ok {
		return value, err
	}

	produced, err := producer(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.Set(ctx, key, produced, ttl); err != nil {
		return nil, err
	}
	return produced, nil
}

func (m *MockCacheService) GetStats(_ context.Context) (*store.CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &store.CacheStats{}
	now := time.Now()
	for key, entry := range m.entries {
		stats.TotalEntries++
		if !entry.expiresAt.After(now) {
			stats.ExpiredEntries++
		}
		stats.MemoryUsage += int64(len(key) + len(entry.value))
	}
	return stats, nil
}

// Size returns the number of entries held (for testing).
func (m *MockCacheService) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func compileMockPattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// Ensure MockCacheService implements CacheService.
var _ CacheService = (*MockCacheService)(nil)
