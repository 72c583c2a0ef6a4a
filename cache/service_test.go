package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratix-ai/stratix/internal/profile"
	"github.com/stratix-ai/stratix/store"
	"github.com/stratix-ai/stratix/store/teststore"
)

// testClock is a settable clock for driving TTL expiry without sleeping.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, cfg Config) (*Service, *teststore.Driver, *testClock) {
	t.Helper()

	driver := teststore.New()
	st := store.New(driver, &profile.Profile{Mode: "dev", Driver: "sqlite"})
	t.Cleanup(func() { _ = st.Close() })

	service := NewService(st, cfg)
	clock := newTestClock()
	service.now = clock.Now
	return service, driver, clock
}

func TestService_BasicOperations(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, DefaultConfig())

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, service.Set(ctx, "key1", []byte(`"value1"`), 0))

		value, ok, err := service.Get(ctx, "key1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`"value1"`), value)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		value, ok, err := service.Get(ctx, "nonexistent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, value)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, _, err := service.Get(ctx, "")
		var cacheErr *Error
		require.ErrorAs(t, err, &cacheErr)
		assert.Equal(t, ErrCodeCacheError, cacheErr.Code)
	})
}

// The stored value must be valid JSON so every driver accepts the same
// payloads; the postgres column is JSONB and would otherwise reject what
// sqlite stores happily.
func TestService_SetRejectsInvalidJSON(t *testing.T) {
	ctx := context.Background()
	service, driver, _ := newTestService(t, DefaultConfig())

	err := service.Set(ctx, "key", []byte(`not-json`), 0)
	var cacheErr *Error
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, ErrCodeCacheError, cacheErr.Code)
	assert.Equal(t, "set", cacheErr.Op)
	assert.Equal(t, 0, driver.Size())
}

func TestService_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	service, driver, clock := newTestService(t, DefaultConfig())

	require.NoError(t, service.Set(ctx, "expiring", []byte(`1`), time.Second))

	// Live before the TTL elapses.
	value, ok, err := service.Get(ctx, "expiring")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`1`), value)

	clock.Advance(2 * time.Second)

	// Expired: reported absent and the row is deleted lazily.
	value, ok, err = service.Get(ctx, "expiring")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
	assert.Equal(t, 0, driver.Size())
}

func TestService_OverwriteResetsExpiry(t *testing.T) {
	ctx := context.Background()
	service, _, clock := newTestService(t, DefaultConfig())

	require.NoError(t, service.Set(ctx, "key", []byte(`"v1"`), 100*time.Second))
	require.NoError(t, service.Set(ctx, "key", []byte(`"v2"`), 5*time.Second))

	value, ok, err := service.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`"v2"`), value)

	// Entry expires according to the second TTL, not the first.
	clock.Advance(6 * time.Second)
	_, ok, err = service.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	service, _, clock := newTestService(t, Config{DefaultTTL: 10 * time.Second})

	require.NoError(t, service.Set(ctx, "key", []byte(`true`), 0))

	clock.Advance(9 * time.Second)
	_, ok, err := service.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok, err = service.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, driver, _ := newTestService(t, DefaultConfig())

	require.NoError(t, service.Set(ctx, "key", []byte(`1`), 0))
	require.NoError(t, service.Delete(ctx, "key"))
	assert.Equal(t, 0, driver.Size())

	// Deleting an absent key neither fails nor changes the store.
	require.NoError(t, service.Delete(ctx, "key"))
	assert.Equal(t, 0, driver.Size())
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, DefaultConfig())

	require.NoError(t, service.Set(ctx, "a", []byte(`1`), 0))
	require.NoError(t, service.Set(ctx, "b", []byte(`2`), 0))

	require.NoError(t, service.Clear(ctx))

	for _, key := range []string{"a", "b"} {
		_, ok, err := service.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestService_InvalidatePattern(t *testing.T) {
	ctx := context.Background()

	t.Run("SQLWildcard", func(t *testing.T) {
		service, _, _ := newTestService(t, DefaultConfig())
		require.NoError(t, service.Set(ctx, "a:1", []byte(`1`), 0))
		require.NoError(t, service.Set(ctx, "a:2", []byte(`2`), 0))
		require.NoError(t, service.Set(ctx, "b:1", []byte(`3`), 0))

		require.NoError(t, service.InvalidatePattern(ctx, "a:%"))

		_, ok, err := service.Get(ctx, "a:1")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = service.Get(ctx, "a:2")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = service.Get(ctx, "b:1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("StarAlias", func(t *testing.T) {
		service, _, _ := newTestService(t, DefaultConfig())
		require.NoError(t, service.Set(ctx, "brand:123:dna", []byte(`1`), 0))
		require.NoError(t, service.Set(ctx, "brand:123:feed", []byte(`2`), 0))
		require.NoError(t, service.Set(ctx, "brand:456:dna", []byte(`3`), 0))

		require.NoError(t, service.InvalidatePattern(ctx, "brand:123:*"))

		_, ok, err := service.Get(ctx, "brand:123:dna")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = service.Get(ctx, "brand:456:dna")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		service, _, _ := newTestService(t, DefaultConfig())
		require.NoError(t, service.Set(ctx, "Brand:1:dna", []byte(`1`), 0))

		require.NoError(t, service.InvalidatePattern(ctx, "brand:%"))

		_, ok, err := service.Get(ctx, "Brand:1:dna")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_GetOrSet(t *testing.T) {
	ctx := context.Background()

	t.Run("HitSkipsProducer", func(t *testing.T) {
		service, _, _ := newTestService(t, DefaultConfig())
		require.NoError(t, service.Set(ctx, "key", []byte(`"cached"`), 0))

		calls := 0
		value, err := service.GetOrSet(ctx, "key", func(context.Context) ([]byte, error) {
			calls++
			return []byte(`"produced"`), nil
		}, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte(`"cached"`), value)
		assert.Equal(t, 0, calls)
	})

	t.Run("MissInvokesProducerOnce", func(t *testing.T) {
		service, _, clock := newTestService(t, DefaultConfig())

		calls := 0
		value, err := service.GetOrSet(ctx, "key", func(context.Context) ([]byte, error) {
			calls++
			return []byte(`"produced"`), nil
		}, 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, []byte(`"produced"`), value)
		assert.Equal(t, 1, calls)

		// The result was stored with the given TTL.
		value, ok, err := service.Get(ctx, "key")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`"produced"`), value)

		clock.Advance(31 * time.Second)
		_, ok, err = service.Get(ctx, "key")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ProducerErrorStoresNothing", func(t *testing.T) {
		service, driver, _ := newTestService(t, DefaultConfig())

		wantErr := assert.AnError
		_, err := service.GetOrSet(ctx, "key", func(context.Context) ([]byte, error) {
			return nil, wantErr
		}, 0)
		require.ErrorIs(t, err, wantErr)
		assert.Equal(t, 0, driver.Size())
	})
}

func TestService_GetOrSet_SingleFlight(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, DefaultConfig())

	const callers = 16
	var calls atomic.Int64
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)

	release := make(chan struct{})
	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			<-release

			value, err := service.GetOrSet(ctx, "hot", func(context.Context) ([]byte, error) {
				calls.Add(1)
				time.Sleep(50 * time.Millisecond)
				return []byte(`"shared"`), nil
			}, 0)
			assert.NoError(t, err)
			assert.Equal(t, []byte(`"shared"`), value)
		}()
	}

	started.Wait()
	close(release)
	done.Wait()

	// Concurrent misses are collapsed: callers entering during the flight
	// share the first producer's result.
	assert.LessOrEqual(t, calls.Load(), int64(2))
}

func TestService_GetStats(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, DefaultConfig())

	require.NoError(t, service.Set(ctx, "a", []byte(`1`), time.Hour))
	require.NoError(t, service.Set(ctx, "b", []byte(`2`), time.Hour))

	stats, err := service.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEntries)
	assert.Equal(t, int64(0), stats.ExpiredEntries)
	assert.Greater(t, stats.MemoryUsage, int64(0))
}

func TestService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	service, driver, _ := newTestService(t, DefaultConfig())
	driver.Err = assert.AnError

	var cacheErr *Error

	_, _, err := service.Get(ctx, "key")
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, ErrCodeCacheError, cacheErr.Code)
	assert.Equal(t, "get", cacheErr.Op)
	require.ErrorIs(t, err, assert.AnError)

	err = service.Set(ctx, "key", []byte(`1`), 0)
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, "set", cacheErr.Op)

	err = service.Delete(ctx, "key")
	require.ErrorAs(t, err, &cacheErr)

	err = service.Clear(ctx)
	require.ErrorAs(t, err, &cacheErr)

	err = service.InvalidatePattern(ctx, "a:%")
	require.ErrorAs(t, err, &cacheErr)

	_, err = service.GetStats(ctx)
	require.ErrorAs(t, err, &cacheErr)
}

// The concrete scenario from the service contract: a profile cached for 60
// seconds disappears, row and all, once 61 seconds have passed.
func TestService_ProfileScenario(t *testing.T) {
	ctx := context.Background()
	service, driver, clock := newTestService(t, DefaultConfig())

	require.NoError(t, Set(ctx, service, "user:42:profile", map[string]string{"name": "Ada"}, 60*time.Second))

	profile, ok, err := Get[map[string]string](ctx, service, "user:42:profile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"name": "Ada"}, profile)

	clock.Advance(61 * time.Second)

	_, ok, err = Get[map[string]string](ctx, service, "user:42:profile")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, driver.Size())
}
