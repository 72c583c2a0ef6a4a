package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCacheService(t *testing.T) {
	ctx := context.Background()
	mock := NewMockCacheService()

	t.Run("SetGetDelete", func(t *testing.T) {
		require.NoError(t, mock.Set(ctx, "key", []byte(`1`), time.Minute))

		value, ok, err := mock.Get(ctx, "key")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`1`), value)

		require.NoError(t, mock.Delete(ctx, "key"))
		_, ok, err = mock.Get(ctx, "key")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("InvalidatePattern", func(t *testing.T) {
		require.NoError(t, mock.Set(ctx, "user:1:profile", []byte(`1`), time.Minute))
		require.NoError(t, mock.Set(ctx, "user:1:settings", []byte(`2`), time.Minute))
		require.NoError(t, mock.Set(ctx, "user:2:profile", []byte(`3`), time.Minute))

		require.NoError(t, mock.InvalidatePattern(ctx, "user:1:*"))

		_, ok, _ := mock.Get(ctx, "user:1:profile")
		assert.False(t, ok)
		_, ok, _ = mock.Get(ctx, "user:2:profile")
		assert.True(t, ok)
	})

	t.Run("GetOrSet", func(t *testing.T) {
		require.NoError(t, mock.Clear(ctx))

		calls := 0
		value, err := mock.GetOrSet(ctx, "key", func(context.Context) ([]byte, error) {
			calls++
			return []byte(`"v"`), nil
		}, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, []byte(`"v"`), value)

		_, err = mock.GetOrSet(ctx, "key", func(context.Context) ([]byte, error) {
			calls++
			return nil, nil
		}, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("Stats", func(t *testing.T) {
		require.NoError(t, mock.Clear(ctx))
		require.NoError(t, mock.Set(ctx, "a", []byte(`1`), time.Minute))

		stats, err := mock.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalEntries)
	})
}
