package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first mark returns true", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "welcome:u1", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("second mark returns false", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "welcome:u2", time.Minute)
		require.NoError(t, err)
		require.True(t, marked)

		marked, err = store.MarkProcessed(ctx, "welcome:u2", time.Minute)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("expired entry can be marked again", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "welcome:u3", time.Millisecond)
		require.NoError(t, err)
		require.True(t, marked)

		time.Sleep(5 * time.Millisecond)

		marked, err = store.MarkProcessed(ctx, "welcome:u3", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "welcome:u1", time.Minute)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "welcome:u1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "short", time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "long", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
