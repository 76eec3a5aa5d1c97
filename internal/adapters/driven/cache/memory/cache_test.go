package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RefreshOnceWithinTTL(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	calls := 0
	refresh := func(context.Context) (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.GetOrRefresh(ctx, "k", time.Minute, refresh)
		require.NoError(t, err)
		assert.Equal(t, "value", got)
	}
	assert.Equal(t, 1, calls)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	cache := NewCache()
	now := time.Now()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	calls := 0
	refresh := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	got, err := cache.GetOrRefresh(ctx, "k", time.Minute, refresh)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	now = now.Add(2 * time.Minute)
	got, err = cache.GetOrRefresh(ctx, "k", time.Minute, refresh)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestCache_RefreshErrorNotCached(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	_, err := cache.GetOrRefresh(ctx, "k", time.Minute, func(context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	got, err := cache.GetOrRefresh(ctx, "k", time.Minute, func(context.Context) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestCache_Invalidate(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	calls := 0
	refresh := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	_, err := cache.GetOrRefresh(ctx, "k", time.Minute, refresh)
	require.NoError(t, err)

	cache.Invalidate("k")

	got, err := cache.GetOrRefresh(ctx, "k", time.Minute, refresh)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	a, err := cache.GetOrRefresh(ctx, "a", time.Minute, func(context.Context) (any, error) { return "a", nil })
	require.NoError(t, err)
	b, err := cache.GetOrRefresh(ctx, "b", time.Minute, func(context.Context) (any, error) { return "b", nil })
	require.NoError(t, err)

	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
}
