package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type payload struct {
	Name string `json:"name"`
}

func TestAside_CachesLoaderResult(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	load := func(dest *payload) func() error {
		return func() error {
			calls++
			dest.Name = "loaded"
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, load(&first)))
	assert.Equal(t, "loaded", first.Name)
	assert.Equal(t, 1, calls)

	// Second read must come from the cache, not the loader.
	var second payload
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, func() error {
		calls++
		return errors.New("loader must not run on a cache hit")
	}))
	assert.Equal(t, "loaded", second.Name)
	assert.Equal(t, 1, calls)
}

func TestAside_LoaderErrorPropagates(t *testing.T) {
	withMiniredis(t)

	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		return errors.New("boom")
	})
	require.Error(t, err)
}

func TestAside_WorksWithoutRedis(t *testing.T) {
	SetClient(nil)

	calls := 0
	var dest payload
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "k", &dest, time.Minute, func() error {
			calls++
			dest.Name = "loaded"
			return nil
		}))
	}
	assert.Equal(t, 2, calls, "without redis every read goes to the loader")
}

func TestInvalidate(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	var dest payload
	require.NoError(t, Aside(ctx, UserKey(7), &dest, time.Minute, func() error {
		dest.Name = "v1"
		return nil
	}))

	InvalidateUser(ctx, 7)

	calls := 0
	require.NoError(t, Aside(ctx, UserKey(7), &dest, time.Minute, func() error {
		calls++
		dest.Name = "v2"
		return nil
	}))
	assert.Equal(t, 1, calls, "invalidation must force a reload")
	assert.Equal(t, "v2", dest.Name)
}
