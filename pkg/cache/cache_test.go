package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheAlwaysMisses(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var out int
	assert.False(t, c.Get(ctx, "k", &out))
	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	assert.NoError(t, c.Forget(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestRememberCallsThroughWhenDisabled(t *testing.T) {
	calls := 0
	fn := func() (int, error) { calls++; return 7, nil }

	for i := 0; i < 2; i++ {
		v, err := Remember(context.Background(), &Cache{}, "counts", time.Minute, fn)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 2, calls)

	_, err := Remember(context.Background(), nil, "counts", time.Minute, func() (int, error) {
		return 0, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}
