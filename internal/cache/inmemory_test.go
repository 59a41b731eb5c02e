package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryCacheAdd(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	assert.True(t, c.Add(ctx, "k", 1, time.Minute))
	assert.False(t, c.Add(ctx, "k", 2, time.Minute))

	c.Delete(ctx, "k")
	assert.True(t, c.Add(ctx, "k", 3, time.Minute))

	assert.True(t, c.Add(ctx, "other", 1, time.Minute))
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	assert.True(t, c.Add(ctx, "short", "v", 10*time.Millisecond))
	assert.False(t, c.Add(ctx, "short", "v", time.Minute))

	assert.Eventually(t, func() bool {
		return c.Add(ctx, "short", "again", time.Minute)
	}, time.Second, 5*time.Millisecond)

	assert.False(t, c.Add(ctx, "short", "later", time.Minute))
}
