package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	limiter := NewRedisLimiter(client, "booking_create")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "user-1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// other keys have their own window
	allowed, err = limiter.Allow(ctx, "user-2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.True(t, s.Exists("booking_create:user-1"))
	s.FastForward(time.Minute + time.Second)

	allowed, err = limiter.Allow(ctx, "user-1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "k", 1, time.Minute)
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "k", 1, time.Minute)
	assert.False(t, allowed)

	now = now.Add(2 * time.Minute)
	allowed, _ = limiter.Allow(ctx, "k", 1, time.Minute)
	assert.True(t, allowed)
}
