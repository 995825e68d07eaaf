package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "sportsync:teams:pfb", Key("teams", "pfb"))
	assert.Equal(t, "sportsync:job", Key("job"))
}

// Run with: TEST_REDIS_ADDR=localhost:6379 go test ./internal/cache/...
func setupTestCache(t *testing.T) *RedisCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis integration test")
	}
	c, err := NewRedisCache(Config{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	key := Key("test", "teams")

	require.NoError(t, c.SetJSON(ctx, key, []string{"ALA", "UGA"}, time.Minute))

	var codes []string
	require.NoError(t, c.GetJSON(ctx, key, &codes))
	assert.Equal(t, []string{"ALA", "UGA"}, codes)

	require.NoError(t, c.Delete(ctx, key))
	assert.ErrorIs(t, c.GetJSON(ctx, key, &codes), ErrCacheMiss)
}
