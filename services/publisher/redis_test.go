package publisher

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	probe := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := probe.Ping(ctx).Err(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	defer probe.Close()

	stream := "olxwatch:matches:test"
	probe.Del(ctx, stream)

	p := NewRedisPublisher(ctx, "localhost:6379", 0, stream, 10)
	defer p.Close()

	err := p.Publish([]byte(`{"id":"123456","title":"iPhone 11"}`))
	require.NoError(t, err)

	entries, err := probe.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Values["offer"], "123456")

	probe.Del(ctx, stream)
}
