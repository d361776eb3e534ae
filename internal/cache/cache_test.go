package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNilClientIsAMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	v, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.Error(t, c.Ping(ctx))

	var dst map[string]string
	assert.False(t, c.GetJSON(ctx, "k", &dst))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	// nothing listens on port 1
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewFromClient(rdb, zap.NewNop())
	defer c.Close()

	ctx := context.Background()
	v, err := c.Get(ctx, UserKey("u1"))
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, c.Set(ctx, UserKey("u1"), []byte("{}"), time.Minute))
	assert.NoError(t, c.Delete(ctx, UserKey("u1")))
	c.SetJSON(ctx, UserKey("u1"), map[string]string{"a": "b"}, time.Minute)
	assert.Error(t, c.Ping(ctx))
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "reviewhub:user:abc", UserKey("abc"))
}
