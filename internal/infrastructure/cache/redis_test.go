package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheUnreachable(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx := context.Background()
	require.Error(t, c.Ping(ctx))

	var dest map[string]any
	found, err := c.Get(ctx, "catalog:author:1", &dest)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisCacheSetRejectsUnencodable(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1", "", 0)
	defer c.Close()

	err := c.Set(context.Background(), "k", make(chan int), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis encode")
}

func TestRedisCacheDeleteNothing(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1", "", 0)
	defer c.Close()

	assert.NoError(t, c.Delete(context.Background()))
}

func TestRedisCacheNilClient(t *testing.T) {
	assert.Error(t, (&RedisCache{}).Ping(context.Background()))
	assert.NoError(t, (&RedisCache{}).Close())
}
