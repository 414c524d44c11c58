package xconnpool

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_AcquireRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	p, err := NewRedisFromConfig(RedisConfig{Addr: mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	err = With(context.Background(), Pool[*redis.Conn](p), func(conn *redis.Conn) {
		require.NoError(t, conn.Set(context.Background(), "session:1", "open", 0).Err())
	})
	require.NoError(t, err)

	got, err := p.Client().Get(context.Background(), "session:1").Result()
	require.NoError(t, err)
	assert.Equal(t, "open", got)
}

func TestRedis_AcquireFailsWhenServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	p, err := NewRedisFromConfig(RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	mr.Close()
	_, err = p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAcquire)
}

func TestRedis_Config(t *testing.T) {
	_, err := NewRedisFromConfig(RedisConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRedisFromConfig(RedisConfig{Addr: "localhost:6379", PoolSize: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRedis(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRedis_BorrowedClientNotClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	p, err := NewRedis(client)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), ErrClosed)

	_, err = p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, client.Ping(context.Background()).Err())
}
