package xconnpool

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// RedisConfig Redis 连接池配置。
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	// PoolSize 底层连接数上限，0 使用 go-redis 默认值。
	PoolSize int `koanf:"pool_size"`
}

// Redis 基于 go-redis 的连接池，借出独占的 *redis.Conn。
// 容量由客户端的 PoolSize 限制。
type Redis struct {
	client *redis.Client
	owned  bool
	closed atomic.Bool
}

// NewRedis 使用已有客户端，Close 不会关闭该客户端。
func NewRedis(client *redis.Client) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil redis client", ErrInvalidConfig)
	}
	return &Redis{client: client}, nil
}

// NewRedisFromConfig 按配置创建客户端，Close 时一并关闭。
func NewRedisFromConfig(cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis addr is empty", ErrInvalidConfig)
	}
	if cfg.PoolSize < 0 {
		return nil, fmt.Errorf("%w: negative pool_size", ErrInvalidConfig)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	return &Redis{client: client, owned: true}, nil
}

// Acquire 借出一条连接并 PING 确认可用。
func (p *Redis) Acquire(ctx context.Context) (*redis.Conn, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	conn := p.client.Conn()
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close() //nolint:errcheck // 返回 ping 错误
		return nil, fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	return conn, nil
}

// Release 把连接归还给客户端连接池。
func (p *Redis) Release(conn *redis.Conn) {
	if conn == nil {
		return
	}
	_ = conn.Close() //nolint:errcheck // 归还无失败路径
}

// Client 返回底层客户端。
func (p *Redis) Client() *redis.Client {
	return p.client
}

// Close 关闭连接池。只有 NewRedisFromConfig 创建的客户端会被关闭。
func (p *Redis) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if p.owned {
		return p.client.Close()
	}
	return nil
}
