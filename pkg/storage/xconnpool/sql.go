package xconnpool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker/v2"
)

// SQLConfig *sql.DB 连接池配置。
type SQLConfig struct {
	// Driver 驱动名，需由可执行程序注册（pgx、postgres、sqlite3）。
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// PingTimeout 构造时连通性检查的超时，0 表示跳过检查。
	PingTimeout time.Duration `koanf:"ping_timeout"`

	// AcquireAttempts 获取连接的总尝试次数（含首次）。
	AcquireAttempts uint          `koanf:"acquire_attempts"`
	AcquireDelay    time.Duration `koanf:"acquire_delay"`

	// BreakerFailures 连续失败多少次后熔断。
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// DefaultSQLConfig 返回默认配置。
func DefaultSQLConfig(driver, dsn string) SQLConfig {
	return SQLConfig{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
		PingTimeout:     5 * time.Second,
		AcquireAttempts: 3,
		AcquireDelay:    50 * time.Millisecond,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Validate 校验配置，所有错误满足 errors.Is(err, ErrInvalidConfig)。
func (c SQLConfig) Validate() error {
	switch {
	case c.Driver == "":
		return fmt.Errorf("%w: driver is empty", ErrInvalidConfig)
	case c.DSN == "":
		return fmt.Errorf("%w: dsn is empty", ErrInvalidConfig)
	case c.MaxOpenConns <= 0:
		return fmt.Errorf("%w: max_open_conns must be positive", ErrInvalidConfig)
	case c.MaxIdleConns < 0:
		return fmt.Errorf("%w: max_idle_conns is negative", ErrInvalidConfig)
	case c.MaxIdleConns > c.MaxOpenConns:
		return fmt.Errorf("%w: max_idle_conns exceeds max_open_conns", ErrInvalidConfig)
	case c.ConnMaxLifetime < 0 || c.ConnMaxIdleTime < 0:
		return fmt.Errorf("%w: negative connection lifetime", ErrInvalidConfig)
	case c.PingTimeout < 0 || c.AcquireDelay < 0 || c.BreakerTimeout < 0:
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	case c.AcquireAttempts == 0:
		return fmt.Errorf("%w: acquire_attempts must be positive", ErrInvalidConfig)
	case c.BreakerFailures == 0:
		return fmt.Errorf("%w: breaker_failures must be positive", ErrInvalidConfig)
	}
	return nil
}

// SQL 基于 *sql.DB 的连接池，借出 *sql.Conn。
//
// 容量由 MaxOpenConns 限制，池空时 db.Conn 阻塞等待，与 Fixed 行为一致。
type SQL struct {
	db      *sql.DB
	cfg     SQLConfig
	breaker *gobreaker.CircuitBreaker[*sql.Conn]
	closed  atomic.Bool
}

// NewSQL 打开数据库并校验连通性。
func NewSQL(ctx context.Context, cfg SQLConfig) (*SQL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("xconnpool: open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.PingTimeout > 0 {
		if ctx == nil {
			ctx = context.Background()
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close() //nolint:errcheck // 返回 ping 错误
			return nil, fmt.Errorf("xconnpool: ping %s: %w", cfg.Driver, err)
		}
	}
	return newSQL(db, cfg), nil
}

func newSQL(db *sql.DB, cfg SQLConfig) *SQL {
	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*sql.Conn](gobreaker.Settings{
		Name:        "xconnpool.sql." + cfg.Driver,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 调用方取消不计入失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
	return &SQL{db: db, cfg: cfg, breaker: breaker}
}

// Acquire 借出一个独占的 *sql.Conn。
//
// 失败按 AcquireAttempts/AcquireDelay 重试；连续失败达到 BreakerFailures 后熔断，
// 熔断期间立即返回 gobreaker.ErrOpenState。
func (p *SQL) Acquire(ctx context.Context) (*sql.Conn, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := p.breaker.Execute(func() (*sql.Conn, error) {
		conn, err := retry.NewWithData[*sql.Conn](
			retry.Context(ctx),
			retry.Attempts(p.cfg.AcquireAttempts),
			retry.Delay(p.cfg.AcquireDelay),
			retry.LastErrorOnly(true),
		).Do(func() (*sql.Conn, error) {
			return p.db.Conn(ctx)
		})
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return conn, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	return conn, nil
}

// Release 把连接归还给 *sql.DB。
func (p *SQL) Release(conn *sql.Conn) {
	if conn == nil {
		return
	}
	_ = conn.Close() //nolint:errcheck // ErrConnDone 表示已归还
}

// BreakerState 返回熔断器状态。
func (p *SQL) BreakerState() gobreaker.State {
	return p.breaker.State()
}

// DB 返回底层 *sql.DB。
func (p *SQL) DB() *sql.DB {
	return p.db
}

// Stats 返回 *sql.DB 统计。
func (p *SQL) Stats() sql.DBStats {
	return p.db.Stats()
}

// Close 关闭底层数据库，重复调用返回 ErrClosed。
func (p *SQL) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return p.db.Close()
}
