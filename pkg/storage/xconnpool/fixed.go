package xconnpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Factory 创建一个连接。
type Factory[C any] func(ctx context.Context) (C, error)

// CloseFunc 关闭一个连接，可为 nil。
type CloseFunc[C any] func(conn C) error

// FixedConfig Fixed 连接池配置。
type FixedConfig struct {
	// Size 连接数，启动时全部建立。
	Size int `koanf:"size"`
}

// FixedStats Fixed 连接池快照。
type FixedStats struct {
	Max   int
	Free  int
	InUse int
}

// Fixed 固定容量连接池。
//
// 空闲连接保存在链表中，由互斥锁保护；信号量计数等于可借出的连接数，
// 借用方在信号量上等待而不是轮询。
type Fixed[C any] struct {
	sem    *semaphore.Weighted
	closer CloseFunc[C]
	size   int

	mu     sync.Mutex
	free   []C
	inUse  int
	closed bool
}

// NewFixed 用 factory 建立 cfg.Size 个连接。
// 任一连接建立失败时关闭已建立的连接并返回错误。
func NewFixed[C any](ctx context.Context, cfg FixedConfig, factory Factory[C], closer CloseFunc[C]) (*Fixed[C], error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, cfg.Size)
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	if ctx == nil {
		ctx = context.Background()
	}

	free := make([]C, 0, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		conn, err := factory(ctx)
		if err != nil {
			closeAll(free, closer)
			return nil, fmt.Errorf("xconnpool: create connection %d/%d: %w", i+1, cfg.Size, err)
		}
		free = append(free, conn)
	}

	return &Fixed[C]{
		sem:    semaphore.NewWeighted(int64(cfg.Size)),
		closer: closer,
		size:   cfg.Size,
		free:   free,
	}, nil
}

// Acquire 借出一个空闲连接，池空时阻塞直到有连接归还、ctx 结束或池关闭后有连接归还。
func (p *Fixed[C]) Acquire(ctx context.Context) (C, error) {
	var zero C
	if ctx == nil {
		ctx = context.Background()
	}
	if p.isClosed() {
		return zero, ErrClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	p.mu.Lock()
	if p.closed || len(p.free) == 0 {
		p.mu.Unlock()
		p.sem.Release(1)
		return zero, ErrClosed
	}
	last := len(p.free) - 1
	conn := p.free[last]
	p.free[last] = zero
	p.free = p.free[:last]
	p.inUse++
	p.mu.Unlock()
	return conn, nil
}

// Release 归还连接。池已关闭时直接关闭该连接。
// 多于借出次数的 Release 被忽略。
func (p *Fixed[C]) Release(conn C) {
	p.mu.Lock()
	if p.inUse == 0 {
		p.mu.Unlock()
		return
	}
	p.inUse--
	if p.closed {
		p.mu.Unlock()
		if p.closer != nil {
			_ = p.closer(conn) //nolint:errcheck // 关闭后归还，无调用方可报告
		}
		p.sem.Release(1)
		return
	}
	p.free = append(p.free, conn)
	p.mu.Unlock()
	p.sem.Release(1)
}

// Close 关闭所有空闲连接；借出中的连接在归还时关闭。重复调用返回 ErrClosed。
func (p *Fixed[C]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.closed = true
	free := p.free
	p.free = nil
	p.mu.Unlock()
	return closeAll(free, p.closer)
}

// Stats 返回当前快照。
func (p *Fixed[C]) Stats() FixedStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return FixedStats{Max: p.size, Free: len(p.free), InUse: p.inUse}
}

func (p *Fixed[C]) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func closeAll[C any](conns []C, closer CloseFunc[C]) error {
	if closer == nil {
		return nil
	}
	var errs []error
	for _, c := range conns {
		if err := closer(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
