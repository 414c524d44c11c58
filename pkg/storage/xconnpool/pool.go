package xconnpool

import (
	"context"
	"errors"
	"fmt"
)

// Pool 连接池接口。C 为连接句柄类型。
//
// Acquire 在池空时阻塞，直到有连接归还或 ctx 结束。
// 每个成功 Acquire 的连接必须恰好 Release 一次。
type Pool[C any] interface {
	Acquire(ctx context.Context) (C, error)
	Release(conn C)
}

// With 借出一个连接执行 fn，返回前归还。
//
// 获取失败时 fn 不会被调用，返回的错误满足 errors.Is(err, ErrAcquire)。
// fn panic 时先归还连接再继续 panic。
func With[C any](ctx context.Context, p Pool[C], fn func(C)) error {
	if p == nil {
		return ErrNilPool
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrAcquire) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	defer p.Release(conn)
	fn(conn)
	return nil
}
