package xpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/observability/xmetrics"
	"github.com/omeyang/xtpool/pkg/storage/xconnpool"
)

// 分发操作名，用作观测跨度名称。
const (
	opReactorRead     = "reactor.read"
	opReactorWrite    = "reactor.write"
	opProactorProcess = "proactor.process"
)

// errIOFailed 读写失败时的跨度结果，不向外暴露。
var errIOFailed = errors.New("xpool: task i/o failed")

// dispatchFunc 分发策略，在 New 中按模式选定一次。
type dispatchFunc[C any] func(ctx context.Context, t Task[C])

// reactor 按任务阶段分发。
//
// 读阶段：读成功则标记 improved 并借用连接处理；读失败则标记 expired 和 improved，不借连接。
// 写阶段：只写出，成功标记 improved，失败标记 expired 和 improved；写阶段从不借连接，
// 即使写成功也不会再调用 Process。
func (p *Pool[C]) reactor(ctx context.Context, t Task[C]) {
	if t.Phase() == PhaseRead {
		p.observe(ctx, t, opReactorRead, func(ctx context.Context) error {
			if !t.ReadOnce(ctx) {
				p.expire(t)
				return errIOFailed
			}
			t.MarkImproved()
			return p.process(ctx, t)
		})
		return
	}
	p.observe(ctx, t, opReactorWrite, func(ctx context.Context) error {
		if !t.Write(ctx) {
			p.expire(t)
			return errIOFailed
		}
		t.MarkImproved()
		return nil
	})
}

// proactor 不检查阶段，直接借用连接处理。
func (p *Pool[C]) proactor(ctx context.Context, t Task[C]) {
	p.observe(ctx, t, opProactorProcess, func(ctx context.Context) error {
		return p.process(ctx, t)
	})
}

// process 在借用的连接上调用 Process，返回前归还连接。
// 获取连接失败时不调用 Process，任务被标记为失败。
func (p *Pool[C]) process(ctx context.Context, t Task[C]) error {
	err := xconnpool.With(ctx, p.conns, func(conn C) {
		t.Process(ctx, conn)
	})
	if err != nil {
		p.stats.acquireFailures.Add(1)
		p.logger.Warn(ctx, "xpool: acquire connection failed, task expired", xlog.Err(err))
		p.expire(t)
	}
	return err
}

// expire 先标记 expired 再标记 improved，所有者看到 improved 时 expired 已可见。
func (p *Pool[C]) expire(t Task[C]) {
	p.stats.expired.Add(1)
	t.MarkExpired()
	t.MarkImproved()
}

// observe 执行一次分发并记录跨度。任务方法 panic 时恢复并记录调用栈，
// 任务被标记为失败以免所有者一直等待。
func (p *Pool[C]) observe(ctx context.Context, t Task[C], op string, fn func(context.Context) error) {
	ctx, span := xmetrics.Start(ctx, p.observer, xmetrics.SpanOptions{
		Component: "xpool",
		Operation: op,
		Attrs:     []xmetrics.Attr{xmetrics.String("pool", p.name)},
	})
	var err error
	defer func() {
		if r := recover(); r != nil {
			p.stats.panics.Add(1)
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
			p.logger.Stack(ctx, "xpool: task panic recovered",
				xlog.Operation(op), xlog.Panic(r))
			p.expireSafely(ctx, t)
		}
		span.End(xmetrics.Result{Err: err})
	}()
	err = fn(ctx)
}

func (p *Pool[C]) expireSafely(ctx context.Context, t Task[C]) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(ctx, "xpool: task panicked while being marked expired", xlog.Panic(r))
		}
	}()
	p.expire(t)
}
