package xrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
)

// Service 是一个阻塞运行直到 ctx 取消或出错的服务。
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc 把函数适配为 Service。
type ServiceFunc func(ctx context.Context) error

// Run 实现 Service。
func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

type namedService struct {
	name string
	Service
}

func (n namedService) Name() string { return n.name }

// Named 给服务附加名称，Run 和 Group.Go 在日志中使用它。
func Named(name string, svc Service) Service {
	if svc == nil {
		return nil
	}
	return namedService{name: name, Service: svc}
}

func serviceName(svc Service, index int) string {
	if n, ok := svc.(interface{ Name() string }); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("service-%d", index)
}

// Group 并发运行多个服务，任一服务出错即取消全部。
//
// Go 和 Cancel 可并发调用，Wait 只调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	logger   xlog.Logger
	opts     *options
}

// NewGroup 创建 Group，返回的 ctx 在任一服务出错或 Cancel 后取消。
// nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := newOptions(opts)
	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		logger:   o.logger.With(xlog.Component(o.name)),
		opts:     o,
	}, egCtx
}

// Go 在新 goroutine 中运行 svc。nil 服务立即以 ErrNilService 失败。
func (g *Group) Go(name string, svc Service) {
	g.eg.Go(func() error {
		if svc == nil {
			return fmt.Errorf("%w: %s", ErrNilService, name)
		}
		attr := slog.String("service", name)
		g.logger.Debug(g.ctx, "xrun: service starting", attr)
		err := svc.Run(g.ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
			g.logger.Debug(g.ctx, "xrun: service stopped", attr)
		default:
			g.logger.Warn(g.ctx, "xrun: service failed", attr, xlog.Err(err))
		}
		return err
	})
}

// Cancel 以 cause 为原因取消所有服务，Wait 会返回该原因。
// cause 不应包装 context.Canceled，否则会被当作普通取消过滤掉。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回服务共享的 ctx。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Wait 等待全部服务返回。
//
// 返回第一个服务错误；若 Group 被取消且带有显式原因（如 *SignalError），
// 返回该原因；由 Group 取消引起的 context.Canceled 返回 nil。
// 服务自身返回的 context.Canceled 在 Group 未被取消时原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.logger.Debug(context.Background(), "xrun: all services stopped")

	cancelled := g.causeCtx.Err() != nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil && !cancelled {
		return err
	}
	if cancelled {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
	}
	return nil
}

// Run 运行 services 并监听终止信号，直到全部服务返回。
//
// 收到信号时以 *SignalError 取消 Group，Run 返回它，errors.Is(err, ErrSignal) 成立。
func Run(ctx context.Context, opts []Option, services ...Service) error {
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignal {
		g.Go("signal", ServiceFunc(g.watchSignals))
	}
	for i, svc := range services {
		g.Go(serviceName(svc, i), svc)
	}
	return g.Wait()
}

func (g *Group) watchSignals(ctx context.Context) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, g.opts.signals...)
	defer signal.Stop(ch)

	var sig os.Signal
	select {
	case sig = <-ch:
	case sig = <-injectedSignals(ctx):
	case <-ctx.Done():
		return nil
	}
	g.logger.Info(ctx, "xrun: received signal", slog.String("signal", sig.String()))
	g.cancel(&SignalError{Signal: sig})
	return nil
}

type signalFeedKey struct{}

// injectedSignals 返回测试通过 ctx 注入的信号通道，生产环境为 nil。
func injectedSignals(ctx context.Context) <-chan os.Signal {
	ch, _ := ctx.Value(signalFeedKey{}).(<-chan os.Signal)
	return ch
}

func withSignalFeed(ctx context.Context, ch <-chan os.Signal) context.Context {
	return context.WithValue(ctx, signalFeedKey{}, ch)
}
