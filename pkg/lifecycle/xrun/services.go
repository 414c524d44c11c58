package xrun

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Ticker 返回每隔 interval 调用一次 fn 的服务，fn 出错即退出。
// ctx 取消时返回 nil。
func Ticker(interval time.Duration, fn func(ctx context.Context) error) Service {
	return ServiceFunc(func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilService
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				if err := fn(ctx); err != nil {
					return err
				}
			}
		}
	})
}

// OnStop 返回一个等待 ctx 取消后调用 stop 的服务。
//
// stop 收到一个新的 ctx，timeout > 0 时带超时。用于把 Shutdown(ctx) 风格的
// 资源挂到 Group 的关闭流程上。
func OnStop(timeout time.Duration, stop func(ctx context.Context) error) Service {
	return ServiceFunc(func(ctx context.Context) error {
		if stop == nil {
			return ErrNilService
		}
		<-ctx.Done()
		sctx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, timeout)
			defer cancel()
		}
		return stop(sctx)
	})
}

// WaitForDone 返回阻塞到 ctx 取消的服务。
func WaitForDone() Service {
	return ServiceFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
}

// Server 是 HTTPServer 需要的 *http.Server 方法子集。
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServer 返回运行 server 的服务，ctx 取消时优雅关闭。
//
// shutdownTimeout <= 0 表示等待所有在途请求结束。
// 外部直接关闭 server 时服务返回 nil。
func HTTPServer(server Server, shutdownTimeout time.Duration) Service {
	return ServiceFunc(func(ctx context.Context) error {
		if server == nil {
			return ErrNilServer
		}
		shutdownErr := make(chan error, 1)
		served := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				sctx := context.WithoutCancel(ctx)
				if shutdownTimeout > 0 {
					var cancel context.CancelFunc
					sctx, cancel = context.WithTimeout(sctx, shutdownTimeout)
					defer cancel()
				}
				shutdownErr <- server.Shutdown(sctx)
			case <-served:
			}
		}()

		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			close(served)
			return err
		}
		select {
		case err := <-shutdownErr:
			return err
		case <-ctx.Done():
			return <-shutdownErr
		default:
			close(served)
			return nil
		}
	})
}
