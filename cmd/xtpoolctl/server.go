//go:build !windows

package main

import (
	"context"
	"errors"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
)

// server 接受连接并为每个连接运行一个会话。
type server[C any] struct {
	cfg    listenConfig
	pool   submitter[C]
	handle handler[C]
	logger xlog.Logger

	mu       sync.Mutex
	sessions map[string]*session[C]
	wg       sync.WaitGroup
}

func newServer[C any](cfg listenConfig, pool submitter[C], h handler[C], logger xlog.Logger) *server[C] {
	return &server[C]{
		cfg:      cfg,
		pool:     pool,
		handle:   h,
		logger:   logger.With(xlog.Component("server")),
		sessions: make(map[string]*session[C]),
	}
}

// listen 按配置创建监听，reuse_port 时设置 SO_REUSEPORT 以便多进程共享端口。
func listen(ctx context.Context, cfg listenConfig) (net.Listener, error) {
	lc := net.ListenConfig{}
	if cfg.ReusePort {
		lc.Control = reusePort
	}
	return lc.Listen(ctx, "tcp", cfg.Addr)
}

func reusePort(_, _ string, c syscall.RawConn) error {
	var opErr error
	if err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	}); err != nil {
		return err
	}
	return opErr
}

// serve 在 ln 上接受连接直到 ctx 取消，返回前关闭所有会话并等待其退出。
func (s *server[C]) serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()
	defer s.closeAll()

	s.logger.Info(ctx, "xtpoolctl: listening", xlog.Operation(ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		s.start(ctx, conn)
	}
}

func (s *server[C]) start(ctx context.Context, conn net.Conn) {
	sess := newSession(conn, s.cfg.MaxLineBytes, s.handle, s.logger)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.remove(sess.id)
		sess.logger.Debug(ctx, "xtpoolctl: session opened")
		if err := sess.serve(ctx, s.pool); err != nil {
			sess.logger.Warn(ctx, "xtpoolctl: session failed", xlog.Err(err))
			return
		}
		sess.logger.Debug(ctx, "xtpoolctl: session closed")
	}()
}

func (s *server[C]) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *server[C]) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.close()
	}
}

// reap 关闭被标记失败或空闲超时的会话，返回关闭数量。
func (s *server[C]) reap(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, sess := range s.sessions {
		if sess.Expired() || sess.idleSince(now) > s.cfg.IdleTimeout {
			sess.close()
			n++
		}
	}
	return n
}

// reaper 返回供 xrun.Ticker 周期调用的回收函数。
func (s *server[C]) reaper() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if n := s.reap(time.Now()); n > 0 {
			s.logger.Debug(ctx, "xtpoolctl: reaped sessions", xlog.Count(int64(n)))
		}
		return nil
	}
}

// active 返回当前会话数。
func (s *server[C]) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
