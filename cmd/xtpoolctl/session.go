//go:build !windows

package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/util/xpool"
)

// errSessionExpired 表示 pool 把会话标记为失败。
var errSessionExpired = errors.New("xtpoolctl: session expired")

// handler 用借到的连接处理一行请求，返回不含换行的应答。
type handler[C any] func(ctx context.Context, conn C, line string) (string, error)

// sqlHandler 先在连接上做一次健康查询，再回显请求。
func sqlHandler(ctx context.Context, conn *sql.Conn, line string) (string, error) {
	var one int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return "", fmt.Errorf("health query: %w", err)
	}
	return "OK " + line, nil
}

// submitter 是会话需要的 pool 子集。
type submitter[C any] interface {
	Submit(t xpool.Task[C]) error
	SubmitState(t xpool.Task[C], phase xpool.Phase) error
	Mode() xpool.Mode
}

// session 一个客户端连接。
//
// 所有者 goroutine 负责等待可读、提交任务和关闭连接；worker 只在被分发时
// 读写 line 和 reply，二者之间由入队和 processed 通知建立先后关系。
type session[C any] struct {
	xpool.TaskFlags

	id      string
	conn    net.Conn
	r       *bufio.Reader
	w       *bufio.Writer
	handle  handler[C]
	logger  xlog.Logger

	line  string
	reply string

	processed  chan struct{}
	lastActive atomic.Int64
	closeOnce  sync.Once
}

func newSession[C any](conn net.Conn, maxLine int, h handler[C], logger xlog.Logger) *session[C] {
	s := &session[C]{
		id:        uuid.NewString(),
		conn:      conn,
		r:         bufio.NewReaderSize(conn, maxLine),
		w:         bufio.NewWriter(conn),
		handle:    h,
		processed: make(chan struct{}, 1),
	}
	s.logger = logger.With(xlog.TaskID(s.id))
	s.touch()
	return s
}

func (s *session[C]) touch() { s.lastActive.Store(time.Now().UnixNano()) }

// idleSince 返回距上次活动的时长。
func (s *session[C]) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActive.Load()))
}

// ReadOnce 读取一行。超长的行视为失败。
func (s *session[C]) ReadOnce(context.Context) bool {
	line, err := s.r.ReadSlice('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Debug(context.Background(), "xtpoolctl: read failed", xlog.Err(err))
		}
		return false
	}
	s.line = strings.TrimRight(string(line), "\r\n")
	s.touch()
	return true
}

// Process 用借到的连接生成应答。
// panic 时不发送 processed 通知，所有者通过 expired 得知失败。
func (s *session[C]) Process(ctx context.Context, conn C) {
	reply, err := s.handle(ctx, conn, s.line)
	if err != nil {
		s.logger.Warn(ctx, "xtpoolctl: request failed", xlog.Err(err))
		reply = "ERR " + err.Error()
	}
	s.reply = reply
	s.notifyProcessed()
}

// Write 发送应答。
func (s *session[C]) Write(context.Context) bool {
	if _, err := s.w.WriteString(s.reply + "\n"); err != nil {
		return false
	}
	if err := s.w.Flush(); err != nil {
		return false
	}
	s.touch()
	return true
}

func (s *session[C]) notifyProcessed() {
	select {
	case s.processed <- struct{}{}:
	default:
	}
}

// close 关闭底层连接，阻塞在读上的所有者随之退出。可重复调用。
func (s *session[C]) close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

// serve 驱动会话直到连接关闭、会话失败或 ctx 取消。
func (s *session[C]) serve(ctx context.Context, pool submitter[C]) error {
	defer s.close()
	stop := context.AfterFunc(ctx, s.close)
	defer stop()

	for {
		var err error
		if pool.Mode() == xpool.ModeReactor {
			err = s.reactorRound(ctx, pool)
		} else {
			err = s.proactorRound(ctx, pool)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed),
			errors.Is(err, errSessionExpired), ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}
}

// reactorRound 等到可读后交给 worker 读并处理，处理完再交给 worker 写。
func (s *session[C]) reactorRound(ctx context.Context, pool submitter[C]) error {
	if _, err := s.r.Peek(1); err != nil {
		return err
	}
	if err := pool.SubmitState(s, xpool.PhaseRead); err != nil {
		if errors.Is(err, xpool.ErrQueueFull) {
			return s.reject(true)
		}
		return err
	}
	if err := s.awaitImproved(ctx); err != nil {
		return err
	}
	// 读成功的通知先于 Process，需再等处理完成
	if err := s.awaitProcessed(ctx); err != nil {
		return err
	}
	if err := pool.SubmitState(s, xpool.PhaseWrite); err != nil {
		if errors.Is(err, xpool.ErrQueueFull) && s.Write(ctx) {
			// 应答已生成，队列满时由所有者直接写出
			return nil
		}
		return io.EOF
	}
	return s.awaitImproved(ctx)
}

// proactorRound 所有者自己读写，只把处理交给 worker。
func (s *session[C]) proactorRound(ctx context.Context, pool submitter[C]) error {
	if !s.ReadOnce(ctx) {
		return io.EOF
	}
	if err := pool.Submit(s); err != nil {
		if errors.Is(err, xpool.ErrQueueFull) {
			return s.reject(false)
		}
		return err
	}
	if err := s.awaitProcessed(ctx); err != nil {
		return err
	}
	if !s.Write(ctx) {
		return io.EOF
	}
	return nil
}

func (s *session[C]) awaitImproved(ctx context.Context) error {
	select {
	case <-s.Improvements():
	case <-ctx.Done():
		return ctx.Err()
	}
	if _, expired := s.TakeImproved(); expired {
		return errSessionExpired
	}
	return nil
}

// awaitProcessed 等待 Process 返回；获取连接失败或任务 panic 时 pool 会
// 标记 expired 并再次通知。
func (s *session[C]) awaitProcessed(ctx context.Context) error {
	for {
		select {
		case <-s.processed:
			return nil
		case <-s.Improvements():
			if _, expired := s.TakeImproved(); expired {
				return errSessionExpired
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reject 在队列满时回复 busy。unread 为 true 时先丢弃尚未读取的请求行。
func (s *session[C]) reject(unread bool) error {
	if unread {
		if _, err := s.r.ReadSlice('\n'); err != nil {
			return io.EOF
		}
	}
	s.reply = "ERR busy"
	if !s.Write(context.Background()) {
		return io.EOF
	}
	return nil
}
