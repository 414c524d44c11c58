//go:build !windows

package main

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xtpool/pkg/util/xpool"
)

func testListenConfig() listenConfig {
	cfg := defaultServeConfig().Listen
	cfg.Addr = "127.0.0.1:0"
	return cfg
}

func TestServer_ServeAndShutdown(t *testing.T) {
	pool := newIntPool(t, xpool.ModeReactor)
	cfg := testListenConfig()
	ln, err := listen(context.Background(), cfg)
	require.NoError(t, err)

	srv := newServer[int](cfg, pool, echoHandler, quietLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))

	r := bufio.NewReader(conn)
	_, err = conn.Write([]byte("ping\n"))
	require.NoError(t, err)
	reply, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "OK ping\n", reply)
	assert.Equal(t, 1, srv.active())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 0, srv.active())
}

func TestServer_ReapIdleAndExpired(t *testing.T) {
	cfg := testListenConfig()
	cfg.IdleTimeout = time.Minute
	srv := newServer[int](cfg, fullPool{mode: xpool.ModeReactor}, echoHandler, quietLogger(t))

	idleClient, idleConn := net.Pipe()
	defer idleClient.Close()
	idle := newSession[int](idleConn, 64, echoHandler, quietLogger(t))
	expiredClient, expiredConn := net.Pipe()
	defer expiredClient.Close()
	expired := newSession[int](expiredConn, 64, echoHandler, quietLogger(t))
	expired.MarkExpired()
	freshClient, freshConn := net.Pipe()
	defer freshClient.Close()
	fresh := newSession[int](freshConn, 64, echoHandler, quietLogger(t))
	defer fresh.close()

	srv.sessions[idle.id] = idle
	srv.sessions[expired.id] = expired
	srv.sessions[fresh.id] = fresh

	// 只有 idle 超时，fresh 在 30 秒后仍未超时
	assert.Equal(t, 1, srv.reap(time.Now().Add(30*time.Second)))
	_, err := expiredClient.Write([]byte("x"))
	assert.Error(t, err, "expired session is closed")

	assert.Equal(t, 3, srv.reap(time.Now().Add(2*time.Minute)))
	_, err = idleClient.Write([]byte("x"))
	assert.Error(t, err, "idle session is closed")
	require.NoError(t, srv.reaper()(context.Background()))
}

func TestListen_ReusePort(t *testing.T) {
	cfg := testListenConfig()
	cfg.ReusePort = true
	first, err := listen(context.Background(), cfg)
	require.NoError(t, err)
	defer first.Close()

	cfg.Addr = first.Addr().String()
	second, err := listen(context.Background(), cfg)
	require.NoError(t, err, "SO_REUSEPORT allows a second listener on the same port")
	require.NoError(t, second.Close())
}
