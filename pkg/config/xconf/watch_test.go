package xconf

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatch_Reload(t *testing.T) {
	path := writeTemp(t, "serve.yaml", testYAML)
	cfg, err := New(path)
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	w, err := Watch(cfg, func(_ Config, err error) {
		reloaded <- err
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// 给 fsnotify 一点时间完成目录注册
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  workers: 32\n"), 0o600))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch callback not invoked")
	}
	assert.Equal(t, 32, cfg.Client().Int("pool.workers"))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_Errors(t *testing.T) {
	_, err := Watch(nil, nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	fromBytes, err := NewFromBytes([]byte(testYAML), FormatYAML)
	require.NoError(t, err)
	_, err = Watch(fromBytes, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	path := writeTemp(t, "serve.yaml", testYAML)
	cfg, err := New(path)
	require.NoError(t, err)

	w, err := Watch(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
}
