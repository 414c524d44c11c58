//go:build !windows

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/util/xpool"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(xlog.ResetDefault)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"xtpoolctl"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "xtpoolctl "+Version)
}

func TestRun_Bench(t *testing.T) {
	for _, mode := range []string{"reactor", "proactor", "1"} {
		t.Run(mode, func(t *testing.T) {
			code, out, errOut := runCLI(t, "--log-level", "error", "bench",
				"--tasks", "200", "--clients", "8", "--mode", mode,
				"--workers", "4", "--max-requests", "4", "--fail-rate", "0.1", "--work", "0s")
			require.Equal(t, 0, code, errOut)
			assert.Contains(t, out, "tasks       200")
			assert.Contains(t, out, "throughput")
		})
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad mode", []string{"bench", "--mode", "turbo"}},
		{"zero tasks", []string{"bench", "--tasks", "0"}},
		{"fail rate", []string{"bench", "--fail-rate", "2"}},
		{"zero workers", []string{"bench", "--workers", "0", "--tasks", "1"}},
		{"bad log level", []string{"--log-level", "loud", "bench", "--tasks", "1"}},
		{"missing config", []string{"serve", "--config", "/nonexistent/xtpool.yaml"}},
		{"serve bad mode", []string{"serve", "--mode", "turbo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, 2, code, errOut)
			assert.Contains(t, errOut, "参数错误")
		})
	}
}

func TestRun_ServeFailsOnBadDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xtpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  driver: nosuchdriver
  dsn: whatever
`), 0o600))

	code, _, errOut := runCLI(t, "serve", "--config", path)
	assert.Equal(t, 1, code, errOut)
}

func TestLoadServeConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xtpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen:
  addr: 0.0.0.0:9000
  idle_timeout: 30s
  reuse_port: true
pool:
  name: edge
  mode: 2
  workers: 16
log:
  level: debug
  format: json
`), 0o600))

	cfg, src, err := loadServeConfig(path)
	require.NoError(t, err)
	require.NotNil(t, src)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen.Addr)
	assert.Equal(t, 30*time.Second, cfg.Listen.IdleTimeout)
	assert.True(t, cfg.Listen.ReusePort)
	assert.Equal(t, 5*time.Second, cfg.Listen.ReapInterval, "unset keys keep defaults")
	assert.Equal(t, "edge", cfg.Pool.Name)
	assert.Equal(t, xpool.ModeProactor, cfg.Pool.Mode)
	assert.Equal(t, 16, cfg.Pool.Workers)
	assert.Equal(t, xpool.DefaultMaxRequests, cfg.Pool.MaxRequests)
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, xlog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.validate())
}

func TestLoadServeConfig_NoPath(t *testing.T) {
	cfg, src, err := loadServeConfig("")
	require.NoError(t, err)
	assert.Nil(t, src)
	assert.Equal(t, defaultServeConfig(), cfg)
}

func TestServeConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*serveConfig)
	}{
		{"empty addr", func(c *serveConfig) { c.Listen.Addr = "" }},
		{"zero idle", func(c *serveConfig) { c.Listen.IdleTimeout = 0 }},
		{"zero reap", func(c *serveConfig) { c.Listen.ReapInterval = 0 }},
		{"tiny line", func(c *serveConfig) { c.Listen.MaxLineBytes = 8 }},
		{"no driver", func(c *serveConfig) { c.DB.Driver = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultServeConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			assert.True(t, isUsage(err), "got %v", err)
		})
	}
}

func TestReloadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xtpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))
	_, src, err := loadServeConfig(path)
	require.NoError(t, err)

	logger := quietLogger(t)
	cb := reloadLogLevel(logger)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))
	cb(src, src.Reload())
	assert.Equal(t, xlog.LevelWarn, logger.GetLevel())

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: [\n"), 0o600))
	cb(src, src.Reload())
	assert.Equal(t, xlog.LevelWarn, logger.GetLevel(), "broken file keeps the level")
}
