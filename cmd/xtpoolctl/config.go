//go:build !windows

package main

import (
	"fmt"
	"time"

	"github.com/omeyang/xtpool/pkg/config/xconf"
	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/storage/xconnpool"
	"github.com/omeyang/xtpool/pkg/util/xpool"
)

// listenConfig 监听与会话参数。
type listenConfig struct {
	Addr      string `koanf:"addr"`
	ReusePort bool   `koanf:"reuse_port"`
	// IdleTimeout 会话无活动超过该时长后被回收。
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	// ReapInterval 回收检查周期。
	ReapInterval time.Duration `koanf:"reap_interval"`
	// MaxLineBytes 单行请求上限。
	MaxLineBytes int `koanf:"max_line_bytes"`
	// MetricsAddr 为空时不启动 /metrics。
	MetricsAddr     string        `koanf:"metrics_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// serveConfig serve 命令的完整配置，对应配置文件的顶层结构。
type serveConfig struct {
	Listen listenConfig         `koanf:"listen"`
	Pool   xpool.Config         `koanf:"pool"`
	DB     xconnpool.SQLConfig  `koanf:"db"`
	Log    xlog.Config          `koanf:"log"`
}

func defaultServeConfig() serveConfig {
	return serveConfig{
		Listen: listenConfig{
			Addr:            "127.0.0.1:7070",
			IdleTimeout:     time.Minute,
			ReapInterval:    5 * time.Second,
			MaxLineBytes:    4096,
			ShutdownTimeout: 10 * time.Second,
		},
		Pool: xpool.DefaultConfig(),
		DB:   xconnpool.DefaultSQLConfig("sqlite3", "file::memory:?cache=shared"),
		Log:  xlog.Config{Level: xlog.LevelInfo, Format: "text"},
	}
}

func (c serveConfig) validate() error {
	switch {
	case c.Listen.Addr == "":
		return usagef("listen.addr is empty")
	case c.Listen.IdleTimeout <= 0:
		return usagef("listen.idle_timeout must be positive")
	case c.Listen.ReapInterval <= 0:
		return usagef("listen.reap_interval must be positive")
	case c.Listen.MaxLineBytes < 16:
		return usagef("listen.max_line_bytes must be at least 16")
	}
	if err := c.DB.Validate(); err != nil {
		return &usageError{err: err}
	}
	return nil
}

// loadServeConfig 在默认值之上叠加配置文件。path 为空时返回默认值和 nil Config。
func loadServeConfig(path string) (serveConfig, xconf.Config, error) {
	cfg := defaultServeConfig()
	if path == "" {
		return cfg, nil, nil
	}
	src, err := xconf.New(path)
	if err != nil {
		return cfg, nil, &usageError{err: err}
	}
	if err := src.Unmarshal("", &cfg); err != nil {
		return cfg, nil, &usageError{err: fmt.Errorf("%s: %w", path, err)}
	}
	return cfg, src, nil
}
