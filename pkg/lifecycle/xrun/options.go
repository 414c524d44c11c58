package xrun

import (
	"os"
	"syscall"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
)

// Option 配置 Group 与 Run。
type Option func(*options)

type options struct {
	logger   xlog.Logger
	name     string
	signals  []os.Signal
	noSignal bool
}

func newOptions(opts []Option) *options {
	o := &options{name: "xrun"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = xlog.Default()
	}
	if len(o.signals) == 0 {
		o.signals = DefaultSignals()
	}
	return o
}

// DefaultSignals 返回 Run 默认监听的信号：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
// 每次返回新切片。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

// WithLogger 设置生命周期日志的 logger，默认 xlog.Default()。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithName 设置 Group 名称，出现在日志的 component 字段。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖 Run 监听的信号。空列表等同于默认值。
func WithSignals(signals ...os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *options) {
		o.signals = copied
	}
}

// WithoutSignalHandler 禁止 Run 注册信号监听。
func WithoutSignalHandler() Option {
	return func(o *options) {
		o.noSignal = true
	}
}
