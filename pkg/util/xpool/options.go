package xpool

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/observability/xmetrics"
)

// 默认值与上限。
const (
	DefaultWorkers     = 8
	DefaultMaxRequests = 10000
	DefaultName        = "xpool"

	maxWorkers   = 1 << 16
	maxQueueSize = 1 << 24
)

// Option 定义 Pool 可选配置函数类型。
type Option func(*options)

type options struct {
	workers       int
	maxRequests   int
	name          string
	logger        xlog.Logger
	observer      xmetrics.Observer
	meterProvider metric.MeterProvider
}

func defaultOptions() options {
	return options{
		workers:     DefaultWorkers,
		maxRequests: DefaultMaxRequests,
		name:        DefaultName,
	}
}

// WithWorkers 设置 worker 数量，有效范围 [1, 65536]，超出时 New 返回 ErrInvalidWorkers。
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaxRequests 设置队列容量，有效范围 [1, 16777216]，超出时 New 返回 ErrInvalidQueueSize。
func WithMaxRequests(n int) Option {
	return func(o *options) {
		o.maxRequests = n
	}
}

// WithName 设置 pool 名称，出现在日志和指标属性中。空字符串被忽略。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger 设置日志记录器，默认使用 xlog.Default()。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 为每次分发开启观测跨度。默认不观测。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithMeterProvider 注册 pool 级指标（提交/拒绝计数和队列深度）。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = provider
	}
}
