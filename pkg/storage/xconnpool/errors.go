package xconnpool

import "errors"

var (
	// ErrClosed 连接池已关闭。
	ErrClosed = errors.New("xconnpool: pool closed")

	// ErrInvalidSize 连接池容量必须为正数。
	ErrInvalidSize = errors.New("xconnpool: size must be positive")

	// ErrNilFactory 连接工厂函数为 nil。
	ErrNilFactory = errors.New("xconnpool: nil factory")

	// ErrInvalidConfig 配置校验失败。
	ErrInvalidConfig = errors.New("xconnpool: invalid config")

	// ErrAcquire 获取连接失败，底层错误通过 errors.Unwrap 链可达。
	ErrAcquire = errors.New("xconnpool: acquire failed")

	// ErrNilPool 传入的连接池为 nil。
	ErrNilPool = errors.New("xconnpool: nil pool")
)
