package xpool

import "errors"

var (
	// ErrInvalidWorkers 表示 worker 数量不在 [1, 65536]。
	ErrInvalidWorkers = errors.New("xpool: invalid worker count")

	// ErrInvalidQueueSize 表示队列容量不在 [1, 16777216]。
	ErrInvalidQueueSize = errors.New("xpool: invalid queue size")

	// ErrNilConnPool 表示连接池为 nil。
	ErrNilConnPool = errors.New("xpool: nil connection pool")

	// ErrInvalidMode 表示分发模式无效。
	ErrInvalidMode = errors.New("xpool: invalid mode")

	// ErrQueueFull 表示队列已满，任务未入队。调用方可稍后重试。
	ErrQueueFull = errors.New("xpool: queue is full")

	// ErrPoolStopped 表示 pool 已关闭，无法提交任务。
	ErrPoolStopped = errors.New("xpool: pool is stopped")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xpool: nil context")

	// ErrNilTask 表示提交的任务为 nil。
	ErrNilTask = errors.New("xpool: nil task")

	// ErrTaskPanic 表示任务方法 panic，已被 worker 恢复。
	ErrTaskPanic = errors.New("xpool: task panicked")
)
