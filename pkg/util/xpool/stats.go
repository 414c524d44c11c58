package xpool

import "sync/atomic"

// Stats pool 运行统计快照。
type Stats struct {
	Name        string
	Mode        Mode
	Workers     int
	MaxRequests int
	// Queued 当前排队的任务数。
	Queued int

	Submitted uint64
	Rejected  uint64
	// Dispatched 被 worker 取出并分发的任务数。
	Dispatched uint64
	// Expired 被 pool 标记为失败的任务数（读写失败或获取连接失败）。
	Expired         uint64
	AcquireFailures uint64
	Panics          uint64
	// SpuriousWakeups worker 被唤醒但队列为空的次数。
	SpuriousWakeups uint64
	// Abandoned 关闭时仍在队列中、未被分发的任务数。
	Abandoned uint64
}

type counters struct {
	submitted       atomic.Uint64
	rejected        atomic.Uint64
	dispatched      atomic.Uint64
	expired         atomic.Uint64
	acquireFailures atomic.Uint64
	panics          atomic.Uint64
	spurious        atomic.Uint64
	abandoned       atomic.Uint64
}
