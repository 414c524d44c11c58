package xpool

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
)

// Phase 任务的 I/O 阶段，仅 reactor 模式使用。
// PhaseRead 表示待读取，任何非零值都表示待写出。
type Phase int

const (
	PhaseRead  Phase = 0
	PhaseWrite Phase = 1
)

func (p Phase) String() string {
	switch p {
	case PhaseRead:
		return "read"
	case PhaseWrite:
		return "write"
	default:
		return "write(" + strconv.Itoa(int(p)) + ")"
	}
}

// Task pool 调度的任务，C 为连接句柄类型。
//
// 任务由调用方持有，pool 只在排队期间保存引用、在执行期间调用其方法。
// 同一任务在完成一次分发前不应再次提交。
type Task[C any] interface {
	// Phase 返回当前阶段。
	Phase() Phase
	// SetPhase 由 SubmitState 在入队成功时调用。
	SetPhase(Phase)

	// MarkImproved 表示 worker 已处理完本轮分发，所有者可以继续推进。
	MarkImproved()
	// MarkExpired 表示读写失败，所有者应关闭该任务。
	MarkExpired()

	// ReadOnce 读取一次输入，false 表示失败（对端关闭或出错）。
	ReadOnce(ctx context.Context) bool
	// Write 写出待发送数据，false 表示失败。
	Write(ctx context.Context) bool

	// Process 处理已读入的数据。conn 仅在本次调用期间有效，返回后即被归还。
	Process(ctx context.Context, conn C)
}

// TaskFlags 实现 Task 中与阶段和标志相关的部分，可嵌入到具体任务类型中。
//
// worker 写、所有者读，全部使用原子操作。零值可用，不可复制。
type TaskFlags struct {
	phase    atomic.Int64
	improved atomic.Bool
	expired  atomic.Bool

	notifyOnce sync.Once
	notify     chan struct{}
}

// Phase 实现 Task。
func (f *TaskFlags) Phase() Phase { return Phase(f.phase.Load()) }

// SetPhase 实现 Task。
func (f *TaskFlags) SetPhase(p Phase) { f.phase.Store(int64(p)) }

// MarkImproved 实现 Task，并唤醒 Improvements 上的等待者。
func (f *TaskFlags) MarkImproved() {
	f.improved.Store(true)
	select {
	case f.channel() <- struct{}{}:
	default:
	}
}

// MarkExpired 实现 Task。
func (f *TaskFlags) MarkExpired() { f.expired.Store(true) }

// Improved 报告是否已被标记处理完成。
func (f *TaskFlags) Improved() bool { return f.improved.Load() }

// Expired 报告是否已被标记失败。
func (f *TaskFlags) Expired() bool { return f.expired.Load() }

// TakeImproved 读取并清除 improved 标志，同时返回 expired 标志。
// 所有者每轮分发调用一次，避免对同一次完成重复响应。
func (f *TaskFlags) TakeImproved() (improved, expired bool) {
	improved = f.improved.Swap(false)
	return improved, f.expired.Load()
}

// Improvements 返回容量为 1 的通知 channel，每次 MarkImproved 后至多积压一个信号。
// 收到信号后应调用 TakeImproved 确认状态。
func (f *TaskFlags) Improvements() <-chan struct{} {
	return f.channel()
}

func (f *TaskFlags) channel() chan struct{} {
	f.notifyOnce.Do(func() {
		f.notify = make(chan struct{}, 1)
	})
	return f.notify
}
