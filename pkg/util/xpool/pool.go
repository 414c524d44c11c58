package xpool

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/observability/xmetrics"
	"github.com/omeyang/xtpool/pkg/storage/xconnpool"
)

// 编译期检查 Pool 满足 io.Closer。
var _ io.Closer = (*Pool[any])(nil)

// Pool 固定 worker 数量的任务池，C 为连接句柄类型。
//
// 任务进入有界 FIFO 队列，worker 在计数信号量上等待，被唤醒后取出队首任务，
// 按构造时选定的模式分发。New 返回时所有 worker 已启动。
type Pool[C any] struct {
	name        string
	mode        Mode
	workers     int
	maxRequests int

	conns    xconnpool.Pool[C]
	logger   xlog.Logger
	observer xmetrics.Observer
	metrics  *poolMetrics
	dispatch dispatchFunc[C]

	// mu 只保护 queue 和 closed，临界区内不调用任务方法（SetPhase 除外）。
	mu     sync.Mutex
	queue  ring[Task[C]]
	closed bool
	// signal 计数等于已入队但尚未被 worker 认领的任务数。
	signal *semaphore.Weighted

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}

	stats counters
}

// New 创建并启动 pool。
//
// 参数校验在启动任何 worker 之前完成，失败时不会遗留 goroutine。
func New[C any](mode Mode, conns xconnpool.Pool[C], opts ...Option) (*Pool[C], error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	if conns == nil {
		return nil, ErrNilConnPool
	}
	if o.workers < 1 || o.workers > maxWorkers {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidWorkers, o.workers, maxWorkers)
	}
	if o.maxRequests < 1 || o.maxRequests > maxQueueSize {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidQueueSize, o.maxRequests, maxQueueSize)
	}
	if o.logger == nil {
		o.logger = xlog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool[C]{
		name:        o.name,
		mode:        mode,
		workers:     o.workers,
		maxRequests: o.maxRequests,
		conns:       conns,
		logger:      o.logger.With(xlog.Component("xpool")),
		observer:    o.observer,
		queue:       newRing[Task[C]](o.maxRequests),
		signal:      newSignal(o.maxRequests),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	metrics, err := newPoolMetrics(o.meterProvider, o.name, mode, func() int64 { return int64(p.Len()) })
	if err != nil {
		cancel()
		return nil, err
	}
	p.metrics = metrics

	if mode == ModeReactor {
		p.dispatch = p.reactor
	} else {
		p.dispatch = p.proactor
	}

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker(i)
	}
	p.logger.Debug(ctx, "xpool: started",
		xlog.Pool(p.name), xlog.Mode(mode.String()), xlog.Count(int64(p.workers)))
	return p, nil
}

// newSignal 返回计数为 0、上限为 n 的计数信号。
// 入队时 Release(1) 相当于 post，worker 的 Acquire(1) 相当于 wait。
func newSignal(n int) *semaphore.Weighted {
	s := semaphore.NewWeighted(int64(n))
	_ = s.TryAcquire(int64(n)) // 新建的信号量必定成功
	return s
}

// Submit 把任务加入队尾，不修改任务阶段。
//
// 返回 nil 表示已入队；队列已满返回 ErrQueueFull，此时队列和任务均未被修改。
// Submit 从不等待任务执行。
func (p *Pool[C]) Submit(t Task[C]) error {
	return p.enqueue(t, false, PhaseRead)
}

// SubmitState 与 Submit 相同，但在入队成功时先把任务阶段设为 phase。
// 入队失败时任务阶段保持不变。
func (p *Pool[C]) SubmitState(t Task[C], phase Phase) error {
	return p.enqueue(t, true, phase)
}

func (p *Pool[C]) enqueue(t Task[C], setPhase bool, phase Phase) error {
	if t == nil {
		return ErrNilTask
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	if p.queue.len() >= p.maxRequests {
		p.mu.Unlock()
		p.stats.rejected.Add(1)
		p.metrics.rejectedFull()
		return ErrQueueFull
	}
	if setPhase {
		t.SetPhase(phase)
	}
	p.queue.push(t)
	p.mu.Unlock()

	p.signal.Release(1)
	p.stats.submitted.Add(1)
	p.metrics.accepted()
	return nil
}

// worker 循环：等待信号、取队首、分发。任务失败不会结束循环。
func (p *Pool[C]) worker(id int) {
	defer p.wg.Done()
	ctx := xlog.ContextWith(p.ctx, xlog.Pool(p.name), xlog.WorkerID(id))

	for {
		// ctx 已结束时 Acquire 仍可能成功，因此再检查一次
		if err := p.signal.Acquire(ctx, 1); err != nil || ctx.Err() != nil {
			return
		}

		p.mu.Lock()
		t, ok := p.queue.pop()
		p.mu.Unlock()

		if !ok {
			p.stats.spurious.Add(1)
			continue
		}
		if t == nil {
			continue
		}
		p.stats.dispatched.Add(1)
		p.dispatch(ctx, t)
	}
}

// Close 停止 pool 并等待所有 worker 退出，等价于 Shutdown(context.Background())。
func (p *Pool[C]) Close() error {
	return p.Shutdown(context.Background())
}

// Shutdown 停止接收任务，取消 worker 的 context 并等待 worker 退出。
//
// 队列中尚未分发的任务不会被执行，其数量计入 Stats().Abandoned。
// 正在执行的任务会收到已取消的 ctx，Shutdown 等待它们返回。
// ctx 结束时立即返回 ctx 的错误，worker 在后台继续退出，可通过 Done 等待。
// 可重复调用。
func (p *Pool[C]) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.cancel()

		go func() {
			p.wg.Wait()

			p.mu.Lock()
			abandoned := p.queue.reset()
			p.mu.Unlock()
			p.stats.abandoned.Store(uint64(abandoned))

			if err := p.metrics.close(); err != nil {
				p.logger.Warn(context.Background(), "xpool: unregister metrics failed", xlog.Err(err))
			}
			p.logger.Info(context.Background(), "xpool: stopped",
				xlog.Pool(p.name), xlog.Count(int64(abandoned)))
			close(p.done)
		}()
	})

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done 返回在所有 worker 退出后关闭的 channel。
func (p *Pool[C]) Done() <-chan struct{} {
	return p.done
}

// Len 返回当前排队的任务数。
func (p *Pool[C]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// Name 返回 pool 名称。
func (p *Pool[C]) Name() string { return p.name }

// Mode 返回分发模式。
func (p *Pool[C]) Mode() Mode { return p.mode }

// Workers 返回 worker 数量。
func (p *Pool[C]) Workers() int { return p.workers }

// MaxRequests 返回队列容量。
func (p *Pool[C]) MaxRequests() int { return p.maxRequests }

// Stats 返回统计快照。
func (p *Pool[C]) Stats() Stats {
	return Stats{
		Name:            p.name,
		Mode:            p.mode,
		Workers:         p.workers,
		MaxRequests:     p.maxRequests,
		Queued:          p.Len(),
		Submitted:       p.stats.submitted.Load(),
		Rejected:        p.stats.rejected.Load(),
		Dispatched:      p.stats.dispatched.Load(),
		Expired:         p.stats.expired.Load(),
		AcquireFailures: p.stats.acquireFailures.Load(),
		Panics:          p.stats.panics.Load(),
		SpuriousWakeups: p.stats.spurious.Load(),
		Abandoned:       p.stats.abandoned.Load(),
	}
}
