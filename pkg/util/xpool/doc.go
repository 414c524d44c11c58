// Package xpool 提供固定 worker 数量、有界队列的任务池，支持 reactor 和 proactor 两种分发模式。
//
// # 结构
//
// 任务进入容量为 MaxRequests 的 FIFO 队列，由互斥锁保护；计数信号量记录待认领的任务数。
// New 启动 Workers 个 worker，每个 worker 在信号量上等待，被唤醒后取出队首任务分发。
// 信号量被唤醒但队列为空时 worker 直接回到等待。
//
// # 分发模式
//
// reactor：worker 负责 I/O。
//   - PhaseRead：ReadOnce 成功则 MarkImproved，并在借用的连接上调用 Process；
//     失败则 MarkExpired + MarkImproved，不借连接。
//   - 其他阶段：Write 成功则 MarkImproved，失败则 MarkExpired + MarkImproved。
//     写阶段从不借连接，也不调用 Process。
//
// proactor：I/O 由调用方完成，worker 只在借用的连接上调用 Process，不检查阶段。
//
// 连接通过 xconnpool.With 借用，Process 的所有退出路径（包括 panic）都会归还连接。
// 获取连接失败时任务被标记为 expired，Process 不会被调用。
//
// # 提交
//
// Submit/SubmitState 从不阻塞：队列已满返回 ErrQueueFull，队列和任务阶段都不会被修改。
// SubmitState 只在入队成功时设置阶段。
//
//	pool, err := xpool.New[*sql.Conn](xpool.ModeReactor, conns,
//	    xpool.WithWorkers(8),
//	    xpool.WithMaxRequests(10000),
//	)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pool.SubmitState(session, xpool.PhaseRead); errors.Is(err, xpool.ErrQueueFull) {
//	    // 稍后重试或关闭会话
//	}
//
// # 关闭
//
// 不调用 Close 时 worker 一直运行到进程退出。Close/Shutdown 停止接收任务、
// 取消 worker 的 context 并等待正在执行的任务返回；队列中尚未分发的任务不会执行，
// 数量记录在 Stats().Abandoned。Close/Shutdown 不可在任务方法内调用，否则会死锁。
//
// # 任务约定
//
// 任务由调用方持有。同一任务在本轮分发完成（improved 被标记）前不应再次提交。
// 嵌入 TaskFlags 即可获得阶段和标志的并发安全实现，所有者通过 Improvements
// 等待通知，通过 TakeImproved 读取结果。
//
// 注意 reactor 读阶段的 improved 在 Process 之前标记：所有者若需要等待处理结果，
// 应由 Process 自行通知。
package xpool
