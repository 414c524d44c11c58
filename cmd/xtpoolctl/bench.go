//go:build !windows

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/storage/xconnpool"
	"github.com/omeyang/xtpool/pkg/util/xpool"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "用合成任务压测 pool",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "tasks", Aliases: []string{"n"}, Usage: "任务总数", Value: 10000},
			&cli.IntFlag{Name: "clients", Usage: "并发提交者数量", Value: 32},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "分发模式 (reactor/proactor)", Value: "reactor"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "worker 数量", Value: xpool.DefaultWorkers},
			&cli.IntFlag{Name: "max-requests", Usage: "队列容量", Value: 1024},
			&cli.IntFlag{Name: "conns", Usage: "连接池大小", Value: 4},
			&cli.FloatFlag{Name: "fail-rate", Usage: "读失败概率 [0,1]"},
			&cli.DurationFlag{Name: "work", Usage: "每个任务的处理耗时", Value: 50 * time.Microsecond},
		},
		Action: runBench,
	}
}

type benchParams struct {
	tasks, clients int
	mode           xpool.Mode
	workers        int
	maxRequests    int
	conns          int
	failRate       float64
	work           time.Duration
}

func benchParamsFrom(cmd *cli.Command) (benchParams, error) {
	mode, err := xpool.ParseMode(cmd.String("mode"))
	if err != nil {
		return benchParams{}, &usageError{err: err}
	}
	p := benchParams{
		tasks:       int(cmd.Int("tasks")),
		clients:     int(cmd.Int("clients")),
		mode:        mode,
		workers:     int(cmd.Int("workers")),
		maxRequests: int(cmd.Int("max-requests")),
		conns:       int(cmd.Int("conns")),
		failRate:    cmd.Float("fail-rate"),
		work:        cmd.Duration("work"),
	}
	switch {
	case p.tasks < 1:
		return p, usagef("--tasks must be positive")
	case p.clients < 1:
		return p, usagef("--clients must be positive")
	case p.conns < 1:
		return p, usagef("--conns must be positive")
	case p.failRate < 0 || p.failRate > 1:
		return p, usagef("--fail-rate must be within [0,1]")
	case p.work < 0:
		return p, usagef("--work must not be negative")
	}
	return p, nil
}

// benchTask 合成任务：读按概率失败，处理占用连接 work 时长。
type benchTask struct {
	xpool.TaskFlags
	failRate  float64
	work      time.Duration
	processed chan struct{}
}

func (t *benchTask) ReadOnce(context.Context) bool { return rand.Float64() >= t.failRate }

func (t *benchTask) Write(context.Context) bool { return true }

func (t *benchTask) Process(ctx context.Context, _ int) {
	if t.work > 0 {
		timer := time.NewTimer(t.work)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	t.processed <- struct{}{}
}

type benchResult struct {
	accepted, rejected, expired, completed atomic.Int64
}

func runBench(ctx context.Context, cmd *cli.Command) error {
	p, err := benchParamsFrom(cmd)
	if err != nil {
		return err
	}
	logger, cleanup, err := buildLogger(cmd, xlog.Config{})
	if err != nil {
		return err
	}
	defer cleanup() //nolint:errcheck // 输出到 stderr，无需关闭

	res, elapsed, stats, err := bench(ctx, p, logger)
	if err != nil {
		return err
	}
	return printBench(cmd.Root().Writer, p, res, elapsed, stats)
}

func bench(ctx context.Context, p benchParams, logger xlog.Logger) (*benchResult, time.Duration, xpool.Stats, error) {
	var next atomic.Int64
	conns, err := xconnpool.NewFixed(ctx, xconnpool.FixedConfig{Size: p.conns},
		func(context.Context) (int, error) { return int(next.Add(1)), nil }, nil)
	if err != nil {
		return nil, 0, xpool.Stats{}, err
	}
	defer conns.Close() //nolint:errcheck // 合成连接无需释放

	pool, err := xpool.New[int](p.mode, conns,
		xpool.WithName("bench"),
		xpool.WithWorkers(p.workers),
		xpool.WithMaxRequests(p.maxRequests),
		xpool.WithLogger(logger))
	if err != nil {
		return nil, 0, xpool.Stats{}, &usageError{err: err}
	}

	res := &benchResult{}
	var issued atomic.Int64
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for range p.clients {
		g.Go(func() error {
			for issued.Add(1) <= int64(p.tasks) {
				task := &benchTask{failRate: p.failRate, work: p.work, processed: make(chan struct{}, 1)}
				if err := drive(gctx, pool, task, res); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err = g.Wait()
	elapsed := time.Since(start)
	if cerr := pool.Close(); err == nil {
		err = cerr
	}
	return res, elapsed, pool.Stats(), err
}

// drive 提交一个任务并等待结果。reactor 模式下按读、写两个阶段推进，
// 与 serve 中会话所有者的做法一致。
func drive(ctx context.Context, pool *xpool.Pool[int], t *benchTask, res *benchResult) error {
	if pool.Mode() == xpool.ModeProactor {
		if !t.ReadOnce(ctx) {
			res.expired.Add(1)
			return nil
		}
		if err := submitAndWait(ctx, t, res, func() error { return pool.Submit(t) }, t.processed); err != nil {
			return err
		}
		res.completed.Add(1)
		return nil
	}

	if err := submitAndWait(ctx, t, res, func() error { return pool.SubmitState(t, xpool.PhaseRead) }, nil); err != nil {
		return err
	}
	if _, expired := t.TakeImproved(); expired {
		res.expired.Add(1)
		return nil
	}
	select {
	case <-t.processed:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := submitAndWait(ctx, t, res, func() error { return pool.SubmitState(t, xpool.PhaseWrite) }, nil); err != nil {
		return err
	}
	t.TakeImproved()
	res.completed.Add(1)
	return nil
}

// submitAndWait 提交直到被接受（队列满时让出后重试），然后等待 done，
// done 为 nil 时等待任务的 improved 通知。
func submitAndWait(ctx context.Context, t *benchTask, res *benchResult,
	submit func() error, done <-chan struct{}) error {
	for {
		err := submit()
		if err == nil {
			break
		}
		if !errors.Is(err, xpool.ErrQueueFull) {
			return err
		}
		res.rejected.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	res.accepted.Add(1)

	if done == nil {
		done = t.Improvements()
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func printBench(w io.Writer, p benchParams, res *benchResult, elapsed time.Duration, s xpool.Stats) error {
	rate := float64(res.completed.Load()) / elapsed.Seconds()
	_, err := fmt.Fprintf(w, `mode        %s
workers     %d
queue       %d
tasks       %d
accepted    %d
rejected    %d
expired     %d
completed   %d
dispatched  %d
elapsed     %s
throughput  %.0f tasks/s
`, p.mode, p.workers, p.maxRequests, p.tasks,
		res.accepted.Load(), res.rejected.Load(), res.expired.Load(), res.completed.Load(),
		s.Dispatched, elapsed.Round(time.Millisecond), rate)
	return err
}
