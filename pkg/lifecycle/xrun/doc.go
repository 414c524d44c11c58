// Package xrun 管理进程内一组长期运行服务的启动与协调关闭。
//
// 基于 [errgroup] 和带原因的 context 取消：任一服务返回错误、收到终止信号
// 或调用方主动 Cancel 时，其余服务的 ctx 被取消。Wait 返回第一个有意义的
// 退出原因，普通的 context.Canceled 被过滤。
//
// 常见组合：
//
//	err := xrun.Run(ctx, []xrun.Option{xrun.WithName("xtpoolctl")},
//	    xrun.ServiceFunc(acceptLoop),
//	    xrun.Ticker(time.Second, reapSessions),
//	    xrun.HTTPServer(metricsServer, 5*time.Second),
//	    xrun.OnStop(10*time.Second, pool.Shutdown),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
//
// [errgroup]: https://pkg.go.dev/golang.org/x/sync/errgroup
package xrun
