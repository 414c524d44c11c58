//go:build !windows

package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xtpool/pkg/config/xconf"
	"github.com/omeyang/xtpool/pkg/lifecycle/xrun"
	"github.com/omeyang/xtpool/pkg/observability/xlog"
	"github.com/omeyang/xtpool/pkg/observability/xmetrics"
	"github.com/omeyang/xtpool/pkg/storage/xconnpool"
	"github.com/omeyang/xtpool/pkg/util/xpool"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动 TCP 行协议服务",
		Description: `每个客户端连接是一个会话任务。客户端每发送一行，服务借一个数据库连接
做一次健康查询，然后回复 "OK <行内容>"；队列满时回复 "ERR busy"。

reactor 模式下 worker 负责读、处理和写；proactor 模式下连接的所有者
负责读写，worker 只负责处理。配置文件中 log.level 的修改会自动生效。`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "配置文件 (.yaml/.yml/.json)"},
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "监听地址"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "分发模式 (reactor/proactor)"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "worker 数量"},
			&cli.IntFlag{Name: "max-requests", Usage: "队列容量"},
			&cli.BoolFlag{Name: "reuse-port", Usage: "设置 SO_REUSEPORT"},
			&cli.StringFlag{Name: "metrics", Usage: "/metrics 监听地址，为空不启动"},
			&cli.StringFlag{Name: "db-driver", Usage: "数据库驱动 (pgx/postgres/sqlite3)"},
			&cli.StringFlag{Name: "db-dsn", Usage: "数据库 DSN"},
		},
		Action: runServe,
	}
}

// applyServeFlags 用显式设置的 flag 覆盖配置文件中的值。
func applyServeFlags(cmd *cli.Command, cfg *serveConfig) error {
	if cmd.IsSet("listen") {
		cfg.Listen.Addr = cmd.String("listen")
	}
	if cmd.IsSet("reuse-port") {
		cfg.Listen.ReusePort = cmd.Bool("reuse-port")
	}
	if cmd.IsSet("metrics") {
		cfg.Listen.MetricsAddr = cmd.String("metrics")
	}
	if cmd.IsSet("mode") {
		mode, err := xpool.ParseMode(cmd.String("mode"))
		if err != nil {
			return &usageError{err: err}
		}
		cfg.Pool.Mode = mode
	}
	if cmd.IsSet("workers") {
		cfg.Pool.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("max-requests") {
		cfg.Pool.MaxRequests = int(cmd.Int("max-requests"))
	}
	if cmd.IsSet("db-driver") {
		cfg.DB.Driver = cmd.String("db-driver")
	}
	if cmd.IsSet("db-dsn") {
		cfg.DB.DSN = cmd.String("db-dsn")
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, src, err := loadServeConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(cmd, cfg.Log)
	if err != nil {
		return err
	}
	defer cleanup() //nolint:errcheck // 退出时尽力关闭日志文件

	observer, err := xmetrics.NewOTelObserver(xmetrics.WithInstrumentationName("xtpoolctl"))
	if err != nil {
		return err
	}

	db, err := xconnpool.NewSQL(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // pool 已停止，关闭失败无可补救

	pool, err := xpool.NewFromConfig[*sql.Conn](cfg.Pool, db,
		xpool.WithLogger(logger), xpool.WithObserver(observer))
	if err != nil {
		return &usageError{err: err}
	}
	// xrun 退出时 pool 已通过 OnStop 停止，这里兜底
	defer pool.Close() //nolint:errcheck // 重复关闭返回 nil

	ln, err := listen(ctx, cfg.Listen)
	if err != nil {
		return err
	}
	srv := newServer[*sql.Conn](cfg.Listen, pool, sqlHandler, logger)

	services := []xrun.Service{
		xrun.Named("accept", xrun.ServiceFunc(func(ctx context.Context) error { return srv.serve(ctx, ln) })),
		xrun.Named("reaper", xrun.Ticker(cfg.Listen.ReapInterval, srv.reaper())),
		xrun.Named("pool", xrun.OnStop(cfg.Listen.ShutdownTimeout, pool.Shutdown)),
	}
	if cfg.Listen.MetricsAddr != "" {
		reg, err := newMetricsRegistry(newPoolCollector(pool.Stats, db.Stats), srv.active)
		if err != nil {
			_ = ln.Close()
			return err
		}
		services = append(services, xrun.Named("metrics",
			xrun.HTTPServer(newMetricsServer(cfg.Listen.MetricsAddr, reg), cfg.Listen.ShutdownTimeout)))
	}
	if src != nil {
		w, err := xconf.Watch(src, reloadLogLevel(logger))
		if err != nil {
			_ = ln.Close()
			return err
		}
		services = append(services, xrun.Named("config", xrun.ServiceFunc(w.Run)))
	}

	logger.Info(ctx, "xtpoolctl: serving",
		xlog.Pool(pool.Name()), xlog.Mode(pool.Mode().String()),
		xlog.Count(int64(pool.Workers())), slog.String("db_driver", cfg.DB.Driver))
	return xrun.Run(ctx, []xrun.Option{xrun.WithName("xtpoolctl"), xrun.WithLogger(logger)}, services...)
}

// reloadLogLevel 在配置文件变化后应用新的 log.level。
func reloadLogLevel(logger xlog.LoggerWithLevel) xconf.WatchCallback {
	return func(c xconf.Config, err error) {
		ctx := context.Background()
		if err != nil {
			logger.Warn(ctx, "xtpoolctl: config reload failed", xlog.Err(err))
			return
		}
		lc := xlog.Config{Level: logger.GetLevel()}
		if err := c.Unmarshal("log", &lc); err != nil {
			logger.Warn(ctx, "xtpoolctl: decode log config failed", xlog.Err(err))
			return
		}
		if lc.Level == logger.GetLevel() {
			return
		}
		logger.SetLevel(lc.Level)
		logger.Info(ctx, "xtpoolctl: log level changed", slog.String("level", lc.Level.String()))
	}
}
