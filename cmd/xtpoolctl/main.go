//go:build !windows

// xtpoolctl 运行和压测 xpool 任务池。
//
// 用法:
//
//	xtpoolctl [全局选项] <命令> [命令参数]
//
// 命令:
//
//	serve      启动 TCP 行协议服务，每个客户端连接是一个会话任务
//	bench      用合成任务压测 pool
//	version    打印版本信息
//
// 全局选项:
//
//	--log-level   日志级别 (debug/info/warn/error)，默认 info
//	--log-format  日志格式 (text/json)，默认 text
//
// 退出码:
//
//	0: 成功（serve 收到终止信号也视为成功）
//	1: 运行失败
//	2: 参数或配置错误
//
// 示例:
//
//	xtpoolctl serve --config xtpool.yaml
//	xtpoolctl serve --listen :7070 --mode proactor --workers 16
//	xtpoolctl bench --tasks 100000 --clients 64 --mode reactor --fail-rate 0.01
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xtpool/pkg/lifecycle/xrun"
	"github.com/omeyang/xtpool/pkg/observability/xlog"
)

// 版本信息，通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// usageError 表示参数或配置错误，退出码为 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xtpoolctl",
		Usage:     "xpool 任务池服务与压测工具",
		Version:   versionString(),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			benchCommand(),
			versionCommand(),
		},
		// 退出码由 run 统一映射，不让 cli 直接 os.Exit
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil, errors.Is(err, xrun.ErrSignal):
		return 0
	case isUsage(err):
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
}

func isUsage(err error) bool {
	var ue *usageError
	if errors.As(err, &ue) {
		return true
	}
	var ec cli.ExitCoder
	return errors.As(err, &ec) && ec.ExitCode() == 2
}

// buildLogger 按全局 flag 构建 logger 并设为默认值。
func buildLogger(cmd *cli.Command, base xlog.Config) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.FromConfig(base)
	if base.Rotation.Filename == "" {
		b.SetOutput(cmd.Root().ErrWriter)
	}
	if cmd.IsSet("log-level") {
		b.SetLevelString(cmd.String("log-level"))
	}
	if cmd.IsSet("log-format") || base.Format == "" {
		b.SetFormat(cmd.String("log-format"))
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, &usageError{err: err}
	}
	xlog.SetDefault(logger)
	return logger, cleanup, nil
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", Version, GitCommit, BuildTime, runtime.Version())
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "打印版本信息",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "xtpoolctl %s\n", versionString())
			return err
		},
	}
}
