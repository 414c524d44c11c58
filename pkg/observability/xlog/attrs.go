package xlog

import (
	"log/slog"
	"time"
)

// 标准属性键，日志查询按这些键聚合。
const (
	KeyError     = "error"
	KeyStack     = "stack"
	KeyComponent = "component"
	KeyOperation = "operation"
	KeyCount     = "count"
	KeyDuration  = "duration"
	KeyPool      = "pool"
	KeyWorkerID  = "worker_id"
	KeyMode      = "mode"
	KeyTaskID    = "task_id"
	KeyPanic     = "panic"
)

// Err 错误属性。err 为 nil 时值为空字符串。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Component 组件名属性。
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

// Operation 操作名属性。
func Operation(name string) slog.Attr { return slog.String(KeyOperation, name) }

// Count 计数属性。
func Count(n int64) slog.Attr { return slog.Int64(KeyCount, n) }

// Duration 耗时属性。
func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

// Pool 线程池名称属性。
func Pool(name string) slog.Attr { return slog.String(KeyPool, name) }

// WorkerID worker 编号属性。
func WorkerID(id int) slog.Attr { return slog.Int(KeyWorkerID, id) }

// Mode 分发模式属性。
func Mode(mode string) slog.Attr { return slog.String(KeyMode, mode) }

// TaskID 任务标识属性。
func TaskID(id string) slog.Attr { return slog.String(KeyTaskID, id) }

// Panic panic 值属性。
func Panic(v any) slog.Attr { return slog.Any(KeyPanic, v) }
