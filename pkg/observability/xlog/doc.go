// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 强制 context 传递：Logger 的每个方法都接收 ctx
//   - 从 context 注入附加属性（[ContextWith] + EnrichHandler，默认启用）
//   - 动态级别调整（运行时热更新，配合 xconf.Watch 使用）
//   - 全局 Logger 便利函数
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，后续 Set 操作的结果被忽略，
// 错误在 Build 时返回。
//
//	logger, cleanup, err := xlog.New().
//	    SetLevelString("debug").
//	    SetFormat("json").
//	    SetRotation(xlog.Rotation{Filename: "/var/log/xtpool/serve.log"}).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
// # Context 属性
//
// xpool 的 worker 在分发任务前把 pool 名称和 worker 编号放进 ctx：
//
//	ctx = xlog.ContextWith(ctx, xlog.Pool(name), xlog.WorkerID(id))
//
// 之后任务实现中用同一个 ctx 记录的日志都会带上这两个字段，无需层层传递 logger。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// Level 实现 encoding.TextUnmarshaler，可直接从配置文件反序列化。
package xlog
