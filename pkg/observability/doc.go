// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog，支持 context 属性注入和文件轮转
//   - xmetrics: Observer/Span 抽象及其 OpenTelemetry 实现
package observability
