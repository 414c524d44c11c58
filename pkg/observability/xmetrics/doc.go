// Package xmetrics 提供统一的观测接口（trace + metrics），默认实现基于 OpenTelemetry。
//
// 调用方通过 [Start] 开启一次观测跨度，结束时调用 Span.End：
//
//	ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
//	    Component: "xpool",
//	    Operation: "reactor.read",
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// observer 为 nil 时退化为空实现，因此库代码无需判空。
//
// [NewOTelObserver] 为每次 End 记录：
//   - xtpool.operation.total（Counter，属性 component/operation/status）
//   - xtpool.operation.duration（Histogram，单位秒）
package xmetrics
