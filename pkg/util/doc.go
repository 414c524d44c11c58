// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xpool: 固定 worker 数的任务池，有界 FIFO 队列，reactor/proactor 两种分发模式
package util
