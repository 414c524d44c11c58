// Package xconnpool 提供固定容量的连接池抽象，供 xpool 在任务处理期间借用连接。
//
// 核心是 [Pool] 接口和 [With] 作用域借用：
//
//	err := xconnpool.With(ctx, pool, func(conn *sql.Conn) {
//	    _ = conn.PingContext(ctx)
//	})
//
// With 在 fn 的所有退出路径（包括 panic）上归还连接，panic 在归还后继续传播。
//
// # 实现
//
//   - [Fixed]：启动时按工厂函数一次性建立 Size 个连接，空闲链表 + 互斥锁 + 计数信号量
//   - [SQL]：基于 *sql.DB，借出 *sql.Conn；获取受熔断器保护并按配置重试
//   - [Redis]：基于 go-redis，借出独占的 *redis.Conn
//
// 所有实现都是并发安全的。
package xconnpool
