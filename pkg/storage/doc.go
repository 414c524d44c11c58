// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xconnpool: 连接池抽象，固定大小池以及 database/sql、Redis 后端
package storage
