// Package xconf 提供基于 koanf 的配置加载，供 xtpool 的各组件和命令行工具使用。
//
// # 设计理念
//
// xconf 只负责"读"：文件/字节数据的加载、反序列化和热重载。
// 字段校验与默认值由各组件自己负责（例如 xpool.Config.Validate、
// xconnpool.SQLConfig 的 fail-fast 校验），xconf 不关心业务语义。
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 典型用法
//
//	cfg, err := xconf.New("/etc/xtpool/serve.yaml")
//	if err != nil {
//	    return err
//	}
//	poolCfg, err := xconf.Load[xpool.Config](cfg, "pool")
//
// # 并发安全
//
// Reload 通过互斥锁串行化；解析成功后以 atomic.Pointer 原子替换 koanf 实例。
// Client() 返回的是当时的快照，Reload 之后旧指针仍可用但数据已过期。
//
// # 配置监视
//
// [Watcher] 基于 fsnotify 监视配置文件所在目录，内置防抖，兼容 vim/emacs
// 的原子写入（rename）。[Watcher.Run] 阻塞直到 ctx 取消，可直接作为
// xrun 的服务函数运行。从字节数据创建的 Config 不支持监视。
package xconf
