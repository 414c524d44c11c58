package xconf

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 在配置文件变更并重载后调用，err 为重载结果。
// 回调在 Run 所在的 goroutine 中同步执行。
type WatchCallback func(cfg Config, err error)

// Watcher 配置文件监视器。
type Watcher struct {
	cfg      *koanfConfig
	callback WatchCallback
	debounce time.Duration
}

// Watch 创建监视器。返回的 Watcher 需要调用 Run 才开始监视。
//
//	w, err := xconf.Watch(cfg, func(c xconf.Config, err error) { ... })
//	g.Go(w.Run)
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, fmt.Errorf("xconf: unsupported config type %T", cfg)
	}
	if kc.path == "" {
		return nil, ErrNotReloadable
	}

	o := defaultWatchOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Watcher{cfg: kc, callback: callback, debounce: o.debounce}, nil
}

// Run 监视配置文件直到 ctx 取消，返回 ctx.Err()。
//
// 监视的是文件所在目录而非文件本身：编辑器保存时可能先删除再创建，
// 直接监视文件会丢失后续事件。Run 返回后不会再有回调执行。
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("xconf: create watcher: %w", err)
	}
	defer fsw.Close() //nolint:errcheck // best-effort close on exit

	dir := filepath.Dir(w.cfg.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("xconf: watch directory %s: %w", dir, err)
	}

	filename := filepath.Base(w.cfg.path)
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event, filename) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			err := w.cfg.Reload()
			if w.callback != nil {
				w.callback(w.cfg, err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if w.callback != nil {
				w.callback(w.cfg, fmt.Errorf("xconf: watch error: %w", err))
			}
		}
	}
}

// relevant 判断事件是否可能代表目标文件的内容更新。
// Write 为直接修改，Create/Rename 覆盖原子写入的编辑器。
func relevant(event fsnotify.Event, filename string) bool {
	if filepath.Base(event.Name) != filename {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
