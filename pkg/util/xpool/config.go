package xpool

import "github.com/omeyang/xtpool/pkg/storage/xconnpool"

// Config 可从配置文件加载的 pool 参数。
//
// mode 可写为 "reactor"/"proactor"，也可写为整数：1 为 reactor，其他值为 proactor。
type Config struct {
	Name        string `koanf:"name"`
	Mode        Mode   `koanf:"mode"`
	Workers     int    `koanf:"workers"`
	MaxRequests int    `koanf:"max_requests"`
}

// DefaultConfig 返回 reactor 模式的默认配置，用作加载配置文件前的底值。
func DefaultConfig() Config {
	return Config{
		Name:        DefaultName,
		Mode:        ModeReactor,
		Workers:     DefaultWorkers,
		MaxRequests: DefaultMaxRequests,
	}
}

// Options 把配置转换为 Option 列表。
func (c Config) Options() []Option {
	return []Option{
		WithName(c.Name),
		WithWorkers(c.Workers),
		WithMaxRequests(c.MaxRequests),
	}
}

// NewFromConfig 按 cfg 创建 pool，opts 在 cfg 之后应用，可覆盖 cfg 中的值。
func NewFromConfig[C any](cfg Config, conns xconnpool.Pool[C], opts ...Option) (*Pool[C], error) {
	mode := cfg.Mode
	if !mode.Valid() {
		mode = ModeFromActorModel(int(mode))
	}
	return New(mode, conns, append(cfg.Options(), opts...)...)
}
