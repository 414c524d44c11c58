package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// ErrUnknownLevel 表示无法识别的日志级别字符串。
	ErrUnknownLevel = errors.New("xlog: unknown level")

	// ErrUnknownFormat 表示无法识别的输出格式。
	ErrUnknownFormat = errors.New("xlog: unknown format")

	// ErrInvalidRotation 表示轮转配置无效。
	ErrInvalidRotation = errors.New("xlog: invalid rotation config")

	// ErrNilOutput 表示输出目标为 nil。
	ErrNilOutput = errors.New("xlog: nil output")
)

// 轮转默认值。
const (
	DefaultMaxSizeMB  = 500
	DefaultMaxBackups = 7
	DefaultMaxAgeDays = 30
)

// Rotation 基于文件大小的轮转配置，由 lumberjack 实现。
// 零值字段使用默认值。
type Rotation struct {
	Filename   string `koanf:"filename"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// Config 可从配置文件加载的日志配置。
type Config struct {
	Level     Level    `koanf:"level"`
	Format    string   `koanf:"format"`
	AddSource bool     `koanf:"add_source"`
	Rotation  Rotation `koanf:"rotation"`
}

// Builder 日志配置构建器。一次性使用：Build 之后不要复用。
type Builder struct {
	output    io.Writer
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	enrich    bool
	closer    io.Closer
	err       error
}

// New 创建构建器。默认输出 stderr、Info 级别、text 格式、启用 context 属性注入。
func New() *Builder {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)
	return &Builder{
		output:   os.Stderr,
		levelVar: lv,
		format:   "text",
		enrich:   true,
	}
}

// FromConfig 用 Config 初始化构建器。Rotation.Filename 为空时输出到 stderr。
func FromConfig(c Config) *Builder {
	b := New().SetLevel(c.Level).SetFormat(c.Format).SetAddSource(c.AddSource)
	if c.Rotation.Filename != "" {
		b.SetRotation(c.Rotation)
	}
	return b
}

// SetOutput 设置输出目标。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if b.err != nil {
		return b
	}
	if w == nil {
		b.err = ErrNilOutput
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置日志级别。
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别。
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json。空字符串视为 text。
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = f
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// SetAddSource 是否记录源码位置。
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 是否启用 context 属性注入，默认启用。
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enrich = enable
	return b
}

// SetRotation 输出到按大小轮转的文件。
func (b *Builder) SetRotation(r Rotation) *Builder {
	if b.err != nil {
		return b
	}
	if r.Filename == "" {
		b.err = fmt.Errorf("%w: empty filename", ErrInvalidRotation)
		return b
	}
	if r.MaxSizeMB < 0 || r.MaxBackups < 0 || r.MaxAgeDays < 0 {
		b.err = fmt.Errorf("%w: negative limit", ErrInvalidRotation)
		return b
	}
	lj := &lumberjack.Logger{
		Filename:   r.Filename,
		MaxSize:    orDefault(r.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: orDefault(r.MaxBackups, DefaultMaxBackups),
		MaxAge:     orDefault(r.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   r.Compress,
	}
	b.output = lj
	b.closer = lj
	return b
}

// Build 构建 Logger。cleanup 关闭轮转文件，可重复调用。
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{Level: b.levelVar, AddSource: b.addSource}
	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}
	if b.enrich {
		handler = &EnrichHandler{base: handler}
	}

	var once sync.Once
	closer := b.closer
	cleanup := func() error {
		var err error
		once.Do(func() {
			if closer != nil {
				err = closer.Close()
			}
		})
		return err
	}
	return newLogger(handler, b.levelVar, b.addSource), cleanup, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
