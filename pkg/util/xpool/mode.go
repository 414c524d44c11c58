package xpool

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode 任务分发模式，构造时确定，之后不可变。
type Mode int

const (
	// ModeReactor worker 负责读写：读阶段读取并处理，写阶段只写出。
	ModeReactor Mode = 1
	// ModeProactor 读写由调用方完成，worker 只负责处理。
	ModeProactor Mode = 2
)

// ModeFromActorModel 按整数约定转换：1 为 reactor，其他值均为 proactor。
func ModeFromActorModel(n int) Mode {
	if n == int(ModeReactor) {
		return ModeReactor
	}
	return ModeProactor
}

// ParseMode 解析 "reactor"/"proactor"（大小写不敏感），也接受整数形式。
func ParseMode(s string) (Mode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "reactor":
		return ModeReactor, nil
	case "proactor":
		return ModeProactor, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return ModeFromActorModel(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Valid 报告 m 是否为已定义的模式。
func (m Mode) Valid() bool {
	return m == ModeReactor || m == ModeProactor
}

func (m Mode) String() string {
	switch m {
	case ModeReactor:
		return "reactor"
	case ModeProactor:
		return "proactor"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (m *Mode) UnmarshalText(data []byte) error {
	parsed, err := ParseMode(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
