package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 表示因收到系统信号而退出，用 errors.Is 判断。
	ErrSignal = errors.New("xrun: received signal")
	// ErrNilService 表示注册了 nil 服务。
	ErrNilService = errors.New("xrun: nil service")
	// ErrNilServer 表示 HTTPServer 传入了 nil server。
	ErrNilServer = errors.New("xrun: nil server")
	// ErrInvalidInterval 表示 Ticker 的间隔不是正数。
	ErrInvalidInterval = errors.New("xrun: interval must be positive")
)

// SignalError 携带触发退出的信号。
//
//	var sigErr *xrun.SignalError
//	if errors.As(err, &sigErr) {
//	    log.Printf("stopped by %v", sigErr.Signal)
//	}
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	if e.Signal == nil {
		return ErrSignal.Error()
	}
	return fmt.Sprintf("%s %s", ErrSignal, e.Signal)
}

// Unwrap 使 errors.Is(err, ErrSignal) 成立。
func (e *SignalError) Unwrap() error { return ErrSignal }
