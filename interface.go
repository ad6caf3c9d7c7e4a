package rlog

import (
	"sync"
	"sync/atomic"
)

// Package level state: the default adapter and the logger behind the package functions.
var (
	initMu         sync.Mutex
	defaultAdapter atomic.Pointer[Adapter]
	std            atomic.Pointer[Logger]
)

// Default returns the process-wide adapter, creating it with DefaultValues on first use.
func Default() *Adapter {
	if a := defaultAdapter.Load(); a != nil {
		return a
	}
	initMu.Lock()
	defer initMu.Unlock()
	if a := defaultAdapter.Load(); a != nil {
		return a
	}

	a, err := NewAdapter()
	if err != nil {
		// an empty store has no writers and cannot fail
		a, _ = NewAdapter(WithStore(NewStore(nil)))
	}
	defaultAdapter.Store(a)
	std.Store(NewLogger(a, WithCallerSkip(1)))
	return a
}

// SetDefault replaces the process-wide adapter. The previous adapter is returned
// and is not shut down. A nil adapter makes the next Default call create a fresh one.
func SetDefault(a *Adapter) *Adapter {
	initMu.Lock()
	defer initMu.Unlock()
	prev := defaultAdapter.Swap(a)
	var next *Logger
	if a != nil {
		next = NewLogger(a, WithCallerSkip(1))
	}
	if old := std.Swap(next); old != nil {
		old.Detach()
	}
	return prev
}

func stdLogger() *Logger {
	if l := std.Load(); l != nil {
		return l
	}
	Default()
	return std.Load()
}

// EnableFileLogging adds rolling file output to the default adapter.
// See Adapter.EnableFileLogging.
func EnableFileLogging(dir, prefix string) error {
	return Default().EnableFileLogging(dir, prefix)
}

// Sync flushes buffered output of the default adapter.
func Sync() error {
	return Default().Sync()
}

// Shutdown flushes and closes all writers of the default adapter.
func Shutdown() error {
	return Default().Shutdown()
}

// IsDebugEnabled reports whether debug entries are written.
func IsDebugEnabled() bool { return stdLogger().IsDebugEnabled() }

// Debug logs v at debug level.
func Debug(v any) { stdLogger().Debug(v) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { stdLogger().Debugf(format, args...) }

// DebugFn logs the message produced by fn at debug level.
func DebugFn(fn func() string) { stdLogger().DebugFn(fn) }

// DebugErr logs err at debug level.
func DebugErr(err error) { stdLogger().DebugErr(err) }

// DebugErrMsg logs err with a message at debug level.
func DebugErrMsg(err error, msg string) { stdLogger().DebugErrMsg(err, msg) }

// DebugErrFn logs err with the message produced by fn at debug level.
func DebugErrFn(err error, fn func() string) { stdLogger().DebugErrFn(err, fn) }

// IsInfoEnabled reports whether info entries are written.
func IsInfoEnabled() bool { return stdLogger().IsInfoEnabled() }

// Info logs v at info level.
func Info(v any) { stdLogger().Info(v) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { stdLogger().Infof(format, args...) }

// InfoFn logs the message produced by fn at info level.
func InfoFn(fn func() string) { stdLogger().InfoFn(fn) }

// InfoErr logs err at info level.
func InfoErr(err error) { stdLogger().InfoErr(err) }

// InfoErrMsg logs err with a message at info level.
func InfoErrMsg(err error, msg string) { stdLogger().InfoErrMsg(err, msg) }

// InfoErrFn logs err with the message produced by fn at info level.
func InfoErrFn(err error, fn func() string) { stdLogger().InfoErrFn(err, fn) }

// IsWarnEnabled reports whether warn entries are written.
func IsWarnEnabled() bool { return stdLogger().IsWarnEnabled() }

// Warn logs v at warn level.
func Warn(v any) { stdLogger().Warn(v) }

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) { stdLogger().Warnf(format, args...) }

// WarnFn logs the message produced by fn at warn level.
func WarnFn(fn func() string) { stdLogger().WarnFn(fn) }

// WarnErr logs err at warn level.
func WarnErr(err error) { stdLogger().WarnErr(err) }

// WarnErrMsg logs err with a message at warn level.
func WarnErrMsg(err error, msg string) { stdLogger().WarnErrMsg(err, msg) }

// WarnErrFn logs err with the message produced by fn at warn level.
func WarnErrFn(err error, fn func() string) { stdLogger().WarnErrFn(err, fn) }

// IsErrorEnabled reports whether error entries are written.
func IsErrorEnabled() bool { return stdLogger().IsErrorEnabled() }

// Error logs v at error level.
func Error(v any) { stdLogger().Error(v) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { stdLogger().Errorf(format, args...) }

// ErrorFn logs the message produced by fn at error level.
func ErrorFn(fn func() string) { stdLogger().ErrorFn(fn) }

// ErrorErr logs err at error level.
func ErrorErr(err error) { stdLogger().ErrorErr(err) }

// ErrorErrMsg logs err with a message at error level.
func ErrorErrMsg(err error, msg string) { stdLogger().ErrorErrMsg(err, msg) }

// ErrorErrFn logs err with the message produced by fn at error level.
func ErrorErrFn(err error, fn func() string) { stdLogger().ErrorErrFn(err, fn) }
