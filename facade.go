package rlog

import (
	"fmt"
	"sync/atomic"
)

// Lazy produces a message on demand. It is invoked only when the entry is
// actually written, and then exactly once.
type Lazy func() string

// callDepth is the number of frames between a Provider method and the caller of
// a Logger method, e.g. Provider.Log, Logger.emit, Logger.Debug.
const callDepth = 3

// rebuildNotifier is implemented by providers that can change their levels at runtime.
type rebuildNotifier interface {
	OnRebuild(fn func()) (cancel func())
}

// Logger is the leveled façade over a Provider. Every logging method first checks
// a cached "minimum level covers this level" flag, so suppressed entries cost
// neither formatting nor a provider call.
//
// The flags are computed when the Logger is created and recomputed whenever the
// provider reports a rebuild, or when Refresh is called.
type Logger struct {
	provider Provider
	skip     int
	covers   atomic.Uint32 // bit n set when Level(n) is covered
	detach   func()
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithCallerSkip reports call sites n frames further up the stack, for wrappers
// around a Logger.
func WithCallerSkip(n int) LoggerOption {
	return func(l *Logger) {
		l.skip += n
	}
}

// NewLogger creates a Logger writing through p.
func NewLogger(p Provider, opts ...LoggerOption) *Logger {
	l := &Logger{provider: p}
	for _, opt := range opts {
		opt(l)
	}
	l.Refresh()
	if n, ok := p.(rebuildNotifier); ok {
		l.detach = n.OnRebuild(l.Refresh)
	}
	return l
}

// Detach stops refreshing the level flags on provider rebuilds. Loggers that are
// dropped before their provider should be detached. The Logger keeps working with
// the flags it has.
func (l *Logger) Detach() {
	if l.detach != nil {
		l.detach()
	}
}

// Provider returns the provider the Logger writes to.
func (l *Logger) Provider() Provider {
	return l.provider
}

// Refresh recomputes the cached level flags from the provider's minimum level.
func (l *Logger) Refresh() {
	lowest := l.provider.MinimumLevel()
	var bits uint32
	for lvl := LevelTrace; lvl < LevelOff; lvl++ {
		if lowest.Covers(lvl) {
			bits |= 1 << lvl
		}
	}
	l.covers.Store(bits)
}

func (l *Logger) covered(level Level) bool {
	return l.covers.Load()&(1<<level) != 0
}

func (l *Logger) enabled(level Level) bool {
	return l.covered(level) && l.provider.IsEnabled(l.skip+callDepth, level.Tag(), level)
}

func (l *Logger) emit(level Level, err error, msg any) {
	l.provider.Log(l.skip+callDepth, level.Tag(), level, err, msg)
}

// IsDebugEnabled reports whether debug entries are written.
func (l *Logger) IsDebugEnabled() bool {
	return l.enabled(LevelDebug)
}

// Debug logs v at debug level. v is converted to text only if the entry is written.
func (l *Logger) Debug(v any) {
	if l.covered(LevelDebug) {
		l.emit(LevelDebug, nil, v)
	}
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	if l.covered(LevelDebug) {
		l.emit(LevelDebug, nil, fmt.Sprintf(format, args...))
	}
}

// DebugFn logs the message produced by fn at debug level.
func (l *Logger) DebugFn(fn func() string) {
	if l.covered(LevelDebug) {
		l.emit(LevelDebug, nil, Lazy(fn))
	}
}

// DebugErr logs err at debug level.
func (l *Logger) DebugErr(err error) {
	if l.covered(LevelDebug) {
		l.emit(LevelDebug, err, nil)
	}
}

// DebugErrMsg logs err with a message at debug level.
func (l *Logger) DebugErrMsg(err error, msg string) {
	if l.covered(LevelDebug) {
		l.emit(LevelDebug, err, msg)
	}
}

// DebugErrFn logs err with the message produced by fn at debug level.
func (l *Logger) DebugErrFn(err error, fn func() string) {
	if l.covered(LevelDebug) {
		l.emit(LevelDebug, err, Lazy(fn))
	}
}

// IsInfoEnabled reports whether info entries are written.
func (l *Logger) IsInfoEnabled() bool {
	return l.enabled(LevelInfo)
}

// Info logs v at info level. v is converted to text only if the entry is written.
func (l *Logger) Info(v any) {
	if l.covered(LevelInfo) {
		l.emit(LevelInfo, nil, v)
	}
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	if l.covered(LevelInfo) {
		l.emit(LevelInfo, nil, fmt.Sprintf(format, args...))
	}
}

// InfoFn logs the message produced by fn at info level.
func (l *Logger) InfoFn(fn func() string) {
	if l.covered(LevelInfo) {
		l.emit(LevelInfo, nil, Lazy(fn))
	}
}

// InfoErr logs err at info level.
func (l *Logger) InfoErr(err error) {
	if l.covered(LevelInfo) {
		l.emit(LevelInfo, err, nil)
	}
}

// InfoErrMsg logs err with a message at info level.
func (l *Logger) InfoErrMsg(err error, msg string) {
	if l.covered(LevelInfo) {
		l.emit(LevelInfo, err, msg)
	}
}

// InfoErrFn logs err with the message produced by fn at info level.
func (l *Logger) InfoErrFn(err error, fn func() string) {
	if l.covered(LevelInfo) {
		l.emit(LevelInfo, err, Lazy(fn))
	}
}

// IsWarnEnabled reports whether warn entries are written.
func (l *Logger) IsWarnEnabled() bool {
	return l.enabled(LevelWarn)
}

// Warn logs v at warn level. v is converted to text only if the entry is written.
func (l *Logger) Warn(v any) {
	if l.covered(LevelWarn) {
		l.emit(LevelWarn, nil, v)
	}
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	if l.covered(LevelWarn) {
		l.emit(LevelWarn, nil, fmt.Sprintf(format, args...))
	}
}

// WarnFn logs the message produced by fn at warn level.
func (l *Logger) WarnFn(fn func() string) {
	if l.covered(LevelWarn) {
		l.emit(LevelWarn, nil, Lazy(fn))
	}
}

// WarnErr logs err at warn level.
func (l *Logger) WarnErr(err error) {
	if l.covered(LevelWarn) {
		l.emit(LevelWarn, err, nil)
	}
}

// WarnErrMsg logs err with a message at warn level.
func (l *Logger) WarnErrMsg(err error, msg string) {
	if l.covered(LevelWarn) {
		l.emit(LevelWarn, err, msg)
	}
}

// WarnErrFn logs err with the message produced by fn at warn level.
func (l *Logger) WarnErrFn(err error, fn func() string) {
	if l.covered(LevelWarn) {
		l.emit(LevelWarn, err, Lazy(fn))
	}
}

// IsErrorEnabled reports whether error entries are written.
func (l *Logger) IsErrorEnabled() bool {
	return l.enabled(LevelError)
}

// Error logs v at error level. v is converted to text only if the entry is written.
func (l *Logger) Error(v any) {
	if l.covered(LevelError) {
		l.emit(LevelError, nil, v)
	}
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	if l.covered(LevelError) {
		l.emit(LevelError, nil, fmt.Sprintf(format, args...))
	}
}

// ErrorFn logs the message produced by fn at error level.
func (l *Logger) ErrorFn(fn func() string) {
	if l.covered(LevelError) {
		l.emit(LevelError, nil, Lazy(fn))
	}
}

// ErrorErr logs err at error level.
func (l *Logger) ErrorErr(err error) {
	if l.covered(LevelError) {
		l.emit(LevelError, err, nil)
	}
}

// ErrorErrMsg logs err with a message at error level.
func (l *Logger) ErrorErrMsg(err error, msg string) {
	if l.covered(LevelError) {
		l.emit(LevelError, err, msg)
	}
}

// ErrorErrFn logs err with the message produced by fn at error level.
func (l *Logger) ErrorErrFn(err error, fn func() string) {
	if l.covered(LevelError) {
		l.emit(LevelError, err, Lazy(fn))
	}
}
