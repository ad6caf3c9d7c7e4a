package quick

import (
	"fmt"
	"sync/atomic"

	"github.com/LixenWraith/rlog"
)

var cached atomic.Pointer[rlog.Logger]

// logger returns a Logger over the current default adapter, reporting the caller
// of the quick function.
func logger() *rlog.Logger {
	a := rlog.Default()
	if l := cached.Load(); l != nil && l.Provider() == rlog.Provider(a) {
		return l
	}
	l := rlog.NewLogger(a, rlog.WithCallerSkip(1))
	if old := cached.Swap(l); old != nil {
		old.Detach()
	}
	return l
}

// Debug logs a debug message built from args with fmt.Sprint.
// Message is dropped if logger's level is higher than debug.
func Debug(args ...any) {
	logger().DebugFn(func() string { return fmt.Sprint(args...) })
}

// Info logs an info message built from args with fmt.Sprint.
// Message is dropped if logger's level is higher than info.
func Info(args ...any) {
	logger().InfoFn(func() string { return fmt.Sprint(args...) })
}

// Warn logs a warning message built from args with fmt.Sprint.
// Message is dropped if logger's level is higher than warn.
func Warn(args ...any) {
	logger().WarnFn(func() string { return fmt.Sprint(args...) })
}

// Error logs an error message built from args with fmt.Sprint.
// Message is dropped if logger's level is higher than error.
func Error(args ...any) {
	logger().ErrorFn(func() string { return fmt.Sprint(args...) })
}

// Config changes the default adapter configuration with "key=value" statements
// and rebuilds it, e.g. quick.Config("level=debug", "writer.color=false").
// An empty value removes the key.
func Config(args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("no config provided")
	}

	values, err := config(args...)
	if err != nil {
		return err
	}

	store := rlog.Default().Store()
	for key, value := range values {
		if value == "" {
			store.Delete(key)
			continue
		}
		store.Set(key, value)
	}
	return rlog.Default().Rebuild()
}

// File enables rolling file logging in dir with files named after prefix.
func File(dir, prefix string) error {
	return rlog.EnableFileLogging(dir, prefix)
}

// Shutdown flushes and closes the default adapter.
func Shutdown() {
	_ = rlog.Shutdown()
}
