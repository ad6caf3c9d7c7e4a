package rlog

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the severity of a log entry. Levels are ordered, a configured minimum
// level covers itself and every more severe level.
type Level int8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // disables output, never used for an entry
)

// Console style tags, passed as the entry tag and rendered as ANSI SGR codes by
// colored console writers.
const (
	TagTrace = "1;97"
	TagDebug = "1;36"
	TagInfo  = "1;32"
	TagWarn  = "1;33"
	TagError = "1;6;31"
)

// zapTraceLevel sits below zapcore.DebugLevel so trace entries stay distinct.
const zapTraceLevel = zapcore.DebugLevel - 1

// String returns the upper-case level name written to the output.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return fmt.Sprintf("UNKNOWN (%d)", l)
	}
}

// Tag returns the console style tag of the level.
func (l Level) Tag() string {
	switch l {
	case LevelTrace:
		return TagTrace
	case LevelDebug:
		return TagDebug
	case LevelInfo:
		return TagInfo
	case LevelWarn:
		return TagWarn
	case LevelError:
		return TagError
	default:
		return ""
	}
}

// Covers reports whether l, used as a minimum level, lets entries at level through.
func (l Level) Covers(level Level) bool {
	return l <= level
}

// ParseLevel converts a level name to a Level. Accepts both "debug" and "leveldebug".
func ParseLevel(s string) (Level, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "level") {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "off":
		return LevelOff, nil
	default:
		return LevelOff, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// zapLevel maps the level onto the zapcore level space.
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelTrace:
		return zapTraceLevel
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel + 1
	}
}

// levelFromZap is the inverse of zapLevel. Levels above error fold into error.
func levelFromZap(l zapcore.Level) Level {
	switch {
	case l <= zapTraceLevel:
		return LevelTrace
	case l == zapcore.DebugLevel:
		return LevelDebug
	case l == zapcore.InfoLevel:
		return LevelInfo
	case l == zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}
