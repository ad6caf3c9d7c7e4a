package rlog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// backendOptions carries what a backend needs besides the store snapshot.
type backendOptions struct {
	stdout  io.Writer
	stderr  io.Writer
	extra   []zapcore.Core
	context *Context
}

// backend is one immutable zap based provider instance built from a store snapshot.
// Reconfiguration builds a new backend, it never mutates an existing one.
type backend struct {
	level     Level
	tagLevels map[string]Level
	core      zapcore.Core
	context   *Context
	errOut    zapcore.WriteSyncer

	files    []*rollingFile
	buffered []*zapcore.BufferedWriteSyncer
	syncers  []zapcore.WriteSyncer
}

// newBackend validates values and opens every configured writer. On error, writers
// opened so far are closed again.
func newBackend(values map[string]string, opts backendOptions) (_ *backend, err error) {
	s, err := parseSettings(values)
	if err != nil {
		return nil, err
	}

	b := &backend{
		tagLevels: s.tagLevels,
		context:   opts.context,
		errOut:    zapcore.Lock(zapcore.AddSync(opts.stderr)),
	}
	defer func() {
		if err != nil {
			_ = b.shutdown()
		}
	}()

	stdout := zapcore.Lock(zapcore.AddSync(opts.stdout))
	stderr := zapcore.Lock(zapcore.AddSync(opts.stderr))

	var cores []zapcore.Core
	for _, w := range s.writers {
		lowest := s.effectiveLevel(w)

		switch w.kind {
		case writerConsole:
			enc, err := newPatternEncoder(w.format, useColor(w.color, opts.stdout), opts.context)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", w.name, err)
			}
			split := max(lowest, w.stream)
			cores = append(cores,
				zapcore.NewCore(enc, stdout, levelRange(lowest, split)),
				zapcore.NewCore(enc.Clone(), stderr, levelRange(split, LevelOff)),
			)

		case writerRolling:
			enc, err := newPatternEncoder(w.format, false, opts.context)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", w.name, err)
			}
			rf, err := openRollingFile(w)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", w.name, err)
			}
			b.files = append(b.files, rf)

			ws, err := withCharset(rf, w.charset)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", w.name, err)
			}
			if w.buffered {
				bws := &zapcore.BufferedWriteSyncer{WS: ws, FlushInterval: w.flush}
				b.buffered = append(b.buffered, bws)
				ws = bws
			} else {
				ws = zapcore.Lock(ws)
			}
			b.syncers = append(b.syncers, ws)
			cores = append(cores, zapcore.NewCore(enc, ws, levelRange(lowest, LevelOff)))
		}
	}

	cores = append(cores, opts.extra...)
	b.core = zapcore.NewTee(cores...)
	b.level = b.lowestEnabled(s.level)
	return b, nil
}

// levelRange enables levels in [from, to).
func levelRange(from, to Level) zap.LevelEnablerFunc {
	lo, hi := from.zapLevel(), to.zapLevel()
	return func(l zapcore.Level) bool {
		return l >= lo && l < hi
	}
}

// useColor resolves the console color setting, "auto" colors terminals only.
func useColor(setting string, out io.Writer) bool {
	switch setting {
	case "true":
		return true
	case "false":
		return false
	}
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// lowestEnabled finds the lowest level covered by the global level that some core accepts.
func (b *backend) lowestEnabled(global Level) Level {
	for lvl := max(global, LevelTrace); lvl < LevelOff; lvl++ {
		if b.core.Enabled(lvl.zapLevel()) {
			return lvl
		}
	}
	return LevelOff
}

func (b *backend) Context() *Context {
	return b.context
}

func (b *backend) MinimumLevel() Level {
	return b.level
}

func (b *backend) MinimumLevelFor(tag string) Level {
	if lvl, ok := b.tagLevels[normalizeKey(tag)]; ok {
		return max(b.level, lvl)
	}
	return b.level
}

func (b *backend) IsEnabled(_ int, tag string, level Level) bool {
	return level < LevelOff && b.MinimumLevelFor(tag).Covers(level)
}

// Log emits one entry. depth counts the frames between this method and the call
// site that is reported as the entry caller. The message is resolved only after
// a core accepted the entry.
func (b *backend) Log(depth int, tag string, level Level, err error, msg any) {
	if !b.IsEnabled(depth, tag, level) {
		return
	}

	ent := zapcore.Entry{
		LoggerName: tag,
		Level:      level.zapLevel(),
		Time:       time.Now(),
	}
	ce := b.core.Check(ent, nil)
	if ce == nil {
		return
	}
	ce.ErrorOutput = b.errOut

	if pc, file, line, ok := runtime.Caller(depth); ok {
		ce.Caller = zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
		if fn := runtime.FuncForPC(pc); fn != nil {
			ce.Caller.Function = fn.Name()
		}
	}
	ce.Message = stringifyMessage(msg)

	if err != nil {
		ce.Write(zap.Error(err))
		return
	}
	ce.Write()
}

// sync flushes buffered output of all file writers.
func (b *backend) sync() error {
	var err error
	for _, ws := range b.syncers {
		err = multierr.Append(err, ws.Sync())
	}
	return err
}

// shutdown flushes and closes all file writers.
func (b *backend) shutdown() error {
	var err error
	for _, bws := range b.buffered {
		err = multierr.Append(err, bws.Stop())
	}
	for _, rf := range b.files {
		err = multierr.Append(err, rf.Sync())
		err = multierr.Append(err, rf.Close())
	}
	b.files, b.buffered, b.syncers = nil, nil, nil
	return err
}

// stringifyMessage converts a message of any supported shape to its text.
// Lazy producers are invoked here, exactly once.
func stringifyMessage(msg any) string {
	switch m := msg.(type) {
	case nil:
		return ""
	case string:
		return m
	case Lazy:
		if m == nil {
			return ""
		}
		return m()
	case func() string:
		if m == nil {
			return ""
		}
		return m()
	case error:
		return m.Error()
	case fmt.Stringer:
		return m.String()
	default:
		return fmt.Sprintf("%+v", m)
	}
}

// stdStreams returns the process streams used when no console output is configured.
func stdStreams() (io.Writer, io.Writer) {
	return os.Stdout, os.Stderr
}
