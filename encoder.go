package rlog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenDate
	tokenLevel
	tokenTag
	tokenThread
	tokenPid
	tokenFile
	tokenLine
	tokenMethod
	tokenPackage
	tokenMessage
	tokenMessageOnly
	tokenException
	tokenContext
	tokenCount // file names only
)

var tokenNames = map[string]tokenKind{
	"date":         tokenDate,
	"level":        tokenLevel,
	"tag":          tokenTag,
	"thread":       tokenThread,
	"pid":          tokenPid,
	"file":         tokenFile,
	"line":         tokenLine,
	"method":       tokenMethod,
	"package":      tokenPackage,
	"message":      tokenMessage,
	"message-only": tokenMessageOnly,
	"exception":    tokenException,
	"context":      tokenContext,
}

// token is one compiled element of a format pattern.
type token struct {
	kind    tokenKind
	arg     string // literal text, Go date layout or context key
	minSize int
}

// compilePattern parses a format pattern like "{date:HH:mm:ss} {level|min-size=5} {message}".
func compilePattern(pattern string) ([]token, error) {
	var tokens []token
	rest := pattern
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			tokens = append(tokens, token{kind: tokenLiteral, arg: rest})
			break
		}
		if open > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, arg: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated placeholder in %q", ErrInvalidPattern, pattern)
		}
		t, err := parsePlaceholder(rest[open+1 : open+end])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
		rest = rest[open+end+1:]
	}
	return tokens, nil
}

// parsePlaceholder decodes "name[:arg][|min-size=N]".
func parsePlaceholder(s string) (token, error) {
	body, mods, _ := strings.Cut(s, "|")
	name, arg, hasArg := strings.Cut(body, ":")
	name = strings.TrimSpace(name)

	kind, ok := tokenNames[name]
	if !ok {
		return token{}, fmt.Errorf("%w: unknown placeholder {%s}", ErrInvalidPattern, s)
	}
	t := token{kind: kind}

	switch kind {
	case tokenDate:
		if !hasArg {
			arg = "yyyy-MM-dd HH:mm:ss"
		}
		t.arg = javaLayout(arg)
	case tokenContext:
		t.arg = strings.TrimSpace(arg)
		if t.arg == "" {
			return token{}, fmt.Errorf("%w: {context} requires a key", ErrInvalidPattern)
		}
	}

	for _, m := range strings.Split(mods, "|") {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		v, ok := strings.CutPrefix(m, "min-size=")
		if !ok {
			return token{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidPattern, m)
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return token{}, fmt.Errorf("%w: min-size %q", ErrInvalidPattern, v)
		}
		t.minSize = n
	}
	return t, nil
}

// javaLayout converts a java.time style layout (yyyy-MM-dd HH:mm:ss.SSS) to a Go layout.
func javaLayout(layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); {
		c := layout[i]
		if c == '\'' {
			end := strings.IndexByte(layout[i+1:], '\'')
			if end < 0 {
				b.WriteString(layout[i+1:])
				break
			}
			b.WriteString(layout[i+1 : i+1+end])
			i += end + 2
			continue
		}

		n := 1
		for i+n < len(layout) && layout[i+n] == c {
			n++
		}
		i += n

		switch c {
		case 'y':
			if n == 2 {
				b.WriteString("06")
			} else {
				b.WriteString("2006")
			}
		case 'M':
			b.WriteString(pick(n, "1", "01", "Jan", "January"))
		case 'd':
			b.WriteString(pick(n, "2", "02"))
		case 'H':
			b.WriteString("15")
		case 'h':
			b.WriteString(pick(n, "3", "03"))
		case 'm':
			b.WriteString(pick(n, "4", "04"))
		case 's':
			b.WriteString(pick(n, "5", "05"))
		case 'S':
			b.WriteString(strings.Repeat("0", n))
		case 'a':
			b.WriteString("PM")
		case 'E':
			b.WriteString(pick(n, "Mon", "Mon", "Mon", "Monday"))
		case 'Z':
			b.WriteString("-0700")
		case 'X':
			b.WriteString("Z07:00")
		case 'z':
			b.WriteString("MST")
		default:
			b.WriteString(strings.Repeat(string(c), n))
		}
	}
	return b.String()
}

// pick returns the form for a run of n letters, saturating at the last form.
func pick(n int, forms ...string) string {
	return forms[min(n, len(forms))-1]
}

// patternEncoder renders entries through a compiled format pattern. Structured
// fields added with With are kept by the embedded encoder and not rendered, only
// error fields reach the output through {message} and {exception}.
type patternEncoder struct {
	zapcore.Encoder
	tokens  []token
	color   bool
	context *Context
}

func newPatternEncoder(pattern string, color bool, ctx *Context) (*patternEncoder, error) {
	tokens, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &patternEncoder{
		Encoder: zapcore.NewJSONEncoder(zapcore.EncoderConfig{}),
		tokens:  tokens,
		color:   color,
		context: ctx,
	}, nil
}

func (e *patternEncoder) Clone() zapcore.Encoder {
	c := *e
	c.Encoder = e.Encoder.Clone()
	return &c
}

func (e *patternEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferPool.Get()

	var errText string
	for _, f := range fields {
		if f.Type != zapcore.ErrorType {
			continue
		}
		if err, ok := f.Interface.(error); ok && err != nil {
			errText = err.Error()
		}
	}

	for _, t := range e.tokens {
		switch t.kind {
		case tokenLiteral:
			buf.AppendString(t.arg)
		case tokenDate:
			appendPadded(buf, ent.Time.Format(t.arg), t.minSize)
		case tokenLevel:
			lvl := padRight(levelFromZap(ent.Level).String(), t.minSize)
			if e.color && isStyleTag(ent.LoggerName) {
				buf.AppendString("\x1b[")
				buf.AppendString(ent.LoggerName)
				buf.AppendByte('m')
				buf.AppendString(lvl)
				buf.AppendString("\x1b[0m")
			} else {
				buf.AppendString(lvl)
			}
		case tokenTag:
			appendPadded(buf, ent.LoggerName, t.minSize)
		case tokenThread:
			appendPadded(buf, strconv.FormatUint(goroutineID(), 10), t.minSize)
		case tokenPid:
			appendPadded(buf, strconv.Itoa(os.Getpid()), t.minSize)
		case tokenFile:
			appendPadded(buf, callerFile(ent.Caller), t.minSize)
		case tokenLine:
			line := ""
			if ent.Caller.Defined {
				line = strconv.Itoa(ent.Caller.Line)
			}
			appendPadded(buf, line, t.minSize)
		case tokenMethod:
			_, method := splitFunction(ent.Caller.Function)
			appendPadded(buf, method, t.minSize)
		case tokenPackage:
			pkg, _ := splitFunction(ent.Caller.Function)
			appendPadded(buf, pkg, t.minSize)
		case tokenMessage:
			appendPadded(buf, joinMessage(ent.Message, errText), t.minSize)
		case tokenMessageOnly:
			appendPadded(buf, ent.Message, t.minSize)
		case tokenException:
			appendPadded(buf, errText, t.minSize)
		case tokenContext:
			v, _ := e.context.Get(t.arg)
			appendPadded(buf, v, t.minSize)
		}
	}

	buf.AppendByte('\n')
	return buf, nil
}

func joinMessage(msg, errText string) string {
	switch {
	case errText == "":
		return msg
	case msg == "":
		return errText
	default:
		return msg + ": " + errText
	}
}

func appendPadded(buf *buffer.Buffer, s string, minSize int) {
	buf.AppendString(padRight(s, minSize))
}

func padRight(s string, minSize int) string {
	if n := utf8.RuneCountInString(s); n < minSize {
		return s + strings.Repeat(" ", minSize-n)
	}
	return s
}

// isStyleTag reports whether tag looks like an SGR parameter list such as "1;6;31".
func isStyleTag(tag string) bool {
	if tag == "" {
		return false
	}
	for _, c := range tag {
		if (c < '0' || c > '9') && c != ';' {
			return false
		}
	}
	return true
}

func callerFile(c zapcore.EntryCaller) string {
	if !c.Defined {
		return ""
	}
	return filepath.Base(c.File)
}

// splitFunction splits "github.com/a/pkg.(*T).Method" into "github.com/a/pkg" and "(*T).Method".
func splitFunction(fn string) (string, string) {
	slash := strings.LastIndexByte(fn, '/')
	dot := strings.IndexByte(fn[slash+1:], '.')
	if dot < 0 {
		return fn, ""
	}
	return fn[:slash+1+dot], fn[slash+2+dot:]
}

// goroutineID parses the id of the calling goroutine from its stack header.
func goroutineID() uint64 {
	var b [64]byte
	n := runtime.Stack(b[:], false)
	s := bytes.TrimPrefix(b[:n], []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	id, _ := strconv.ParseUint(string(s), 10, 64)
	return id
}
