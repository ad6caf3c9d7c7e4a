package rlog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func encode(t *testing.T, enc *patternEncoder, ent zapcore.Entry, fields ...zapcore.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(ent, fields)
	require.NoError(t, err)
	defer buf.Free()
	return buf.String()
}

func testEntry() zapcore.Entry {
	return zapcore.Entry{
		LoggerName: TagInfo,
		Level:      LevelInfo.zapLevel(),
		Time:       time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.UTC),
		Message:    "hello",
		Caller: zapcore.EntryCaller{
			Defined:  true,
			File:     "/src/app/server.go",
			Line:     42,
			Function: "github.com/acme/app/server.(*Server).Start",
		},
	}
}

func TestJavaLayout(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"yyyy-MM-dd HH:mm:ss.SSS": "2006-01-02 15:04:05.000",
		"yy/M/d h:mm a":           "06/1/2 3:04 PM",
		"dd MMM yyyy":             "02 Jan 2006",
		"EEEE, HH'h'mm":           "Monday, 15h04",
		"HH:mm:ssZ":               "15:04:05-0700",
	}
	for in, want := range tests {
		assert.Equal(t, want, javaLayout(in), in)
	}
}

func TestCompilePatternErrors(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"{message", "{nope}", "{context}", "{level|width=3}", "{level|min-size=x}"} {
		_, err := compilePattern(p)
		assert.ErrorIs(t, err, ErrInvalidPattern, p)
	}
}

func TestPatternEncoderTokens(t *testing.T) {
	t.Parallel()

	ctx := NewContext()
	ctx.Put("user", "alice")
	enc, err := newPatternEncoder(
		"{date:yyyy-MM-dd HH:mm:ss.SSS} [{level|min-size=5}] {file}:{line} {package} {method} {context:user} {message}",
		false, ctx)
	require.NoError(t, err)

	got := encode(t, enc, testEntry())
	assert.Equal(t,
		"2024-03-09 14:05:07.123 [INFO ] server.go:42 github.com/acme/app/server (*Server).Start alice hello\n",
		got)
}

func TestPatternEncoderErrors(t *testing.T) {
	t.Parallel()

	enc, err := newPatternEncoder("{message}|{message-only}|{exception}", false, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.Equal(t, "hello: boom|hello|boom\n", encode(t, enc, testEntry(), zap.Error(boom)))

	ent := testEntry()
	ent.Message = ""
	assert.Equal(t, "boom||boom\n", encode(t, enc, ent, zap.Error(boom)))
	assert.Equal(t, "hello|hello|\n", encode(t, enc, testEntry()))
}

func TestPatternEncoderColor(t *testing.T) {
	t.Parallel()

	colored, err := newPatternEncoder("{level} {message}", true, nil)
	require.NoError(t, err)
	assert.Equal(t, "\x1b[1;32mINFO\x1b[0m hello\n", encode(t, colored, testEntry()))

	ent := testEntry()
	ent.LoggerName = "db"
	assert.Equal(t, "INFO hello\n", encode(t, colored, ent))

	plain, err := newPatternEncoder("{level} {tag} {message}", false, nil)
	require.NoError(t, err)
	assert.Equal(t, "INFO 1;32 hello\n", encode(t, plain, testEntry()))
}

func TestPatternEncoderThreadAndPid(t *testing.T) {
	t.Parallel()

	enc, err := newPatternEncoder("{thread} {pid}", false, nil)
	require.NoError(t, err)

	fields := strings.Fields(encode(t, enc, testEntry()))
	require.Len(t, fields, 2)
	assert.NotEqual(t, "0", fields[0])
	assert.NotEmpty(t, fields[1])
}

func TestSplitFunction(t *testing.T) {
	t.Parallel()

	pkg, fn := splitFunction("github.com/acme/app/server.(*Server).Start")
	assert.Equal(t, "github.com/acme/app/server", pkg)
	assert.Equal(t, "(*Server).Start", fn)

	pkg, fn = splitFunction("main.main")
	assert.Equal(t, "main", pkg)
	assert.Equal(t, "main", fn)
}
