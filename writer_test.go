package rlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingsDefaults(t *testing.T) {
	t.Parallel()

	s, err := parseSettings(DefaultValues())
	require.NoError(t, err)

	assert.Equal(t, LevelInfo, s.level)
	require.Len(t, s.writers, 1)
	w := s.writers[0]
	assert.Equal(t, writerConsole, w.kind)
	assert.Equal(t, LevelDebug, w.level)
	assert.Equal(t, LevelWarn, w.stream)
	assert.Equal(t, "auto", w.color)
	assert.Equal(t, LevelInfo, s.effectiveLevel(w))
}

func TestParseSettingsFileWriter(t *testing.T) {
	t.Parallel()

	values := fileWriterValues("/var/log/app", "app", "rlog")
	values["writer2.compress"] = "true"
	values["writer2.flush"] = "250ms"
	values["level@db"] = "error"

	s, err := parseSettings(values)
	require.NoError(t, err)

	assert.Equal(t, LevelTrace, s.level)
	assert.Equal(t, LevelError, s.tagLevels["db"])
	require.Len(t, s.writers, 1)
	w := s.writers[0]
	assert.Equal(t, "writer2", w.name)
	assert.Equal(t, writerRolling, w.kind)
	assert.Equal(t, "/var/log/app/app_{date}_{count}.log", w.file)
	assert.Equal(t, "/var/log/app/latest.log", w.latest)
	assert.Equal(t, int64(25<<20), w.maxSize)
	assert.Equal(t, 50, w.backups)
	assert.True(t, w.buffered)
	assert.True(t, w.compress)
	assert.Equal(t, 250*time.Millisecond, w.flush)
	assert.Equal(t, "rlog", w.provider)
}

func TestParseSettingsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values map[string]string
		want   error
	}{
		{"bad level", map[string]string{"level": "loud"}, ErrInvalidLevel},
		{"bad tag level", map[string]string{"level@db": "loud"}, ErrInvalidLevel},
		{"unknown writer", map[string]string{"writer": "syslog"}, ErrUnknownWriter},
		{"missing file", map[string]string{"writer": "rolling file"}, ErrInvalidConfig},
		{"bad policy", map[string]string{"writer": "rolling file", "writer.file": "a.log", "writer.policies": "daily"}, ErrInvalidPolicy},
		{"bad size", map[string]string{"writer": "rolling file", "writer.file": "a.log", "writer.policies": "size: lots"}, ErrInvalidPolicy},
		{"bad backups", map[string]string{"writer": "rolling file", "writer.file": "a.log", "writer.backups": "-3"}, ErrInvalidConfig},
		{"bad color", map[string]string{"writer": "console", "writer.color": "sometimes"}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseSettings(tt.values)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParsePolicies(t *testing.T) {
	t.Parallel()

	var w writerSpec
	require.NoError(t, w.parsePolicies("startup, size: 512 KB"))
	assert.True(t, w.startup)
	assert.Equal(t, int64(512<<10), w.maxSize)
}

func TestParseSize(t *testing.T) {
	t.Parallel()

	tests := map[string]int64{
		"100":   100,
		"10b":   10,
		"2kb":   2 << 10,
		"25MB":  25 << 20,
		" 1gb ": 1 << 30,
	}
	for in, want := range tests {
		got, err := parseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseSize("0")
	assert.Error(t, err)
}

func TestParseStream(t *testing.T) {
	t.Parallel()

	lvl, err := parseStream("err")
	require.NoError(t, err)
	assert.Equal(t, LevelTrace, lvl)

	lvl, err = parseStream("out")
	require.NoError(t, err)
	assert.Equal(t, LevelOff, lvl)

	lvl, err = parseStream("error")
	require.NoError(t, err)
	assert.Equal(t, LevelError, lvl)
}
