package rlog

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func rollingSpec(dir string) writerSpec {
	return writerSpec{
		name:    "writer2",
		kind:    writerRolling,
		file:    filepath.Join(dir, "app_{date}_{count}.log"),
		latest:  filepath.Join(dir, latestFileName),
		charset: defaultCharset,
		backups: unlimitedBackup,
	}
}

func logFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.Name() != latestFileName {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestCompileFileName(t *testing.T) {
	t.Parallel()

	tokens, matcher, err := compileFileName("app_{date}_{count}.log")
	require.NoError(t, err)
	assert.Len(t, tokens, 5)

	r := &rollingFile{base: tokens}
	name := r.expand(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), 7)
	assert.Equal(t, "app_2024-01-02_03-04-05_7.log", name)

	for _, n := range []string{name, name + ".gz", "app_2024-01-02_03-04-05_7.log.1", "app_x_12.log.3.gz"} {
		assert.True(t, matcher.MatchString(n), n)
	}
	assert.False(t, matcher.MatchString("latest.log"))
	assert.False(t, matcher.MatchString("other_2024_1.log"))

	m := matcher.FindStringSubmatch("app_2024-01-02_03-04-05_12.log")
	assert.Equal(t, "12", m[matcher.SubexpIndex("count")])

	_, _, err = compileFileName("app_{hostname}.log")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestOpenRollingFileRejectsPlaceholderInDir(t *testing.T) {
	t.Parallel()

	w := rollingSpec(t.TempDir())
	w.file = filepath.Join(t.TempDir(), "{date}", "app.log")
	_, err := openRollingFile(w)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRollingFileRotates(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w := rollingSpec(dir)
	w.maxSize = 64

	r, err := openRollingFile(w)
	require.NoError(t, err)

	line := []byte(strings.Repeat("a", 39) + "\n")
	for i := 0; i < 5; i++ {
		_, err := r.Write(line)
		require.NoError(t, err)
	}
	require.NoError(t, r.Close())

	files := logFiles(t, dir)
	assert.Len(t, files, 5, "one 40 byte line per 64 byte file")
	for _, f := range files {
		info, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err)
		assert.Equal(t, int64(len(line)), info.Size(), f)
	}

	latest, err := os.ReadFile(w.latest)
	require.NoError(t, err)
	assert.Equal(t, line, latest)
	assert.Equal(t, 4, r.count)
}

func TestRollingFileRetriesFailedRotation(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	w := rollingSpec(dir)
	w.maxSize = 10

	r, err := openRollingFile(w)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("123456789\n"))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	_, err = r.Write([]byte("next\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrShutdown)

	require.NoError(t, os.MkdirAll(dir, 0755))
	_, err = r.Write([]byte("next\n"))
	require.NoError(t, err)
	assert.Len(t, logFiles(t, dir), 1)
	assert.Equal(t, 1, r.count)
}

func TestRollingFileKeepsBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := rollingSpec(dir)
	w.maxSize = 10
	w.backups = 2

	r, err := openRollingFile(w)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err := r.Write([]byte("0123456789"))
		require.NoError(t, err)
	}
	require.NoError(t, r.Close())

	files, err := r.scan()
	require.NoError(t, err)
	require.Len(t, files, 3, "active file plus two backups")
	assert.Equal(t, []int{3, 4, 5}, []int{files[0].count, files[1].count, files[2].count})
}

func TestRollingFileCompresses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := rollingSpec(dir)
	w.maxSize = 10
	w.compress = true

	r, err := openRollingFile(w)
	require.NoError(t, err)
	_, err = r.Write([]byte("first line\n"))
	require.NoError(t, err)
	_, err = r.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	var archived string
	for _, f := range logFiles(t, dir) {
		if strings.HasSuffix(f, compressedExt) {
			archived = f
		}
	}
	require.NotEmpty(t, archived)

	f, err := os.Open(filepath.Join(dir, archived))
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "first line\n", string(data))
}

func TestRollingFileResumes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := rollingSpec(dir)
	w.maxSize = 1 << 10

	r, err := openRollingFile(w)
	require.NoError(t, err)
	_, err = r.Write([]byte("one\n"))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = openRollingFile(w)
	require.NoError(t, err)
	_, err = r.Write([]byte("two\n"))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	files := logFiles(t, dir)
	require.Len(t, files, 1)
	data, err := os.ReadFile(filepath.Join(dir, files[0]))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))

	w.startup = true
	r, err = openRollingFile(w)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Len(t, logFiles(t, dir), 2)
}

func TestRollingFileClosed(t *testing.T) {
	t.Parallel()

	r, err := openRollingFile(rollingSpec(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrShutdown)
	assert.NoError(t, r.Sync())
}

type bufferSyncer struct {
	bytes.Buffer
}

func (b *bufferSyncer) Sync() error { return nil }

func TestWithCharset(t *testing.T) {
	t.Parallel()

	var utf bufferSyncer
	ws, err := withCharset(&utf, "utf8")
	require.NoError(t, err)
	assert.Same(t, zapcore.WriteSyncer(&utf), ws)

	var latin bufferSyncer
	ws, err = withCharset(&latin, "ISO-8859-1")
	require.NoError(t, err)
	n, err := ws.Write([]byte("café ☃\n"))
	require.NoError(t, err)
	assert.Equal(t, len("café ☃\n"), n)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9, ' '}, latin.Bytes()[:5])
	assert.NoError(t, ws.Sync())

	_, err = withCharset(&latin, "klingon")
	assert.ErrorIs(t, err, ErrUnsupportedCharset)
}
