package rlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreKeysAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	s := NewStore(map[string]string{"Writer2.Level": "debug"})
	v, ok := s.Get("writer2.level")
	assert.True(t, ok)
	assert.Equal(t, "debug", v)

	s.Set(" LEVEL ", "warn")
	v, _ = s.Get("level")
	assert.Equal(t, "warn", v)
}

func TestStoreDeleteWriter(t *testing.T) {
	t.Parallel()

	s := NewStore(nil)
	s.SetAll(fileWriterValues("/tmp/logs", "app", "test"))
	s.Set("writer20.level", "info")
	s.Set("level", "info")

	s.Delete("writer2")

	assert.Equal(t, []string{"level", "writer20.level"}, s.Keys())
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := NewStore(DefaultValues())
	snap := s.Snapshot()
	snap["level"] = "off"

	v, _ := s.Get("level")
	assert.Equal(t, "info", v)

	s.Replace(map[string]string{"Level": "error"})
	assert.Equal(t, []string{"level"}, s.Keys())
}

func TestIsWriterKey(t *testing.T) {
	t.Parallel()

	assert.True(t, isWriterKey("writer"))
	assert.True(t, isWriterKey("writer2"))
	assert.False(t, isWriterKey("writer2.level"))
	assert.False(t, isWriterKey("writers"))
	assert.False(t, isWriterKey("level"))
}
