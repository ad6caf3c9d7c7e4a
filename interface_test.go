package rlog

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
)

func TestPackageFunctions(t *testing.T) { //nolint:paralleltest // replaces the default adapter
	core, logs := observer.New(zapTraceLevel)
	a, err := NewAdapter(WithStore(NewStore(map[string]string{"level": "info"})), WithCore(core),
		WithOutput(io.Discard, io.Discard))
	require.NoError(t, err)

	prev := SetDefault(a)
	t.Cleanup(func() {
		SetDefault(prev)
		_ = a.Shutdown()
	})
	assert.Same(t, a, Default())

	boom := errors.New("boom")
	Debug("hidden")
	DebugFn(func() string { t.Fatal("evaluated"); return "" })
	Info("info")
	Infof("info %d", 2)
	WarnErrMsg(boom, "warn")
	ErrorErrFn(boom, func() string { return "lazy error" })

	assert.False(t, IsDebugEnabled())
	assert.True(t, IsInfoEnabled())
	assert.True(t, IsErrorEnabled())

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "info", entries[0].Message)
	assert.Equal(t, "info 2", entries[1].Message)
	assert.Equal(t, "warn", entries[2].Message)
	assert.Equal(t, "lazy error", entries[3].Message)
	for _, e := range entries {
		assert.Equal(t, "interface_test.go", filepath.Base(e.Caller.File))
	}
	require.NoError(t, Sync())
}

func TestDefaultIsCreatedOnce(t *testing.T) { //nolint:paralleltest // reads the default adapter
	first := Default()
	require.NotNil(t, first)
	assert.Same(t, first, Default())
	assert.NotNil(t, stdLogger())
}

func TestSetDefaultDetachesReplacedLogger(t *testing.T) { //nolint:paralleltest // replaces the default adapter
	a, err := NewAdapter(WithOutput(io.Discard, io.Discard))
	require.NoError(t, err)

	prev := SetDefault(a)
	t.Cleanup(func() {
		SetDefault(prev)
		_ = a.Shutdown()
	})
	assert.Equal(t, 1, a.listenerCount())

	SetDefault(a)
	SetDefault(a)
	assert.Equal(t, 1, a.listenerCount())

	SetDefault(nil)
	assert.Zero(t, a.listenerCount())
}
