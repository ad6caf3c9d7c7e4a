package rlog

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"go.uber.org/zap/zapcore"
)

// File writer defaults applied by EnableFileLogging.
const (
	fileWriter       = "writer2"
	fileFormat       = "{date:yyyy-MM-dd HH:mm:ss.SSS|min-size=10} | {level|min-size=4} | {thread|min-size=4} | {message}"
	fileMaxSize      = "size: 25mb"
	fileBackups      = "50"
	latestFileName   = "latest.log"
	defaultAdapterID = "rlog"
)

// Adapter is a Provider that owns a configuration store and the backend built
// from it. All Provider calls are forwarded to the current backend with the
// depth raised by one. Rebuild replaces the backend under an exclusive lock, so
// reconfiguration never races with entries being written.
type Adapter struct {
	name    string
	store   *Store
	context *Context
	opts    backendOptions

	mu        sync.RWMutex
	inner     *backend
	applied   map[string]string // snapshot the current backend was built from
	closed    bool
	listeners map[int]func()
	nextID    int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStore uses s instead of a store holding DefaultValues.
func WithStore(s *Store) Option {
	return func(a *Adapter) {
		a.store = s
	}
}

// WithName sets the adapter name recorded as the provider of writers it adds.
func WithName(name string) Option {
	return func(a *Adapter) {
		a.name = name
	}
}

// WithOutput replaces the process streams used by console writers.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *Adapter) {
		a.opts.stdout, a.opts.stderr = stdout, stderr
	}
}

// WithCore adds a zap core that receives every entry accepted by the global and
// tag levels, next to the configured writers.
func WithCore(core zapcore.Core) Option {
	return func(a *Adapter) {
		a.opts.extra = append(a.opts.extra, core)
	}
}

// WithContext shares an existing context with the adapter.
func WithContext(c *Context) Option {
	return func(a *Adapter) {
		a.context = c
	}
}

// NewAdapter builds an adapter and its first backend.
func NewAdapter(opts ...Option) (*Adapter, error) {
	a := &Adapter{name: defaultAdapterID}
	a.opts.stdout, a.opts.stderr = stdStreams()
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = NewStore(DefaultValues())
	}
	if a.context == nil {
		a.context = NewContext()
	}
	a.opts.context = a.context

	values := a.store.Snapshot()
	b, err := newBackend(values, a.opts)
	if err != nil {
		return nil, err
	}
	a.inner, a.applied = b, values
	return a, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return a.name
}

// Store returns the configuration store. Changes take effect on Rebuild.
func (a *Adapter) Store() *Store {
	return a.store
}

// Context returns the key/value context rendered by {context:key} placeholders.
func (a *Adapter) Context() *Context {
	return a.context
}

// MinimumLevel returns the lowest level the current backend writes, LevelOff after Shutdown.
func (a *Adapter) MinimumLevel() Level {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.inner == nil {
		return LevelOff
	}
	return a.inner.MinimumLevel()
}

// MinimumLevelFor returns the lowest level written for entries with tag.
func (a *Adapter) MinimumLevelFor(tag string) Level {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.inner == nil {
		return LevelOff
	}
	return a.inner.MinimumLevelFor(tag)
}

// IsEnabled reports whether the current backend would write the entry.
func (a *Adapter) IsEnabled(depth int, tag string, level Level) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.inner == nil {
		return false
	}
	return a.inner.IsEnabled(depth+1, tag, level)
}

// Log forwards the entry to the current backend. Entries logged after Shutdown are dropped.
func (a *Adapter) Log(depth int, tag string, level Level, err error, msg any) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.inner == nil {
		return
	}
	a.inner.Log(depth+1, tag, level, err, msg)
}

// OnRebuild registers fn to be called after every successful or failed rebuild.
// The returned func removes the registration.
func (a *Adapter) OnRebuild(fn func()) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listeners == nil {
		a.listeners = make(map[int]func())
	}
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// listenerCount is the number of registered rebuild listeners.
func (a *Adapter) listenerCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.listeners)
}

// EnableFileLogging adds a rolling file writer to the store and rebuilds the backend.
// Files are named <prefix>_<date>_<count>.log in dir, rotated at 25 MB with 50
// backups kept, and dir/latest.log links to the active file.
// An empty dir resolves to $XDG_STATE_HOME/<prefix>/logs.
// When the rebuild fails, the file writer keys are reset to what they were before.
func (a *Adapter) EnableFileLogging(dir, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: empty file prefix", ErrInvalidConfig)
	}
	if dir == "" {
		dir = filepath.Join(xdg.StateHome, prefix, "logs")
	}

	prev := writerValues(a.store.Snapshot(), fileWriter)
	a.store.SetAll(fileWriterValues(dir, prefix, a.name))
	if err := a.Rebuild(); err != nil {
		a.store.Delete(fileWriter)
		a.store.SetAll(prev)
		return err
	}
	return nil
}

// writerValues returns the entries of values belonging to the writer called name.
func writerValues(values map[string]string, name string) map[string]string {
	out := make(map[string]string)
	for k, v := range values {
		if k == name || strings.HasPrefix(k, name+".") {
			out[k] = v
		}
	}
	return out
}

// fileWriterValues returns the store keys of the rolling file writer.
func fileWriterValues(dir, prefix, provider string) map[string]string {
	return map[string]string{
		fileWriter:               writerRolling,
		fileWriter + ".level":    "debug",
		fileWriter + ".format":   fileFormat,
		fileWriter + ".file":     filepath.Join(dir, prefix+"_{date}_{count}.log"),
		fileWriter + ".latest":   filepath.Join(dir, latestFileName),
		fileWriter + ".charset":  defaultCharset,
		fileWriter + ".buffered": "true",
		fileWriter + ".policies": fileMaxSize,
		fileWriter + ".backups":  fileBackups,
		fileWriter + ".provider": provider,
	}
}

// Rebuild shuts down the current backend and builds a new one from the store.
// When the store content is invalid the previous configuration is restored and
// the build error is returned, so logging continues either way.
func (a *Adapter) Rebuild() error {
	err := a.rebuild()
	a.notify()
	return err
}

func (a *Adapter) rebuild() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrShutdown
	}

	var shutdownErr error
	if a.inner != nil {
		shutdownErr = a.inner.shutdown()
		a.inner = nil
	}

	values := a.store.Snapshot()
	b, err := newBackend(values, a.opts)
	if err != nil {
		if prev, prevErr := newBackend(a.applied, a.opts); prevErr == nil {
			a.inner = prev
		}
		return fmt.Errorf("rebuild failed: %w", err)
	}
	a.inner, a.applied = b, values

	if shutdownErr != nil {
		return fmt.Errorf("previous backend shutdown: %w", shutdownErr)
	}
	return nil
}

func (a *Adapter) notify() {
	a.mu.RLock()
	listeners := make([]func(), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// Sync flushes buffered file output.
func (a *Adapter) Sync() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.inner == nil {
		return nil
	}
	return a.inner.sync()
}

// Shutdown flushes and closes all writers. Entries logged afterwards are dropped
// and Rebuild returns ErrShutdown. Repeated calls are no-ops.
func (a *Adapter) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.inner == nil {
		return nil
	}
	err := a.inner.shutdown()
	a.inner = nil
	return err
}
