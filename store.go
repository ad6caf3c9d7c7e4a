package rlog

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Store is the mutable key/value configuration consumed by a provider when its
// backend is built. Changes are not observed by a running backend, they take
// effect on the next Adapter.Rebuild.
// Keys are case-insensitive and stored lower-case.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates a store seeded with the given values.
func NewStore(values map[string]string) *Store {
	s := &Store{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[normalizeKey(k)] = v
	}
	return s
}

// DefaultValues returns the settings of a fresh store: a console writer at debug
// level and a global minimum level of info.
func DefaultValues() map[string]string {
	return map[string]string{
		"level":         "info",
		"writer":        writerConsole,
		"writer.level":  "debug",
		"writer.format": defaultFormat,
		"writer.stream": "warn",
		"writer.color":  "auto",
	}
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[normalizeKey(key)]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[normalizeKey(key)] = value
}

// SetAll stores every entry of values, keeping unrelated keys.
func (s *Store) SetAll(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[normalizeKey(k)] = v
	}
}

// Delete removes key and, when key names a writer, all of that writer's properties.
func (s *Store) Delete(key string) {
	key = normalizeKey(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	if isWriterKey(key) {
		for k := range s.values {
			if strings.HasPrefix(k, key+".") {
				delete(s.values, k)
			}
		}
	}
}

// Replace discards the current content and stores values.
func (s *Store) Replace(values map[string]string) {
	fresh := make(map[string]string, len(values))
	for k, v := range values {
		fresh[normalizeKey(k)] = v
	}
	s.mu.Lock()
	s.values = fresh
	s.mu.Unlock()
}

// Snapshot returns a copy of the stored values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// isWriterKey matches "writer" and "writer<digits>".
func isWriterKey(key string) bool {
	rest, ok := strings.CutPrefix(key, "writer")
	if !ok {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
