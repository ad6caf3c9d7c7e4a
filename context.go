package rlog

import (
	"maps"
	"sync"
)

// Context holds process-wide key/value pairs that format patterns can render with
// {context:key}. Values are shared by all goroutines.
type Context struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{values: make(map[string]string)}
}

// Put stores value under key. An empty value removes the key.
func (c *Context) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		delete(c.values, key)
		return
	}
	c.values[key] = value
}

// Get returns the value stored under key. A nil context is empty.
func (c *Context) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Remove deletes key.
func (c *Context) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Clear deletes all keys.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.values)
}

// Mapping returns a copy of all stored pairs.
func (c *Context) Mapping() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.values)
}
