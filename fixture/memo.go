package fixture

import (
	"reflect"
	"sync"
)

// memo caches constructed shapes by pointer-stripped type for the lifetime
// of a factory. The first writer wins.
type memo struct {
	mu sync.RWMutex
	m  map[reflect.Type]reflect.Value
}

func (c *memo) get(t reflect.Type) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.m[t]

	return v, ok
}

// putIfAbsent stores p for t unless another instance is cached already,
// and returns the cached instance and whether p was the one stored.
func (c *memo) putIfAbsent(t reflect.Type, p reflect.Value) (reflect.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.m[t]; ok {
		return prev, false
	}

	if c.m == nil {
		c.m = make(map[reflect.Type]reflect.Value)
	}
	c.m[t] = p

	return p, true
}

func (c *memo) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m = nil
}
