package cache

// LayeredCache implements a multi-layer cache: memory in front of a
// durable store (disk or sqlite)
type LayeredCache struct {
	memory  Cache
	durable Cache
}

// NewLayeredCache creates a new layered cache over durable
func NewLayeredCache(durable Cache) *LayeredCache {
	return &LayeredCache{
		memory:  NewMemoryCache(),
		durable: durable,
	}
}

// Get retrieves a value from the cache (checks memory first, then the durable layer)
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.durable.Get(key); found {
		// Promote to memory cache
		_ = c.memory.Set(key, val)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers. The durable write comes first so a
// value is never only in memory after a failed persist.
func (c *LayeredCache) Set(key string, value []byte) error {
	if err := c.durable.Set(key, value); err != nil {
		return err
	}
	return c.memory.Set(key, value)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.durable.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.durable.Clear()
}

// Len reports the size of the durable layer
func (c *LayeredCache) Len() (int, error) {
	if counter, ok := c.durable.(Counter); ok {
		return counter.Len()
	}
	return 0, nil
}

// Close closes the durable layer
func (c *LayeredCache) Close() error {
	return Close(c.durable)
}
