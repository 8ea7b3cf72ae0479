// Package waveform turns audio resources into normalized peak sequences
// for rendering, memoizing results per locator for the process lifetime.
package waveform

import "sync"

// Cache is the process-wide store of normalized peak sequences, keyed by
// locator. Entries are never evicted; it lives for the process lifetime
// and is sized by the clips a session touches.
type Cache struct {
	mu    sync.RWMutex
	peaks map[string][]float64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{peaks: make(map[string][]float64)}
}

// Get returns a copy of the cached sequence for locator, if present.
func (c *Cache) Get(locator string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.peaks[locator]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), p...), true
}

// Put stores a copy of the sequence for locator, replacing any previous
// one.
func (c *Cache) Put(locator string, peaks []float64) {
	c.mu.Lock()
	c.peaks[locator] = append([]float64(nil), peaks...)
	c.mu.Unlock()
}

// Len returns the number of cached sequences.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.peaks)
}
