// Package preload keeps upcoming clips loaded ahead of playback: a keyed
// cache of media-resource handles plus a windowed prefetcher that slides the
// cache along the clip sequence.
package preload

import (
	"sync"

	"github.com/tlacroix/preroll/internal/media"
)

// entry is the cache-internal mutable state for one locator. Pointer
// identity doubles as the load generation: a load that resolves after its
// entry was evicted (or replaced) sees a different pointer and discards
// its result instead of resurrecting the removed entry.
type entry struct {
	status media.Status
	handle media.Handle
	errMsg string
}

// Cache is the keyed store of media-resource handles. At most one load is
// in flight per locator; background loads never retry (retrying belongs to
// the active-playback path, not prefetch).
type Cache struct {
	mu      sync.Mutex
	loader  media.Loader
	entries map[string]*entry

	onClipReady func(locator string)
}

// NewCache creates an empty cache backed by loader.
func NewCache(loader media.Loader) *Cache {
	return &Cache{
		loader:  loader,
		entries: make(map[string]*entry),
	}
}

// OnClipReady registers an observer invoked whenever a load completes with
// a ready handle. Pass nil to remove it.
func (c *Cache) OnClipReady(fn func(locator string)) {
	c.mu.Lock()
	c.onClipReady = fn
	c.mu.Unlock()
}

// Ensure starts an asynchronous load for locator unless one is already in
// flight or finished. Idempotent: a second call while the entry is pending,
// loading or ready is a no-op. An errored entry is restarted. The entry
// appears as pending immediately and moves to loading once its load task
// actually runs.
func (c *Cache) Ensure(locator string) {
	c.mu.Lock()
	if e, ok := c.entries[locator]; ok && e.status != media.StatusError {
		c.mu.Unlock()
		return
	}
	e := &entry{status: media.StatusPending}
	c.entries[locator] = e
	c.mu.Unlock()

	go c.load(locator, e)
}

func (c *Cache) load(locator string, e *entry) {
	c.mu.Lock()
	if cur, ok := c.entries[locator]; !ok || cur != e {
		// Evicted before the load even started.
		c.mu.Unlock()
		return
	}
	e.status = media.StatusLoading
	c.mu.Unlock()

	h, err := c.loader.Load(locator)

	c.mu.Lock()
	cur, ok := c.entries[locator]
	if !ok || cur != e {
		// Entry was evicted (or replaced) while the load was in flight.
		c.mu.Unlock()
		if h != nil {
			h.Release()
		}
		return
	}
	if err != nil {
		e.status = media.StatusError
		e.errMsg = err.Error()
		c.mu.Unlock()
		return
	}
	e.status = media.StatusReady
	e.handle = h
	ready := c.onClipReady
	c.mu.Unlock()

	if ready != nil {
		ready(locator)
	}
}

// Get returns a snapshot of the entry for locator, if present.
func (c *Cache) Get(locator string) (media.Resource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[locator]
	if !ok {
		return media.Resource{}, false
	}
	return media.Resource{
		Locator:      locator,
		Status:       e.status,
		Handle:       e.handle,
		ErrorMessage: e.errMsg,
	}, true
}

// Evict releases the entry's handle and removes it. Safe to call on an
// absent or in-flight entry; an in-flight load discards its own result
// when it resolves.
func (c *Cache) Evict(locator string) {
	c.mu.Lock()
	e, ok := c.entries[locator]
	if !ok {
		c.mu.Unlock()
		return
	}
	h := e.handle
	e.handle = nil
	delete(c.entries, locator)
	c.mu.Unlock()

	// Release outside the lock: handle teardown may be slow.
	if h != nil {
		h.Release()
	}
}

// Clear evicts every entry. Used on full teardown.
func (c *Cache) Clear() {
	c.mu.Lock()
	var handles []media.Handle
	for locator, e := range c.entries {
		if e.handle != nil {
			handles = append(handles, e.handle)
			e.handle = nil
		}
		delete(c.entries, locator)
	}
	c.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
}

// Contains reports whether locator has a cache entry in any status.
func (c *Cache) Contains(locator string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[locator]
	return ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Locators returns the cached locators in unspecified order.
func (c *Cache) Locators() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for locator := range c.entries {
		out = append(out, locator)
	}
	return out
}
