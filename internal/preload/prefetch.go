package preload

import "sync"

// Prefetcher slides the cache along an ordered clip sequence. On every
// index change it ensures the forward window [index+1, index+ahead] is
// loading (closest first) and evicts entries the window has moved past.
// Sequence position is the only locality signal used; there is no recency
// tie-break.
type Prefetcher struct {
	mu       sync.Mutex
	cache    *Cache
	ahead    int
	sequence []string
	index    int
}

// NewPrefetcher creates a prefetcher over cache with the given forward
// window size.
func NewPrefetcher(cache *Cache, ahead int) *Prefetcher {
	if ahead < 0 {
		ahead = 0
	}
	return &Prefetcher{
		cache: cache,
		ahead: ahead,
		index: -1,
	}
}

// SetSequence replaces the clip sequence. The current index is kept only
// if it still points inside the new sequence; otherwise it resets to -1.
func (p *Prefetcher) SetSequence(locators []string) {
	p.mu.Lock()
	p.sequence = append([]string(nil), locators...)
	if p.index >= len(p.sequence) {
		p.index = -1
	}
	p.mu.Unlock()
}

// Index returns the current playback index (-1 if none).
func (p *Prefetcher) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Sequence returns a copy of the clip sequence.
func (p *Prefetcher) Sequence() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.sequence...)
}

// SetIndex moves the current playback position and updates the cache:
// forward-window locators are ensured in index order, then every cached
// locator strictly behind the current index is evicted.
func (p *Prefetcher) SetIndex(index int) {
	p.mu.Lock()
	if index < 0 || index >= len(p.sequence) {
		p.mu.Unlock()
		return
	}
	p.index = index

	// Locators within [index, index+ahead] must survive, even if the
	// same locator also appears earlier in the sequence.
	keep := make(map[string]struct{})
	hi := min(index+p.ahead, len(p.sequence)-1)
	for i := index; i <= hi; i++ {
		keep[p.sequence[i]] = struct{}{}
	}

	var ensure []string
	for i := index + 1; i <= hi; i++ {
		ensure = append(ensure, p.sequence[i])
	}

	var stale []string
	for i := range index {
		if _, ok := keep[p.sequence[i]]; ok {
			continue
		}
		stale = append(stale, p.sequence[i])
	}
	p.mu.Unlock()

	// Closer clips first: the cache serializes nothing itself, but load
	// goroutines start in this order.
	for _, locator := range ensure {
		p.cache.Ensure(locator)
	}
	for _, locator := range stale {
		p.cache.Evict(locator)
	}
}
