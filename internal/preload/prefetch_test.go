// internal/preload/prefetch_test.go
package preload

import (
	"slices"
	"testing"

	"github.com/tlacroix/preroll/internal/media"
)

func cachedSorted(c *Cache) []string {
	out := c.Locators()
	slices.Sort(out)
	return out
}

func TestPrefetcher_ForwardWindow(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 2)

	p.SetSequence([]string{"A", "B", "C", "D"})
	p.SetIndex(0)

	want := []string{"B", "C"}
	if got := cachedSorted(c); !slices.Equal(got, want) {
		t.Errorf("cache after index 0 = %v, want %v", got, want)
	}
}

func TestPrefetcher_AdvanceEvictsBehind(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 2)

	p.SetSequence([]string{"A", "B", "C", "D"})

	// Simulate A having been loaded as the initial active clip.
	c.Ensure("A")
	p.SetIndex(0)

	p.SetIndex(1)

	// preloadAhead=2, index 0->1 ends with {B,C,D}, A evicted.
	want := []string{"B", "C", "D"}
	if got := cachedSorted(c); !slices.Equal(got, want) {
		t.Errorf("cache after 0->1 = %v, want %v", got, want)
	}

	p.SetIndex(2)
	want = []string{"C", "D"}
	if got := cachedSorted(c); !slices.Equal(got, want) {
		t.Errorf("cache after 1->2 = %v, want %v", got, want)
	}

	p.SetIndex(3)
	want = []string{"D"}
	if got := cachedSorted(c); !slices.Equal(got, want) {
		t.Errorf("cache after 2->3 = %v, want %v", got, want)
	}
}

func TestPrefetcher_NothingBehindRemains(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 2)

	seq := []string{"A", "B", "C", "D", "E", "F"}
	p.SetSequence(seq)

	for idx := range seq {
		p.SetIndex(idx)
		for i, locator := range seq {
			if i < idx && c.Contains(locator) {
				t.Errorf("index %d: %s (position %d) should have been evicted", idx, locator, i)
			}
		}
	}
}

func TestPrefetcher_WindowClampedAtEnd(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 3)

	p.SetSequence([]string{"A", "B"})
	p.SetIndex(1)

	if got := cachedSorted(c); len(got) != 0 {
		t.Errorf("cache = %v, want empty (no clips past the end)", got)
	}
}

func TestPrefetcher_ForwardWindowLoadsEachOnce(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 3)

	p.SetSequence([]string{"A", "B", "C", "D"})
	p.SetIndex(0)

	waitFor(t, func() bool {
		for _, locator := range []string{"B", "C", "D"} {
			r, ok := c.Get(locator)
			if !ok || r.Status != media.StatusReady {
				return false
			}
		}
		return true
	})

	// Loads run concurrently, so call order is unordered; each window
	// locator is fetched exactly once.
	got := loader.LoadCalls()
	slices.Sort(got)
	want := []string{"B", "C", "D"}
	if !slices.Equal(got, want) {
		t.Errorf("loads = %v, want %v (each exactly once)", got, want)
	}
}

func TestPrefetcher_DuplicateLocatorSurvivesEviction(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 2)

	// A appears both far behind and inside the keep range.
	p.SetSequence([]string{"A", "B", "C", "A", "E"})
	p.SetIndex(0)
	p.SetIndex(1)
	p.SetIndex(2)

	// Position 0 is stale but position 3 is in the forward window.
	if !c.Contains("A") {
		t.Error("A should survive: it is still in the forward window")
	}
}

func TestPrefetcher_SetIndexOutOfRange(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 2)

	p.SetSequence([]string{"A", "B"})
	p.SetIndex(5)
	p.SetIndex(-1)

	if p.Index() != -1 {
		t.Errorf("Index() = %d, want -1 (out-of-range jumps ignored)", p.Index())
	}
	if c.Len() != 0 {
		t.Errorf("cache = %v, want empty", c.Locators())
	}
}

func TestPrefetcher_SetSequenceResetsStaleIndex(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)
	p := NewPrefetcher(c, 2)

	p.SetSequence([]string{"A", "B", "C"})
	p.SetIndex(2)
	p.SetSequence([]string{"A"})

	if p.Index() != -1 {
		t.Errorf("Index() = %d after shrinking sequence, want -1", p.Index())
	}
}
