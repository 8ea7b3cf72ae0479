// internal/preload/cache_test.go
//
//nolint:goconst // test file with repeated string literals
package preload

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tlacroix/preroll/internal/media"
)

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never held")
}

func TestCache_Ensure(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)

	c.Ensure("clip://a")
	waitFor(t, func() bool {
		r, ok := c.Get("clip://a")
		return ok && r.Status == media.StatusReady
	})

	r, ok := c.Get("clip://a")
	if !ok {
		t.Fatal("Get() should find the entry")
	}
	if r.Handle == nil {
		t.Error("ready entry should carry a handle")
	}
	if r.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty", r.ErrorMessage)
	}
}

func TestCache_Ensure_Idempotent(t *testing.T) {
	loader := media.NewMockLoader()
	loader.Block()
	c := NewCache(loader)

	c.Ensure("clip://a")
	c.Ensure("clip://a")
	c.Ensure("clip://a")
	loader.Unblock()

	waitFor(t, func() bool {
		r, ok := c.Get("clip://a")
		return ok && r.Status == media.StatusReady
	})

	if calls := loader.LoadCalls(); len(calls) != 1 {
		t.Errorf("loader called %d times, want 1 (at-most-one-in-flight)", len(calls))
	}
}

func TestCache_Ensure_ReadyIsNoOp(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)

	c.Ensure("clip://a")
	waitFor(t, func() bool {
		r, _ := c.Get("clip://a")
		return r.Status == media.StatusReady
	})

	c.Ensure("clip://a")
	time.Sleep(10 * time.Millisecond)

	if calls := loader.LoadCalls(); len(calls) != 1 {
		t.Errorf("loader called %d times, want 1", len(calls))
	}
}

func TestCache_Ensure_RestartsErroredEntry(t *testing.T) {
	loader := media.NewMockLoader()
	loader.SetError("clip://bad", errors.New("boom"))
	c := NewCache(loader)

	c.Ensure("clip://bad")
	waitFor(t, func() bool {
		r, _ := c.Get("clip://bad")
		return r.Status == media.StatusError
	})

	r, _ := c.Get("clip://bad")
	if r.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q, want %q", r.ErrorMessage, "boom")
	}

	// A later ensure re-attempts the load.
	loader.SetError("clip://bad", nil)
	c.Ensure("clip://bad")
	waitFor(t, func() bool {
		r, _ := c.Get("clip://bad")
		return r.Status == media.StatusReady
	})

	if calls := loader.LoadCalls(); len(calls) != 2 {
		t.Errorf("loader called %d times, want 2", len(calls))
	}
}

func TestCache_PendingUntilLoadRuns(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	var c *Cache
	var statusInLoad media.Status
	c = NewCache(media.LoaderFunc(func(locator string) (media.Handle, error) {
		r, _ := c.Get(locator)
		statusInLoad = r.Status
		close(entered)
		<-gate
		return media.NewMockHandle(locator), nil
	}))

	c.Ensure("clip://a")

	// The entry is visible immediately, before the load task runs.
	r, ok := c.Get("clip://a")
	if !ok {
		t.Fatal("entry should exist right after Ensure")
	}
	if r.Status.IsSettled() {
		t.Errorf("status = %v right after Ensure, want Pending or Loading", r.Status)
	}

	<-entered
	if statusInLoad != media.StatusLoading {
		t.Errorf("status seen by the loader = %v, want Loading", statusInLoad)
	}

	close(gate)
	waitFor(t, func() bool {
		r, _ := c.Get("clip://a")
		return r.Status == media.StatusReady
	})
}

func TestCache_Get_Absent(t *testing.T) {
	c := NewCache(media.NewMockLoader())

	if _, ok := c.Get("clip://missing"); ok {
		t.Error("Get() on absent locator should return ok=false")
	}
}

func TestCache_Evict_ReleasesHandle(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)

	c.Ensure("clip://a")
	waitFor(t, func() bool {
		r, _ := c.Get("clip://a")
		return r.Status == media.StatusReady
	})

	r, _ := c.Get("clip://a")
	handle := r.Handle.(*media.MockHandle)

	c.Evict("clip://a")

	if !handle.Released() {
		t.Error("evict should release the handle")
	}
	if _, ok := c.Get("clip://a"); ok {
		t.Error("entry should be absent after evict")
	}
}

func TestCache_Evict_AbsentIsNoOp(t *testing.T) {
	c := NewCache(media.NewMockLoader())
	c.Evict("clip://missing") // must not panic
}

func TestCache_Evict_InFlightSelfDiscards(t *testing.T) {
	loader := media.NewMockLoader()
	loader.Block()
	c := NewCache(loader)

	c.Ensure("clip://a")
	c.Evict("clip://a")

	if c.Contains("clip://a") {
		t.Error("entry should be gone immediately after evict")
	}

	loader.Unblock()

	// The load resolves after eviction: it must discard its handle and
	// must not resurrect the entry.
	time.Sleep(20 * time.Millisecond)
	if c.Contains("clip://a") {
		t.Error("late-resolving load must not resurrect an evicted entry")
	}
}

func TestCache_Clear(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)

	c.Ensure("clip://a")
	c.Ensure("clip://b")
	waitFor(t, func() bool { return c.Len() == 2 })
	waitFor(t, func() bool {
		ra, _ := c.Get("clip://a")
		rb, _ := c.Get("clip://b")
		return ra.Status == media.StatusReady && rb.Status == media.StatusReady
	})

	ra, _ := c.Get("clip://a")
	handle := ra.Handle.(*media.MockHandle)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
	if !handle.Released() {
		t.Error("Clear should release handles")
	}
}

func TestCache_OnClipReady(t *testing.T) {
	loader := media.NewMockLoader()
	c := NewCache(loader)

	var mu sync.Mutex
	var ready []string
	c.OnClipReady(func(locator string) {
		mu.Lock()
		ready = append(ready, locator)
		mu.Unlock()
	})

	c.Ensure("clip://a")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ready) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if ready[0] != "clip://a" {
		t.Errorf("ready = %v, want [clip://a]", ready)
	}
}

func TestCache_OnClipReady_NotFiredOnError(t *testing.T) {
	loader := media.NewMockLoader()
	loader.SetError("clip://bad", errors.New("boom"))
	c := NewCache(loader)

	fired := false
	c.OnClipReady(func(string) { fired = true })

	c.Ensure("clip://bad")
	waitFor(t, func() bool {
		r, _ := c.Get("clip://bad")
		return r.Status == media.StatusError
	})

	if fired {
		t.Error("clip-ready observer must not fire for failed loads")
	}
}
