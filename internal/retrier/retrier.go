// Package retrier supervises error recovery for a single playback
// surface's active load: it classifies failures, schedules linear-backoff
// reissues for transient ones, and surfaces terminal failures once.
package retrier

import (
	"sync"
	"time"

	"github.com/tlacroix/preroll/internal/mediaerr"
)

// Config bounds retry behavior for one load.
type Config struct {
	MaxAttempts int           // retries before a recoverable failure turns terminal
	BaseDelay   time.Duration // linear backoff base: delay = attempt * BaseDelay
}

// Controller tracks retry state for one active load. The attempt count
// resets on every new load start; a pending retry is cancelled whenever a
// newer load supersedes it (stale-retry suppression).
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	attempt int
	timer   *time.Timer
	gen     uint64
}

// New creates a controller with the given config.
func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// Reset cancels any pending retry and zeroes the attempt count. Call on
// every new load start for the surface this controller supervises.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.cancelLocked()
	c.attempt = 0
	c.mu.Unlock()
}

// Cancel drops any pending retry without touching the attempt count.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cancelLocked()
	c.mu.Unlock()
}

func (c *Controller) cancelLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Attempts returns the number of reissues scheduled for the current load.
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

// OnFailure decides what to do with a load failure. For a recoverable
// error with attempts remaining it increments the attempt count, schedules
// reissue after attempt*BaseDelay, and returns true: the caller must not
// report anything yet. Otherwise it returns false and the caller surfaces
// the terminal error immediately.
func (c *Controller) OnFailure(err error, reissue func()) bool {
	if mediaerr.ClassOf(err) == mediaerr.ClassFatal {
		c.Cancel()
		return false
	}

	c.mu.Lock()
	if c.attempt >= c.cfg.MaxAttempts {
		c.cancelLocked()
		c.mu.Unlock()
		return false
	}
	c.attempt++
	delay := time.Duration(c.attempt) * c.cfg.BaseDelay

	// Replace any stale pending retry before arming a new one.
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		live := c.gen == gen
		if live {
			c.timer = nil
		}
		c.mu.Unlock()
		if live {
			reissue()
		}
	})
	c.mu.Unlock()
	return true
}

// NextDelay returns the backoff the next recoverable failure would get,
// or 0 if attempts are exhausted.
func (c *Controller) NextDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt >= c.cfg.MaxAttempts {
		return 0
	}
	return time.Duration(c.attempt+1) * c.cfg.BaseDelay
}
