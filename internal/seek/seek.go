// Package seek performs frame-accurate seeks: the completion callback
// fires only once the frame actually presented matches the target, with a
// polling fallback for surfaces without precise frame notifications.
package seek

import (
	"sync"
	"time"

	"github.com/tlacroix/preroll/internal/media"
)

// Config holds the seek timings.
type Config struct {
	PollInterval time.Duration // position poll cadence on the fallback path
	Timeout      time.Duration // give-up deadline for frame confirmation
}

// Seeker performs frame-accurate seeks on one playback surface.
type Seeker struct {
	cfg     Config
	surface media.Surface
}

// New creates a seeker for surface, which may be nil (every seek then
// completes immediately with exact=false).
func New(surface media.Surface, cfg Config) *Seeker {
	return &Seeker{cfg: cfg, surface: surface}
}

// Seek moves the surface to target and invokes onComplete exactly once:
// with exact=true when the presented frame was confirmed at (or past) the
// target, with exact=false when the surface is absent or confirmation
// never arrived before the deadline. Callers must tolerate the inexact
// path.
func (s *Seeker) Seek(target time.Duration, onComplete func(exact bool)) {
	if onComplete == nil {
		onComplete = func(bool) {}
	}
	if s.surface == nil {
		onComplete(false)
		return
	}

	if d := s.surface.Duration(); d > 0 && target > d {
		target = d
	}
	if target < 0 {
		target = 0
	}

	s.surface.Seek(target)

	var once sync.Once
	complete := func(exact bool) {
		once.Do(func() { onComplete(exact) })
	}

	if fn, ok := s.surface.(media.FrameNotifier); ok {
		cancel := fn.OnNextFrame(func(time.Duration) {
			complete(true)
		})
		time.AfterFunc(s.cfg.Timeout, func() {
			cancel()
			complete(false)
		})
		return
	}

	go s.poll(target, complete)
}

// poll watches the reported position until it reaches or passes the
// target, or the deadline expires.
func (s *Seeker) poll(target time.Duration, complete func(exact bool)) {
	deadline := time.Now().Add(s.cfg.Timeout)
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if s.surface.Position() >= target {
			complete(true)
			return
		}
		if time.Now().After(deadline) {
			complete(false)
			return
		}
		<-ticker.C
	}
}
