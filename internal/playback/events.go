package playback

import (
	"time"

	"github.com/tlacroix/preroll/internal/loadstate"
	"github.com/tlacroix/preroll/internal/mediaerr"
)

// LoadStateChange is emitted whenever the tracked load state moves.
type LoadStateChange struct {
	State loadstate.State
}

// ClipReady is emitted when a background preload settles with a usable
// handle.
//
// NOT emitted for the active playback load: the surface's own canplay
// signal covers that path, and emitting both would double-notify the UI.
type ClipReady struct {
	Locator string
}

// SeekComplete is emitted when a frame-accurate seek settles. Exact is
// false when the surface was absent or frame confirmation timed out;
// consumers needing hard accuracy must check it.
type SeekComplete struct {
	Target time.Duration
	Exact  bool
}

// ErrorEvent is emitted once per terminal failure: fatal load errors and
// recoverable ones that exhausted their retries. Suppressed failures that
// are still being retried never appear here.
type ErrorEvent struct {
	Op      mediaerr.Op
	Locator string
	Class   mediaerr.Class
	Err     error
}
