// Package loadstate debounces transient buffering stalls against genuine
// loading and bounds how long a visible loading indicator may stay up.
package loadstate

import (
	"sync"
	"time"
)

// State represents the visible load state of one playback surface.
//
// Transitions:
//   - any      → Loading  (via LoadStart; safety timer armed)
//   - Ready    → Stalled  (via Waiting; debounce timer armed)
//   - Stalled  → Loading  (debounce fired while still stalled)
//   - Stalled  → Ready    (via CanPlay/Playing before the debounce fired)
//   - Loading  → Ready    (via CanPlay/Playing)
//   - Loading  → Idle     (safety timer fired; indicator cleared, load may
//     still be in progress underneath)
//   - any      → Error    (via Fail)
//
// At most one of the two timers is armed at any instant; arming one always
// disarms the other's stale instance first. A timer never fires into a
// state that has already moved on.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateStalled
	StateReady
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateStalled:
		return "Stalled"
	case StateReady:
		return "Ready"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Config holds the tracker timings.
type Config struct {
	WaitingDebounce time.Duration // stall duration before loading becomes visible
	SafetyTimeout   time.Duration // max visible loading duration without a real transition
}

// Tracker is the per-surface load state machine.
type Tracker struct {
	mu     sync.Mutex
	cfg    Config
	state  State
	errMsg string

	waitingTimer *time.Timer
	safetyTimer  *time.Timer
	gen          uint64

	onChange func(State)
}

// New creates an idle tracker with the given timings.
func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, state: StateIdle}
}

// OnChange registers a callback invoked (outside the tracker lock) after
// every state change.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Loading reports whether the visible loading indicator is up.
func (t *Tracker) Loading() bool {
	return t.State() == StateLoading
}

// Err returns the last error message, empty unless in StateError.
func (t *Tracker) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// LoadStart marks the beginning of a new load: visible loading, prior
// error cleared, safety timer armed.
func (t *Tracker) LoadStart() {
	t.mu.Lock()
	t.disarmLocked()
	t.errMsg = ""
	t.armSafetyLocked()
	t.setStateLocked(StateLoading)
}

// Waiting marks a buffering stall. The stall only becomes visible loading
// if it outlasts the debounce window; sub-window stalls never flicker the
// indicator.
func (t *Tracker) Waiting() {
	t.mu.Lock()
	if t.state == StateLoading {
		// Already visible; nothing to debounce.
		t.mu.Unlock()
		return
	}
	t.disarmLocked()
	gen := t.gen
	t.waitingTimer = time.AfterFunc(t.cfg.WaitingDebounce, func() {
		t.debounceFired(gen)
	})
	t.setStateLocked(StateStalled)
}

func (t *Tracker) debounceFired(gen uint64) {
	t.mu.Lock()
	if t.gen != gen || t.state != StateStalled {
		t.mu.Unlock()
		return
	}
	t.disarmLocked()
	t.armSafetyLocked()
	t.setStateLocked(StateLoading)
}

// CanPlay marks the surface ready: both timers disarmed, loading and error
// cleared.
func (t *Tracker) CanPlay() {
	t.mu.Lock()
	t.disarmLocked()
	t.errMsg = ""
	t.setStateLocked(StateReady)
}

// Playing is equivalent to CanPlay for the state machine.
func (t *Tracker) Playing() {
	t.CanPlay()
}

// Fail records a terminal load error and clears the loading indicator.
func (t *Tracker) Fail(msg string) {
	t.mu.Lock()
	t.disarmLocked()
	t.errMsg = msg
	t.setStateLocked(StateError)
}

// Reset returns the tracker to idle, disarming both timers.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.disarmLocked()
	t.errMsg = ""
	t.setStateLocked(StateIdle)
}

// armSafetyLocked arms the spinner bound. When it fires the indicator is
// cleared even though the underlying load may still be in progress; this
// is a UI bound, not a load timeout.
func (t *Tracker) armSafetyLocked() {
	gen := t.gen
	t.safetyTimer = time.AfterFunc(t.cfg.SafetyTimeout, func() {
		t.safetyFired(gen)
	})
}

func (t *Tracker) safetyFired(gen uint64) {
	t.mu.Lock()
	if t.gen != gen || t.state != StateLoading {
		t.mu.Unlock()
		return
	}
	t.disarmLocked()
	t.setStateLocked(StateIdle)
}

// disarmLocked cancels both timers and invalidates any in-flight fires.
func (t *Tracker) disarmLocked() {
	t.gen++
	if t.waitingTimer != nil {
		t.waitingTimer.Stop()
		t.waitingTimer = nil
	}
	if t.safetyTimer != nil {
		t.safetyTimer.Stop()
		t.safetyTimer = nil
	}
}

// setStateLocked updates the state and releases the lock before notifying.
func (t *Tracker) setStateLocked(s State) {
	changed := t.state != s
	t.state = s
	fn := t.onChange
	t.mu.Unlock()

	if changed && fn != nil {
		fn(s)
	}
}
