package media

import "time"

// ReadyState mirrors the readiness ladder of a playback surface.
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// String returns the ready state name.
func (r ReadyState) String() string {
	switch r {
	case HaveNothing:
		return "HaveNothing"
	case HaveMetadata:
		return "HaveMetadata"
	case HaveCurrentData:
		return "HaveCurrentData"
	case HaveFutureData:
		return "HaveFutureData"
	case HaveEnoughData:
		return "HaveEnoughData"
	default:
		return "Unknown"
	}
}

// SurfaceEvents carries the load-lifecycle callbacks a surface notifies.
// Nil callbacks are skipped.
type SurfaceEvents struct {
	OnLoadStart func()
	OnWaiting   func()
	OnPlaying   func()
	OnCanPlay   func()
	OnError     func(err error)
}

// Surface is the playback surface abstraction supplied by collaborators.
type Surface interface {
	SetSource(locator string)
	Source() string
	Load()
	Play() error
	Pause()
	Position() time.Duration
	Duration() time.Duration
	Seek(target time.Duration)
	ReadyState() ReadyState
	SetEvents(ev SurfaceEvents)
}

// FrameNotifier is implemented by surfaces that expose a precise
// frame-presentation notification. OnNextFrame registers a one-shot
// callback invoked with the presentation time of the next decoded frame;
// the returned cancel func unregisters it if it has not fired yet.
type FrameNotifier interface {
	OnNextFrame(fn func(presented time.Duration)) (cancel func())
}
