// Package media defines the resource model and the collaborator contracts
// the engine is built against: the decode/fetch primitive (Loader) and the
// playback surface abstraction (Surface).
package media

// Status represents the lifecycle of a cached media resource.
type Status int

const (
	StatusPending Status = iota
	StatusLoading
	StatusReady
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusLoading:
		return "Loading"
	case StatusReady:
		return "Ready"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsSettled returns true once the resource reached a terminal status.
func (s Status) IsSettled() bool {
	return s == StatusReady || s == StatusError
}

// Handle is an opaque, runtime-owned reference to a loaded media resource.
// Release detaches it from any playback context and discards it; calling
// Release more than once is a no-op.
type Handle interface {
	Release()
}

// Loader is the decode/fetch primitive supplied by collaborators. Load
// blocks until the resource for locator is usable or fails.
type Loader interface {
	Load(locator string) (Handle, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(locator string) (Handle, error)

// Load implements Loader.
func (f LoaderFunc) Load(locator string) (Handle, error) { return f(locator) }

// Resource is a snapshot of a cached media resource. Handle is non-nil only
// when Status is StatusReady; ErrorMessage is non-empty only on StatusError.
type Resource struct {
	Locator      string
	Status       Status
	Handle       Handle
	ErrorMessage string
}
