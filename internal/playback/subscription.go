package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged  <-chan LoadStateChange
	ClipReady     <-chan ClipReady
	SeekCompleted <-chan SeekComplete
	Error         <-chan ErrorEvent
	Done          <-chan struct{}

	// Internal write channels
	stateCh chan LoadStateChange
	clipCh  chan ClipReady
	seekCh  chan SeekComplete
	errorCh chan ErrorEvent
	doneCh  chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh: make(chan LoadStateChange, eventBufferSize),
		clipCh:  make(chan ClipReady, eventBufferSize),
		seekCh:  make(chan SeekComplete, eventBufferSize),
		errorCh: make(chan ErrorEvent, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.ClipReady = s.clipCh
	s.SeekCompleted = s.seekCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a load state change event (non-blocking).
func (s *Subscription) sendState(e LoadStateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendClipReady sends a clip ready event (non-blocking).
func (s *Subscription) sendClipReady(e ClipReady) {
	select {
	case s.clipCh <- e:
	default:
	}
}

// sendSeek sends a seek completion event (non-blocking).
func (s *Subscription) sendSeek(e SeekComplete) {
	select {
	case s.seekCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
