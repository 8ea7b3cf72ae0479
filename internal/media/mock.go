package media

import (
	"sync"
	"time"
)

// MockHandle is a test double for Handle that records releases.
type MockHandle struct {
	mu       sync.Mutex
	locator  string
	released int
}

// NewMockHandle creates a mock handle for testing.
func NewMockHandle(locator string) *MockHandle {
	return &MockHandle{locator: locator}
}

func (h *MockHandle) Release() {
	h.mu.Lock()
	h.released++
	h.mu.Unlock()
}

// Released reports whether Release has been called at least once.
func (h *MockHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released > 0
}

// ReleaseCount returns how many times Release was called.
func (h *MockHandle) ReleaseCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Verify MockHandle implements Handle at compile time.
var _ Handle = (*MockHandle)(nil)

// MockLoader is a test double for Loader with per-locator results and an
// optional gate to hold loads in flight.
type MockLoader struct {
	mu        sync.Mutex
	errs      map[string]error
	loadCalls []string
	gate      chan struct{}
}

// NewMockLoader creates a mock loader that returns a fresh MockHandle for
// every locator without a configured error.
func NewMockLoader() *MockLoader {
	return &MockLoader{errs: make(map[string]error)}
}

func (l *MockLoader) Load(locator string) (Handle, error) {
	l.mu.Lock()
	l.loadCalls = append(l.loadCalls, locator)
	gate := l.gate
	err := l.errs[locator]
	l.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return NewMockHandle(locator), nil
}

// Test helpers

// SetError makes loads for locator fail with err.
func (l *MockLoader) SetError(locator string, err error) {
	l.mu.Lock()
	l.errs[locator] = err
	l.mu.Unlock()
}

// Block makes subsequent loads wait; Unblock releases all of them.
func (l *MockLoader) Block() {
	l.mu.Lock()
	l.gate = make(chan struct{})
	l.mu.Unlock()
}

// Unblock releases every load currently held by Block.
func (l *MockLoader) Unblock() {
	l.mu.Lock()
	if l.gate != nil {
		close(l.gate)
		l.gate = nil
	}
	l.mu.Unlock()
}

// LoadCalls returns the locators passed to Load, in call order.
func (l *MockLoader) LoadCalls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loadCalls...)
}

// Verify MockLoader implements Loader at compile time.
var _ Loader = (*MockLoader)(nil)

// MockSurface is a test double for Surface driven by Emit helpers.
type MockSurface struct {
	mu          sync.Mutex
	source      string
	events      SurfaceEvents
	position    time.Duration
	duration    time.Duration
	readyState  ReadyState
	playing     bool
	loadCalls   int
	srcCalls    []string
	seekCalls   []time.Duration
	seekLatency time.Duration
}

// NewMockSurface creates a mock playback surface for testing.
func NewMockSurface() *MockSurface {
	return &MockSurface{}
}

func (s *MockSurface) SetSource(locator string) {
	s.mu.Lock()
	s.source = locator
	s.srcCalls = append(s.srcCalls, locator)
	s.mu.Unlock()
}

func (s *MockSurface) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *MockSurface) Load() {
	s.mu.Lock()
	s.loadCalls++
	s.mu.Unlock()
}

func (s *MockSurface) Play() error {
	s.mu.Lock()
	s.playing = true
	s.mu.Unlock()
	return nil
}

func (s *MockSurface) Pause() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

func (s *MockSurface) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *MockSurface) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Seek records the target and moves the reported position there after
// SeekLatency (immediately by default).
func (s *MockSurface) Seek(target time.Duration) {
	s.mu.Lock()
	s.seekCalls = append(s.seekCalls, target)
	latency := s.seekLatency
	s.mu.Unlock()

	if latency <= 0 {
		s.SetPosition(target)
		return
	}
	time.AfterFunc(latency, func() {
		s.SetPosition(target)
	})
}

func (s *MockSurface) ReadyState() ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyState
}

func (s *MockSurface) SetEvents(ev SurfaceEvents) {
	s.mu.Lock()
	s.events = ev
	s.mu.Unlock()
}

// Test helpers

func (s *MockSurface) SetPosition(d time.Duration) {
	s.mu.Lock()
	s.position = d
	s.mu.Unlock()
}

func (s *MockSurface) SetDuration(d time.Duration) {
	s.mu.Lock()
	s.duration = d
	s.mu.Unlock()
}

func (s *MockSurface) SetReadyState(r ReadyState) {
	s.mu.Lock()
	s.readyState = r
	s.mu.Unlock()
}

// SetSeekLatency delays position updates after Seek by d.
func (s *MockSurface) SetSeekLatency(d time.Duration) {
	s.mu.Lock()
	s.seekLatency = d
	s.mu.Unlock()
}

// SeekCalls returns the targets passed to Seek, in call order.
func (s *MockSurface) SeekCalls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.seekCalls...)
}

// IsPlaying reports whether Play was called without a later Pause.
func (s *MockSurface) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// LoadCallCount returns how many times Load was called.
func (s *MockSurface) LoadCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCalls
}

// SourceCalls returns the locators passed to SetSource, in call order.
func (s *MockSurface) SourceCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.srcCalls...)
}

func (s *MockSurface) snapshot() SurfaceEvents {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// EmitLoadStart fires the loadstart event.
func (s *MockSurface) EmitLoadStart() {
	if fn := s.snapshot().OnLoadStart; fn != nil {
		fn()
	}
}

// EmitWaiting fires the waiting (buffering stall) event.
func (s *MockSurface) EmitWaiting() {
	if fn := s.snapshot().OnWaiting; fn != nil {
		fn()
	}
}

// EmitPlaying fires the playing event.
func (s *MockSurface) EmitPlaying() {
	if fn := s.snapshot().OnPlaying; fn != nil {
		fn()
	}
}

// EmitCanPlay fires the canplay event.
func (s *MockSurface) EmitCanPlay() {
	if fn := s.snapshot().OnCanPlay; fn != nil {
		fn()
	}
}

// EmitError fires the error event with err.
func (s *MockSurface) EmitError(err error) {
	if fn := s.snapshot().OnError; fn != nil {
		fn(err)
	}
}

// Verify MockSurface implements Surface at compile time.
var _ Surface = (*MockSurface)(nil)
