// Package playback ties the engine together: preload cache, windowed
// prefetcher, retry controller, load-state tracker, frame-accurate seek
// and waveform extraction behind one service, with event subscriptions for
// the UI layer.
package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/tlacroix/preroll/internal/config"
	"github.com/tlacroix/preroll/internal/loadstate"
	"github.com/tlacroix/preroll/internal/media"
	"github.com/tlacroix/preroll/internal/mediaerr"
	"github.com/tlacroix/preroll/internal/preload"
	"github.com/tlacroix/preroll/internal/retrier"
	"github.com/tlacroix/preroll/internal/seek"
	"github.com/tlacroix/preroll/internal/waveform"
)

// Verify engine implements Service at compile time.
var _ Service = (*engine)(nil)

type engine struct {
	mu sync.Mutex

	surface    media.Surface
	cache      *preload.Cache
	prefetcher *preload.Prefetcher
	tracker    *loadstate.Tracker
	retrier    *retrier.Controller
	seeker     *seek.Seeker
	extractor  *waveform.Extractor

	current string // locator of the active load on the surface

	subs   []*Subscription
	subsMu sync.RWMutex
	closed bool
}

// New creates the engine over a playback surface, a decode/fetch loader
// for background preloads, and a waveform decoder. All caches are owned by
// the returned Service and live until Close.
func New(surface media.Surface, loader media.Loader, dec waveform.Decoder, cfg *config.Config) Service {
	ecfg := cfg.GetEngineConfig()
	wcfg := cfg.GetWaveformConfig()
	scfg := cfg.GetSeekConfig()

	cache := preload.NewCache(loader)
	e := &engine{
		surface:    surface,
		cache:      cache,
		prefetcher: preload.NewPrefetcher(cache, ecfg.PreloadAhead),
		tracker: loadstate.New(loadstate.Config{
			WaitingDebounce: time.Duration(ecfg.WaitingDebounce) * time.Millisecond,
			SafetyTimeout:   time.Duration(ecfg.SafetyTimeoutMs) * time.Millisecond,
		}),
		retrier: retrier.New(retrier.Config{
			MaxAttempts: ecfg.MaxAttempts,
			BaseDelay:   time.Duration(ecfg.BaseDelayMs) * time.Millisecond,
		}),
		seeker: seek.New(surface, seek.Config{
			PollInterval: time.Duration(scfg.PollIntervalMs) * time.Millisecond,
			Timeout:      time.Duration(scfg.TimeoutMs) * time.Millisecond,
		}),
		extractor: waveform.NewExtractor(dec, waveform.NewCache(), wcfg.MaxSamples),
	}

	cache.OnClipReady(e.handleClipReady)
	e.tracker.OnChange(e.handleStateChange)
	if surface != nil {
		surface.SetEvents(media.SurfaceEvents{
			OnLoadStart: e.handleLoadStart,
			OnWaiting:   e.handleWaiting,
			OnPlaying:   e.handlePlaying,
			OnCanPlay:   e.handleCanPlay,
			OnError:     e.handleSurfaceError,
		})
	}

	return e
}

// EnsurePreloaded starts a background load for locator unless one is
// already in flight or finished.
func (e *engine) EnsurePreloaded(locator string) {
	e.cache.Ensure(locator)
}

// CacheEntry returns a snapshot of the cache entry for locator.
func (e *engine) CacheEntry(locator string) (media.Resource, bool) {
	return e.cache.Get(locator)
}

// Evict releases and removes the cache entry for locator.
func (e *engine) Evict(locator string) {
	e.cache.Evict(locator)
}

// ClearCache evicts every cached entry.
func (e *engine) ClearCache() {
	e.cache.Clear()
}

// SetPlaylist replaces the ordered clip sequence driving the prefetch
// window.
func (e *engine) SetPlaylist(locators []string) {
	e.prefetcher.SetSequence(locators)
}

// PlaylistIndex returns the current playlist position (-1 if none).
func (e *engine) PlaylistIndex() int {
	return e.prefetcher.Index()
}

// JumpTo moves playback to the clip at index: the forward window is
// prefetched, stale entries behind the window are evicted, and the clip
// itself becomes the active load on the surface.
func (e *engine) JumpTo(index int) error {
	seq := e.prefetcher.Sequence()
	if index < 0 || index >= len(seq) {
		return fmt.Errorf("jump to clip %d: playlist has %d clips", index, len(seq))
	}
	e.prefetcher.SetIndex(index)
	return e.LoadClip(seq[index])
}

// Advance moves to the next playlist clip.
func (e *engine) Advance() error {
	return e.JumpTo(e.prefetcher.Index() + 1)
}

// LoadClip makes locator the active load on the playback surface. Any
// retry pending for a previous load is cancelled first so a stale reissue
// can never clobber this one.
func (e *engine) LoadClip(locator string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("load %s: engine closed", locator)
	}
	if e.surface == nil {
		e.mu.Unlock()
		return fmt.Errorf("load %s: no playback surface", locator)
	}
	e.current = locator
	e.mu.Unlock()

	e.retrier.Reset()
	e.surface.SetSource(locator)
	e.surface.Load()
	return nil
}

// CurrentClip returns the locator of the active load, if any.
func (e *engine) CurrentClip() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// LoadState returns the tracked load state.
func (e *engine) LoadState() loadstate.State {
	return e.tracker.State()
}

// Loading reports whether the visible loading indicator is up.
func (e *engine) Loading() bool {
	return e.tracker.Loading()
}

// LoadErr returns the last terminal load error message.
func (e *engine) LoadErr() string {
	return e.tracker.Err()
}

// SeekAccurate seeks the surface to target and fires onComplete once the
// presented frame is confirmed (or the fallback path gives up).
func (e *engine) SeekAccurate(target time.Duration, onComplete func(exact bool)) {
	e.seeker.Seek(target, func(exact bool) {
		e.publish(func(s *Subscription) {
			s.sendSeek(SeekComplete{Target: target, Exact: exact})
		})
		if onComplete != nil {
			onComplete(exact)
		}
	})
}

// Waveform returns the normalized peak sequence for locator, extracting
// and caching it on first request.
func (e *engine) Waveform(locator string, width int) ([]float64, error) {
	peaks, err := e.extractor.Peaks(locator, width)
	if err != nil {
		e.publish(func(s *Subscription) {
			s.sendError(ErrorEvent{
				Op:      mediaerr.OpExtract,
				Locator: locator,
				Class:   mediaerr.ClassFatal,
				Err:     err,
			})
		})
		return nil, err
	}
	return peaks, nil
}

// Subscribe creates a new event subscription.
func (e *engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Close tears the engine down: pending retries cancelled, cache evicted,
// subscriptions closed.
func (e *engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.current = ""
	e.mu.Unlock()

	e.retrier.Cancel()
	e.tracker.Reset()
	e.cache.Clear()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()

	return nil
}

// Surface event handlers

func (e *engine) handleLoadStart() {
	e.tracker.LoadStart()
}

func (e *engine) handleWaiting() {
	e.tracker.Waiting()
}

func (e *engine) handlePlaying() {
	e.tracker.Playing()
}

func (e *engine) handleCanPlay() {
	// Retry state dies with the load it supervised: a later failure on the
	// same surface starts with a fresh attempt budget.
	e.retrier.Reset()
	e.tracker.CanPlay()
}

// handleSurfaceError feeds a load failure through the retry controller.
// Recoverable failures with attempts left reissue the load in place on the
// same surface; everything else surfaces exactly once.
func (e *engine) handleSurfaceError(err error) {
	e.mu.Lock()
	locator := e.current
	surface := e.surface
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}

	scheduled := e.retrier.OnFailure(err, func() {
		// Same resource identity, new load attempt. The reissue was
		// already cancelled if a newer LoadClip superseded it.
		surface.Load()
	})
	if scheduled {
		return
	}

	e.tracker.Fail(mediaerr.FormatWith(mediaerr.OpLoad, locator, err))
	e.publish(func(s *Subscription) {
		s.sendError(ErrorEvent{
			Op:      mediaerr.OpLoad,
			Locator: locator,
			Class:   mediaerr.ClassOf(err),
			Err:     err,
		})
	})
}

func (e *engine) handleClipReady(locator string) {
	e.publish(func(s *Subscription) {
		s.sendClipReady(ClipReady{Locator: locator})
	})
}

func (e *engine) handleStateChange(state loadstate.State) {
	e.publish(func(s *Subscription) {
		s.sendState(LoadStateChange{State: state})
	})
}

func (e *engine) publish(send func(*Subscription)) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		send(sub)
	}
}
