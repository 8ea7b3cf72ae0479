// Package player provides the beep/speaker-backed reference implementation
// of the playback surface contract, plus the file-backed decode loader.
package player

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/tlacroix/preroll/internal/media"
)

var (
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// Player is a media.Surface backed by the beep speaker. Load decodes the
// current source asynchronously and reports the load lifecycle through the
// registered SurfaceEvents.
type Player struct {
	mu     sync.Mutex
	source string
	events media.SurfaceEvents

	streamer beep.StreamSeekCloser
	format   beep.Format
	closer   io.Closer
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	readyState media.ReadyState
	loadGen    uint64
}

// New creates a player with no source attached.
func New() *Player {
	return &Player{readyState: media.HaveNothing}
}

// SetSource attaches a new locator. Any previously decoded resource is
// released and readiness drops back to nothing.
func (p *Player) SetSource(locator string) {
	p.mu.Lock()
	p.loadGen++
	p.releaseLocked()
	p.source = locator
	p.readyState = media.HaveNothing
	p.mu.Unlock()
}

// Source returns the attached locator.
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Load decodes the attached source in the background, emitting loadstart
// immediately and canplay or error when the decode settles. A newer
// SetSource or Load supersedes an unfinished decode.
func (p *Player) Load() {
	p.mu.Lock()
	p.loadGen++
	gen := p.loadGen
	src := p.source
	ev := p.events
	p.mu.Unlock()

	if ev.OnLoadStart != nil {
		ev.OnLoadStart()
	}
	if src == "" {
		if ev.OnError != nil {
			ev.OnError(fmt.Errorf("no source attached"))
		}
		return
	}

	go func() {
		streamer, format, closer, err := DecodeFile(src)

		p.mu.Lock()
		if p.loadGen != gen {
			// A newer load superseded this one; discard the result.
			p.mu.Unlock()
			if streamer != nil {
				streamer.Close()
			}
			if closer != nil {
				closer.Close()
			}
			return
		}
		if err != nil {
			p.readyState = media.HaveNothing
			ev := p.events
			p.mu.Unlock()
			if ev.OnError != nil {
				ev.OnError(err)
			}
			return
		}
		p.releaseLocked()
		p.streamer = streamer
		p.format = format
		p.closer = closer
		p.readyState = media.HaveEnoughData
		ev := p.events
		p.mu.Unlock()

		if ev.OnCanPlay != nil {
			ev.OnCanPlay()
		}
	}()
}

// Play starts (or resumes) playback of the decoded source.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return fmt.Errorf("play %s: not loaded", p.source)
	}

	if p.ctrl != nil {
		// Paused: resume in place.
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		p.emitPlayingLocked()
		return nil
	}

	if !speakerInitialized {
		speakerSampleRate = p.format.SampleRate
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("init speaker: %w", err)
		}
		speakerInitialized = true
	}

	// Resample if the clip's sample rate differs from the speaker's
	var playStreamer beep.Streamer = p.streamer
	if p.format.SampleRate != speakerSampleRate {
		playStreamer = beep.Resample(4, p.format.SampleRate, speakerSampleRate, p.streamer)
	}
	p.ctrl = &beep.Ctrl{Streamer: playStreamer, Paused: false}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2, Volume: 0, Silent: false}

	speaker.Play(p.volume)
	p.emitPlayingLocked()
	return nil
}

func (p *Player) emitPlayingLocked() {
	if fn := p.events.OnPlaying; fn != nil {
		go fn()
	}
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Position())
}

// Duration returns the decoded clip duration.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Seek moves the playback position to target. Audio is muted across the
// jump to avoid artifacts.
func (p *Player) Seek(target time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return
	}

	pos := p.format.SampleRate.N(target)
	pos = max(pos, 0)
	if l := p.streamer.Len(); pos >= l {
		pos = l - 1
	}

	if p.volume != nil {
		speaker.Lock()
		p.volume.Silent = true
		_ = p.streamer.Seek(pos)
		p.volume.Silent = false
		speaker.Unlock()
		return
	}
	_ = p.streamer.Seek(pos)
}

// ReadyState returns the current readiness level.
func (p *Player) ReadyState() media.ReadyState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readyState
}

// SetEvents registers the load-lifecycle callbacks.
func (p *Player) SetEvents(ev media.SurfaceEvents) {
	p.mu.Lock()
	p.events = ev
	p.mu.Unlock()
}

// Close detaches and releases the decoded resource.
func (p *Player) Close() {
	p.mu.Lock()
	p.loadGen++
	p.releaseLocked()
	p.readyState = media.HaveNothing
	p.mu.Unlock()
}

func (p *Player) releaseLocked() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
		p.volume = nil
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.closer != nil {
		p.closer.Close()
		p.closer = nil
	}
}

// Verify Player implements media.Surface at compile time.
var _ media.Surface = (*Player)(nil)
