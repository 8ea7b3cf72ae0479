package playback

import (
	"time"

	"github.com/tlacroix/preroll/internal/loadstate"
	"github.com/tlacroix/preroll/internal/media"
)

// Service defines the preload and playback engine contract.
type Service interface {
	// Preload cache
	EnsurePreloaded(locator string)
	CacheEntry(locator string) (media.Resource, bool)
	Evict(locator string)
	ClearCache()

	// Playlist-driven prefetch
	SetPlaylist(locators []string)
	PlaylistIndex() int
	JumpTo(index int) error
	Advance() error

	// Active playback load (supervised by the retry controller)
	LoadClip(locator string) error
	CurrentClip() string

	// Load state surfaced to the UI
	LoadState() loadstate.State
	Loading() bool
	LoadErr() string

	// Frame-accurate seek
	SeekAccurate(target time.Duration, onComplete func(exact bool))

	// Waveform data (cache-backed)
	Waveform(locator string, width int) ([]float64, error)

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
