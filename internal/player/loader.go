package player

import (
	"io"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/tlacroix/preroll/internal/media"
)

// FileHandle is a decoded audio resource ready for playback or analysis.
type FileHandle struct {
	Streamer beep.StreamSeekCloser
	Format   beep.Format

	once   sync.Once
	closer io.Closer
}

// Release closes the streamer and the underlying file. Safe to call more
// than once.
func (h *FileHandle) Release() {
	h.once.Do(func() {
		if h.Streamer != nil {
			h.Streamer.Close()
		}
		if h.closer != nil {
			h.closer.Close()
		}
	})
}

// Verify FileHandle implements media.Handle at compile time.
var _ media.Handle = (*FileHandle)(nil)

// FileLoader decodes local audio files into releasable handles. It is the
// default Loader wired behind the preload cache when clips live on disk.
type FileLoader struct{}

// Load implements media.Loader.
func (FileLoader) Load(locator string) (media.Handle, error) {
	streamer, format, closer, err := DecodeFile(locator)
	if err != nil {
		return nil, err
	}
	return &FileHandle{Streamer: streamer, Format: format, closer: closer}, nil
}

// Verify FileLoader implements media.Loader at compile time.
var _ media.Loader = (FileLoader{})
