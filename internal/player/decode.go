package player

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"

	"github.com/tlacroix/preroll/internal/mediaerr"
)

const (
	extWAV  = ".wav"
	extFLAC = ".flac"
	extMP3  = ".mp3"
)

// DecodeFile opens and decodes a local audio file. The returned closer
// owns the underlying file and must be closed together with the streamer.
func DecodeFile(path string) (beep.StreamSeekCloser, beep.Format, io.Closer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != extWAV && ext != extFLAC && ext != extMP3 {
		return nil, beep.Format{}, nil, mediaerr.Fatal(path, "unsupported",
			fmt.Errorf("unsupported format: %s", ext))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, nil, mediaerr.Fatal(path, "open", err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case extWAV:
		streamer, format, err = wav.Decode(f)
	case extFLAC:
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(f); err != nil {
			f.Close()
			return nil, beep.Format{}, nil, mediaerr.Fatal(path, "decode", err)
		}
		streamer, format, err = flac.Decode(f)
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, nil, mediaerr.Fatal(path, "decode", err)
	}

	return streamer, format, f, nil
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
// Some FLAC files have ID3v2 tags prepended, which the FLAC decoder
// doesn't handle.
func skipID3v2(r io.ReadSeeker) error {
	// Read the first 10 bytes to check for ID3v2 header
	header := make([]byte, 10)
	n, err := r.Read(header)
	if err != nil {
		return err
	}
	if n < 10 {
		// File too small, seek back to start
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Check for "ID3" magic
	if string(header[0:3]) != "ID3" {
		// No ID3v2 tag, seek back to start
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is stored as a syncsafe integer in bytes 6-9
	// Each byte only uses 7 bits (bit 7 is always 0)
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])

	// Total skip = 10 byte header + size
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
