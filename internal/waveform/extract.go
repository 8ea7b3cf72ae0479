package waveform

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep/v2"

	"github.com/tlacroix/preroll/internal/mediaerr"
	"github.com/tlacroix/preroll/internal/player"
)

// Decoder opens a locator and returns its raw sample stream.
type Decoder interface {
	Decode(locator string) (beep.StreamSeekCloser, beep.Format, io.Closer, error)
}

// FileDecoder decodes local audio files through the player codec table.
type FileDecoder struct{}

// Decode implements Decoder.
func (FileDecoder) Decode(locator string) (beep.StreamSeekCloser, beep.Format, io.Closer, error) {
	return player.DecodeFile(locator)
}

// minDenominator guards normalization against zero-signal input.
const minDenominator = 0.001

// streamBufFrames is the per-read frame count while scanning samples.
const streamBufFrames = 512

// Extractor computes normalized peak sequences and memoizes them in the
// cache. A failed extraction caches nothing, so a later request for the
// same locator re-attempts it.
type Extractor struct {
	dec        Decoder
	cache      *Cache
	maxSamples int
}

// NewExtractor creates an extractor over dec, memoizing into cache, with
// at most maxSamples peak blocks per clip.
func NewExtractor(dec Decoder, cache *Cache, maxSamples int) *Extractor {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	return &Extractor{dec: dec, cache: cache, maxSamples: maxSamples}
}

// Peaks returns the normalized peak sequence for locator, extracting it on
// first request. width only shapes the first extraction (block count is
// min(2*width, maxSamples)); later requests at any width return the cached
// sequence unchanged — rendering code sub-samples it (see Resample and
// Window).
func (e *Extractor) Peaks(locator string, width int) ([]float64, error) {
	if p, ok := e.cache.Get(locator); ok {
		return p, nil
	}
	peaks, err := e.extract(locator, width)
	if err != nil {
		return nil, err
	}
	e.cache.Put(locator, peaks)
	return peaks, nil
}

func (e *Extractor) extract(locator string, width int) ([]float64, error) {
	blocks := e.maxSamples
	if width > 0 && 2*width < blocks {
		blocks = 2 * width
	}

	streamer, _, closer, err := e.dec.Decode(locator)
	if err != nil {
		return nil, extractionError(locator, err)
	}
	defer func() {
		streamer.Close()
		if closer != nil {
			closer.Close()
		}
	}()

	total := streamer.Len()
	if total <= 0 {
		return nil, &mediaerr.ExtractionError{
			Locator: locator,
			Stage:   "decode",
			Err:     fmt.Errorf("stream length unknown"),
		}
	}
	blockSize := (total + blocks - 1) / blocks
	blockSize = max(blockSize, 1)

	peaks := make([]float64, 0, blocks)
	buf := make([][2]float64, streamBufFrames)
	var cur float64
	inBlock := 0

	for {
		n, ok := streamer.Stream(buf)
		for i := range n {
			amp := math.Max(math.Abs(buf[i][0]), math.Abs(buf[i][1]))
			cur = math.Max(cur, amp)
			inBlock++
			if inBlock == blockSize {
				peaks = append(peaks, cur)
				cur = 0
				inBlock = 0
			}
		}
		if !ok {
			break
		}
	}
	if inBlock > 0 {
		peaks = append(peaks, cur)
	}
	if err := streamer.Err(); err != nil {
		return nil, &mediaerr.ExtractionError{Locator: locator, Stage: "decode", Err: err}
	}
	if len(peaks) == 0 {
		return nil, &mediaerr.ExtractionError{
			Locator: locator,
			Stage:   "decode",
			Err:     fmt.Errorf("no samples decoded"),
		}
	}

	normalize(peaks)
	return peaks, nil
}

// normalize scales block peaks by the global maximum so every value lands
// in [0,1]; the denominator floor keeps a silent clip from dividing by
// zero.
func normalize(peaks []float64) {
	var global float64
	for _, p := range peaks {
		global = math.Max(global, p)
	}
	denom := math.Max(global, minDenominator)
	for i := range peaks {
		peaks[i] /= denom
	}
}

func extractionError(locator string, err error) error {
	stage := "decode"
	var le *mediaerr.LoadError
	if errors.As(err, &le) && le.Code == "open" {
		stage = "fetch"
	}
	return &mediaerr.ExtractionError{Locator: locator, Stage: stage, Err: err}
}
