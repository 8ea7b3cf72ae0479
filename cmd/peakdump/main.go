// Dump the normalized waveform of an audio file to the terminal.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"

	"github.com/tlacroix/preroll/internal/config"
	"github.com/tlacroix/preroll/internal/waveform"
)

const barWidth = 80

var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: peakdump <audio file> [<audio file>...]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	wcfg := cfg.GetWaveformConfig()

	cache := waveform.NewCache()
	extractor := waveform.NewExtractor(waveform.FileDecoder{}, cache, wcfg.MaxSamples)

	for _, path := range os.Args[1:] {
		if err := dump(extractor, path); err != nil {
			log.Printf("Failed to extract waveform '%s': %v", path, err)
		}
	}
}

func dump(extractor *waveform.Extractor, path string) error {
	printHeader(path)

	peaks, err := extractor.Peaks(path, barWidth)
	if err != nil {
		return err
	}

	fitted := waveform.Resample(peaks, barWidth)
	var b strings.Builder
	for _, p := range fitted {
		idx := int(p * float64(len(barGlyphs)-1))
		idx = min(idx, len(barGlyphs)-1)
		b.WriteRune(barGlyphs[idx])
	}
	fmt.Printf("%s\n", b.String())
	fmt.Printf("%d peak blocks\n\n", len(peaks))
	return nil
}

func printHeader(path string) {
	line := path
	if info, err := os.Stat(path); err == nil {
		line += fmt.Sprintf(" (%s)", humanize.Bytes(uint64(info.Size())))
	}
	fmt.Println(line)

	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	// Tag metadata is best-effort; raw files without tags are fine.
	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	if m.Title() != "" || m.Artist() != "" {
		fmt.Printf("%s - %s\n", m.Artist(), m.Title())
	}
}
