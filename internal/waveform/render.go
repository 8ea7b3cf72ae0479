package waveform

import "time"

// Resample fits a cached peak sequence to a display width, taking the
// maximum of each bucket so short transients stay visible.
func Resample(peaks []float64, width int) []float64 {
	if width <= 0 || len(peaks) == 0 {
		return nil
	}
	if len(peaks) <= width {
		return append([]float64(nil), peaks...)
	}

	out := make([]float64, width)
	for i := range width {
		lo := i * len(peaks) / width
		hi := (i + 1) * len(peaks) / width
		hi = max(hi, lo+1)
		for j := lo; j < hi && j < len(peaks); j++ {
			if peaks[j] > out[i] {
				out[i] = peaks[j]
			}
		}
	}
	return out
}

// Window returns the portion of a peak sequence covering the time range
// [start, end) of a clip lasting total. Out-of-range bounds are clamped;
// a non-positive total returns the full sequence.
func Window(peaks []float64, start, end, total time.Duration) []float64 {
	if len(peaks) == 0 {
		return nil
	}
	if total <= 0 || end <= start {
		return append([]float64(nil), peaks...)
	}

	start = max(start, 0)
	end = min(end, total)

	lo := int(int64(len(peaks)) * int64(start) / int64(total))
	hi := int((int64(len(peaks))*int64(end) + int64(total) - 1) / int64(total))
	lo = min(lo, len(peaks)-1)
	hi = min(max(hi, lo+1), len(peaks))

	return append([]float64(nil), peaks[lo:hi]...)
}
