package audio

import "math"

// Normalize scales samples into [-1, 1] by the carrier amplitude. Values
// pushed past full scale by noise are clipped. A non-positive amplitude
// yields silence.
func Normalize(samples []float32, amplitude float64) []float32 {
	out := make([]float32, len(samples))
	if amplitude <= 0 {
		return out
	}
	for i, s := range samples {
		v := float64(s) / amplitude
		out[i] = float32(math.Max(-1, math.Min(1, v)))
	}
	return out
}

// Resample converts samples from rate from to rate to by linear
// interpolation.
func Resample(samples []float32, from, to float64) []float32 {
	if len(samples) == 0 || from <= 0 || to <= 0 || from == to {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}
	n := int(math.Round(float64(len(samples)) * to / from))
	out := make([]float32, n)
	last := len(samples) - 1
	for i := range out {
		pos := float64(i) * from / to
		j := int(pos)
		if j >= last {
			out[i] = samples[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}

// Chunks splits samples into size-long buffers, zero-padding the last.
func Chunks(samples []float32, size int) [][]float32 {
	var out [][]float32
	for i := 0; i < len(samples); i += size {
		end := i + size
		if end > len(samples) {
			// Pad with zeros
			chunk := make([]float32, size)
			copy(chunk, samples[i:])
			out = append(out, chunk)
			break
		}
		out = append(out, samples[i:end])
	}
	return out
}
