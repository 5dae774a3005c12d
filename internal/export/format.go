package export

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"
)

// DefaultName is the file name used when the caller gives none.
const DefaultName = "waveform.32fl"

// Format is an on-disk sample encoding.
type Format int

const (
	// Raw is headerless little-endian float32, one value per sample.
	Raw Format = iota
	// WAV is 16-bit mono PCM, normalized to the waveform peak.
	WAV
)

func (f Format) String() string {
	switch f {
	case Raw:
		return "raw"
	case WAV:
		return "wav"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	if f == WAV {
		return ".wav"
	}
	return ".32fl"
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == WAV {
		return "audio/wav"
	}
	return "application/octet-stream"
}

// ParseFormat parses "raw", "32fl" or "wav".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "raw", "32fl", "":
		return Raw, nil
	case "wav":
		return WAV, nil
	}
	return Raw, fmt.Errorf("unknown export format %q", s)
}

// FormatOf guesses the format from a file name. Anything that is not a
// .wav file is written raw.
func FormatOf(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".wav") {
		return WAV
	}
	return Raw
}

// EncodeRaw writes samples as little-endian IEEE-754 float32 with no header.
func EncodeRaw(w io.Writer, samples []float32) error {
	buf := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(s))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// decodeRaw parses a raw float32 stream. A trailing partial sample is an
// error.
func decodeRaw(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("raw stream length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

const wavBitDepth = 16

// EncodeWAV writes samples as 16-bit mono PCM. Samples are scaled so the
// largest magnitude reaches full scale; a silent waveform stays silent.
func EncodeWAV(ws io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(ws, sampleRate, wavBitDepth, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           PCM16(samples),
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}

// PCM16 converts samples to peak-normalized 16-bit integers.
func PCM16(samples []float32) []int {
	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s)
	}
	out := make([]int, len(samples))
	peak := 0.0
	if len(x) > 0 {
		peak = floats.Norm(x, math.Inf(1))
	}
	if peak == 0 {
		return out
	}
	floats.Scale(math.MaxInt16/peak, x)
	for i, v := range x {
		out[i] = int(math.Round(v))
	}
	return out
}
