package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	// PlaybackRate is the stream rate; waveforms are resampled to it.
	PlaybackRate = 44100
	FramesPerBuf = 1024
	NumChannels  = 1
)

// ErrEmpty is returned when there is nothing to play.
var ErrEmpty = errors.New("nothing to play")

// Init initializes PortAudio.
func Init() error {
	return portaudio.Initialize()
}

// Terminate cleans up PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// Player writes waveforms to the default output device.
type Player struct {
	stream *portaudio.Stream
	buf    []float32
	mu     sync.Mutex
}

// NewPlayer returns a player with no open stream.
func NewPlayer() *Player {
	return &Player{buf: make([]float32, FramesPerBuf)}
}

// Open opens the default output stream.
func (p *Player) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(
		0,           // input channels
		NumChannels, // output channels
		float64(PlaybackRate),
		FramesPerBuf,
		p.buf,
	)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	p.stream = stream
	return nil
}

// Play normalizes samples by amplitude, resamples them from sampleRate to
// PlaybackRate and blocks until they are written or ctx is done.
func (p *Player) Play(ctx context.Context, samples []float32, sampleRate, amplitude float64) error {
	if len(samples) == 0 {
		return ErrEmpty
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return fmt.Errorf("output stream not opened")
	}

	out := Resample(Normalize(samples, amplitude), sampleRate, PlaybackRate)
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer p.stream.Stop()

	for _, chunk := range Chunks(out, FramesPerBuf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		copy(p.buf, chunk)
		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

// Close closes the stream.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	err := p.stream.Close()
	p.stream = nil
	return err
}

// PlayDefault initializes PortAudio, plays samples once on the default
// device and shuts everything down again.
func PlayDefault(ctx context.Context, samples []float32, sampleRate, amplitude float64) (err error) {
	if err := Init(); err != nil {
		return fmt.Errorf("init portaudio: %w", err)
	}
	defer func() {
		if terr := Terminate(); err == nil && terr != nil {
			err = terr
		}
	}()

	p := NewPlayer()
	if err := p.Open(); err != nil {
		return err
	}
	defer p.Close()
	return p.Play(ctx, samples, sampleRate, amplitude)
}
