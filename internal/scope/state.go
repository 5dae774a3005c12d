package scope

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/modem"
	"github.com/jeongseonghan/modviz/internal/spectrum"
)

// AutoScrollStep is how far the view advances per frame while running.
const AutoScrollStep = 1.0 / 60.0

// State is the visualizer's mutable session: settings, committed message,
// scroll position and the pointer. Each Render works on a snapshot taken
// under the lock, so commands may arrive from any goroutine.
type State struct {
	mu sync.Mutex

	cur      Settings
	defaults Settings
	msg      modem.Message
	offset   float64 // seconds
	paused   bool
	hoverX   int
	seq      uint64

	noise *modem.Noise
	est   spectrum.Estimator
	last  *spectrum.Spectrum

	log *zap.Logger
}

// New creates a session starting from settings, which also become the
// target of the reset command. seed fixes the noise sequence.
func New(settings Settings, seed int64, logger *zap.Logger) (*State, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		cur:      settings,
		defaults: settings,
		hoverX:   -1,
		noise:    modem.NewNoise(seed),
		log:      logger,
	}, nil
}

// Settings returns the current settings.
func (s *State) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Update replaces the settings wholesale.
func (s *State) Update(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = settings
	s.mu.Unlock()
	s.log.Debug("settings updated", zap.String("modulation", settings.Modulation.Label()), zap.Stringer("view", settings.View))
	return nil
}

// Commit makes text the active message and rewinds the view.
func (s *State) Commit(text string) modem.Message {
	msg := modem.NewMessage([]byte(text))
	s.mu.Lock()
	s.msg = msg
	s.offset = 0
	s.mu.Unlock()
	s.log.Info("message committed", zap.Int("bytes", msg.Len()))
	return msg
}

// Snapshot is a consistent copy of the session taken under one lock.
type Snapshot struct {
	Settings   Settings
	Message    modem.Message
	TimeOffset float64
	Paused     bool
}

// Snapshot returns the settings, message and scroll state together, so a
// concurrent Commit or Update cannot pair one with the other's old value.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Settings:   s.cur,
		Message:    s.msg,
		TimeOffset: s.offset,
		Paused:     s.paused,
	}
}

// Message returns the active message.
func (s *State) Message() modem.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}

// Apply runs a named command.
func (s *State) Apply(name string) error {
	fn, ok := commands[Command(name)]
	if !ok {
		return unknownCommand(name)
	}
	s.mu.Lock()
	fn(s)
	status := s.cur.Modulation.Status()
	s.mu.Unlock()
	s.log.Debug("command applied", zap.String("command", name), zap.String("status", status[0]))
	return nil
}

// Tick advances the scroll position by one frame unless paused.
func (s *State) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.offset += AutoScrollStep
	}
}

// Offset returns the scroll position in seconds.
func (s *State) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Paused reports whether auto-scroll is stopped.
func (s *State) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetHover records the pointer column. A negative x clears it.
func (s *State) SetHover(x int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 {
		x = -1
	}
	s.hoverX = x
}

// Render draws the current view.
func (s *State) Render() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	f := &Frame{
		Seq:        s.seq,
		View:       s.cur.View,
		Status:     s.cur.Modulation.Status(),
		Message:    s.msg.String(),
		TimeOffset: s.offset,
		Paused:     s.paused,
		Screen:     s.cur.Screen,
	}
	switch s.cur.View {
	case TimeDomain:
		f.Time = s.renderTime()
	case Constellation:
		f.Constellation = s.renderConstellation()
	case PowerSpectrum:
		f.Spectrum = s.renderSpectrum()
	}
	return f
}
