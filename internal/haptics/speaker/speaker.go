// Package speaker plays haptic impulses as short tones on the audio device.
// It links the platform audio stack, so only desktop binaries import it.
package speaker

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"

	"apex-arena/internal/haptics"
)

const sampleRate = beep.SampleRate(44100)

// thump describes the sound standing in for one impulse level.
type thump struct {
	freq     float64
	duration time.Duration
	gain     float64
}

var thumps = map[haptics.Level]thump{
	haptics.Light:  {freq: 220, duration: 25 * time.Millisecond, gain: 0.25},
	haptics.Medium: {freq: 110, duration: 70 * time.Millisecond, gain: 0.45},
	haptics.Heavy:  {freq: 55, duration: 180 * time.Millisecond, gain: 0.7},
}

// Speaker renders impulses as short low-frequency thumps on the audio
// device, for desktops with no vibration motor.
type Speaker struct {
	mu          sync.Mutex
	volume      float64
	initialized bool
	mixer       *beep.Mixer
}

// New creates an audio backend. volume scales every thump (0..1).
func New(volume float64) *Speaker {
	return &Speaker{volume: volume, mixer: &beep.Mixer{}}
}

// Init opens the audio device. Impulse calls it lazily too.
func (s *Speaker) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return errors.Wrap(err, "init audio device")
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Impulse implements haptics.Backend.
func (s *Speaker) Impulse(level haptics.Level) error {
	if err := s.Init(); err != nil {
		return err
	}
	th, ok := thumps[level]
	if !ok {
		return errors.Errorf("unknown impulse level %d", level)
	}

	speaker.Lock()
	s.mixer.Add(newThump(th, s.volume))
	speaker.Unlock()
	return nil
}

// Close silences pending thumps.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// thumpStreamer is a sine burst with a linear decay envelope.
type thumpStreamer struct {
	freq  float64
	gain  float64
	pos   int
	total int
}

func newThump(th thump, volume float64) beep.Streamer {
	return &thumpStreamer{
		freq:  th.freq,
		gain:  th.gain * volume,
		total: sampleRate.N(th.duration),
	}
}

// Stream implements beep.Streamer.
func (t *thumpStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}
		env := 1 - float64(t.pos)/float64(t.total)
		v := math.Sin(2*math.Pi*t.freq*float64(t.pos)/float64(sampleRate)) * t.gain * env
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (t *thumpStreamer) Err() error {
	return nil
}
