package game

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate   = beep.SampleRate(44100)
	toneDuration = 40 * time.Millisecond
	fadeDuration = 5 * time.Millisecond
	toneVolume   = 0.2
	baseFreq     = 220.0 // Pitch of a decoded space
)

// Sound plays a short tone for every decoded character. Pitch rises with
// the character code. A nil *Sound is silent.
type Sound struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSound creates an uninitialized sound player.
func NewSound() *Sound {
	return &Sound{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker.
func (s *Sound) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// PlayChar queues the tone for c.
func (s *Sound) PlayChar(c byte) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	tone, err := newTone(c)
	if err != nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(tone)
	speaker.Unlock()
}

// Cleanup silences any queued tones.
func (s *Sound) Cleanup() {
	if s == nil {
		return
	}
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

// CharFrequency maps a character to a pitch, a quarter semitone per code
// above space.
func CharFrequency(c byte) float64 {
	steps := float64(int(c) - ' ')
	if steps < 0 {
		steps = 0
	}
	return baseFreq * math.Pow(2, steps/12/4)
}

// newTone builds the faded sine burst played for c.
func newTone(c byte) (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, CharFrequency(c))
	if err != nil {
		return nil, err
	}
	quiet := &effects.Volume{Streamer: sine, Base: 2, Volume: math.Log2(toneVolume), Silent: false}
	burst := beep.Take(sampleRate.N(toneDuration), quiet)
	return effects.Transition(burst, sampleRate.N(fadeDuration), 0, 1, effects.TransitionLinear), nil
}
