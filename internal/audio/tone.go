package audio

import (
	"encoding/binary"
	"sync/atomic"
)

const (
	// SampleRate of the generated signal in Hz.
	SampleRate = 44100
	// Frequency of the buzzer tone in Hz.
	Frequency = 440

	amplitude     = 0x1000
	bytesPerFrame = 2 // mono signed 16 bit little endian
)

// Tone generates a square wave while it is switched on and silence otherwise.
// It is safe to switch the tone from another goroutine than the one reading it.
type Tone struct {
	on     atomic.Bool
	period int // samples per wave period
	phase  int
}

// NewTone returns a switched off tone generator.
func NewTone() *Tone {
	return &Tone{
		period: SampleRate / Frequency,
	}
}

// SetOn switches the tone on or off.
func (t *Tone) SetOn(on bool) {
	t.on.Store(on)
}

// On reports whether the tone is switched on.
func (t *Tone) On() bool {
	return t.on.Load()
}

// Read fills p with whole samples of the signal.
func (t *Tone) Read(p []byte) (int, error) {
	samples := len(p) / bytesPerFrame
	on := t.on.Load()

	for i := range samples {
		var value int16
		if on {
			value = amplitude
			if t.phase >= t.period/2 {
				value = -amplitude
			}
		}
		t.phase = (t.phase + 1) % t.period
		binary.LittleEndian.PutUint16(p[i*bytesPerFrame:], uint16(value))
	}
	return samples * bytesPerFrame, nil
}

// Sink is switched on while the sound timer is running.
type Sink interface {
	SetOn(on bool)
}
