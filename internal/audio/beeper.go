// Package audio implements the buzzer output that sounds while the sound
// timer is running.
package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays the buzzer tone on the system audio device.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	tone   *Tone

	mutex  sync.Mutex
	closed bool
}

// NewBeeper opens the audio device and starts a silent tone stream.
func NewBeeper() (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	tone := NewTone()
	player := ctx.NewPlayer(tone)
	player.Play()

	return &Beeper{
		ctx:    ctx,
		player: player,
		tone:   tone,
	}, nil
}

// SetOn switches the buzzer on or off.
func (b *Beeper) SetOn(on bool) {
	b.tone.SetOn(on)
}

// Close stops the tone stream.
func (b *Beeper) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.tone.SetOn(false)
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}
