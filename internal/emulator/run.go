package emulator

import (
	"context"
	"errors"
	"time"

	"github.com/retroenv/chip8vm/internal/keypad"
)

// ErrQuit is returned by a host to end Run without an error.
var ErrQuit = errors.New("quit")

// Host connects a machine to input and output devices.
type Host interface {
	// Keys returns the currently pressed keys.
	Keys() keypad.Keys
	// Present is called after every frame with the combined step flags.
	Present(m *Machine, frame Frame) error
}

// Run executes frames until the context is cancelled, the host returns an
// error or the machine halts. A host returning ErrQuit ends Run with nil.
func (m *Machine) Run(ctx context.Context, host Host) error {
	var tick <-chan time.Time
	if m.cfg.LimitFPS {
		ticker := time.NewTicker(time.Second / FrameRate)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := m.RunFrame(host.Keys())
		if err != nil {
			return err
		}

		if err := host.Present(m, frame); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}
