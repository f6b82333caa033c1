// Package terminal implements a text mode host that renders the display with
// half block characters and reads the keypad from raw terminal input.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/retroenv/chip8vm/internal/audio"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// DefaultHoldFrames is the number of frames a key stays pressed after its
// last input byte. Terminals only report key repeats, not key releases.
const DefaultHoldFrames = 6

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B

	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// Options of the terminal host.
type Options struct {
	Layout     keypad.Layout // defaults to keypad.DefaultLayout
	HoldFrames int           // defaults to DefaultHoldFrames
	Sound      audio.Sink    // optional buzzer
}

// Host connects a machine to a terminal.
type Host struct {
	logger *log.Logger
	in     *os.File
	out    io.Writer
	opts   Options

	oldState *term.State

	mutex sync.Mutex
	hold  [keypad.Count]int // remaining frames per key
	quit  bool
}

// New returns a terminal host reading from in and writing to out.
func New(logger *log.Logger, in *os.File, out io.Writer, opts Options) *Host {
	if opts.Layout == nil {
		opts.Layout = keypad.DefaultLayout
	}
	if opts.HoldFrames <= 0 {
		opts.HoldFrames = DefaultHoldFrames
	}
	return &Host{
		logger: logger,
		in:     in,
		out:    out,
		opts:   opts,
	}
}

// Run switches the terminal to raw mode and runs the machine until the user
// quits with Escape or Ctrl+C.
func (h *Host) Run(ctx context.Context, m *emulator.Machine) error {
	fd := int(h.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting terminal raw mode: %w", err)
	}
	h.oldState = oldState
	defer h.restore(fd)

	if _, err := io.WriteString(h.out, clearScreen+hideCursor); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}

	inputCtx, cancel := context.WithCancel(ctx)
	go h.readInput(inputCtx, h.in)
	defer h.stopInput(cancel)

	if err := m.Run(ctx, h); err != nil {
		return fmt.Errorf("running machine: %w", err)
	}
	return nil
}

func (h *Host) restore(fd int) {
	if h.opts.Sound != nil {
		h.opts.Sound.SetOn(false)
	}
	_, _ = io.WriteString(h.out, showCursor+"\r\n")
	if err := term.Restore(fd, h.oldState); err != nil {
		h.logger.Error("Restoring terminal state failed", log.Err(err))
	}
}

// stopInput ends the input reader. Files without deadline support keep the
// reader blocked until the next input byte arrives.
func (h *Host) stopInput(cancel context.CancelFunc) {
	cancel()
	if err := h.in.SetReadDeadline(time.Now()); err != nil {
		h.logger.Debug("Interrupting terminal input failed", log.Err(err))
	}
}

// readInput feeds input bytes to HandleInput until the context is cancelled
// or reading fails.
func (h *Host) readInput(ctx context.Context, r io.Reader) {
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := r.Read(buf)
		if ctx.Err() != nil {
			return
		}
		for _, b := range buf[:n] {
			h.HandleInput(b)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrDeadlineExceeded) {
				h.logger.Debug("Reading terminal input failed", log.Err(err))
			}
			return
		}
	}
}

// HandleInput processes a single input byte.
func (h *Host) HandleInput(b byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	switch b {
	case keyCtrlC, keyEscape:
		h.quit = true
		return
	}

	if code, ok := h.opts.Layout.Lookup(rune(b)); ok {
		h.hold[code] = h.opts.HoldFrames
	}
}

// Keys returns the held keys and ages the hold counters by one frame.
func (h *Host) Keys() keypad.Keys {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var keys keypad.Keys
	for code, frames := range h.hold {
		if frames == 0 {
			continue
		}
		keys = keys.Press(uint8(code))
		h.hold[code] = frames - 1
	}
	return keys
}

// Present renders the display after frames that changed it.
func (h *Host) Present(m *emulator.Machine, frame emulator.Frame) error {
	h.mutex.Lock()
	quit := h.quit
	h.mutex.Unlock()
	if quit {
		return emulator.ErrQuit
	}

	if h.opts.Sound != nil {
		h.opts.Sound.SetOn(m.SoundOn())
	}

	if !frame.Draw {
		return nil
	}
	if _, err := io.WriteString(h.out, cursorHome+Render(m.Display())); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// Render returns the display as lines of half block characters, two display
// rows per line, separated by raw mode line breaks.
func Render(disp *display.Display) string {
	return strings.Join(RenderLines(disp), "\r\n")
}

// RenderLines returns the display as lines of half block characters.
func RenderLines(disp *display.Display) []string {
	lines := make([]string, 0, display.Height/2)
	var sb strings.Builder
	for y := 0; y < display.Height; y += 2 {
		sb.Reset()
		for x := range display.Width {
			top := disp.Pixel(x, y) != 0
			bottom := disp.Pixel(x, y+1) != 0
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}
