// Package window implements a desktop host based on ebiten.
package window

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/retroenv/chip8vm/internal/audio"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/screenshot"
	"github.com/retroenv/retrogolib/log"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

const statusFrames = 2 * emulator.FrameRate

var statusColor = color.RGBA{R: 0xFF, G: 0xC0, B: 0x40, A: 0xFF}

// Options of the window host.
type Options struct {
	Title         string
	Scale         int           // window pixels per display pixel
	Layout        keypad.Layout // defaults to keypad.DefaultLayout
	Sound         audio.Sink    // optional buzzer
	ScreenshotDir string        // directory for F12 screenshots
}

// Game implements the ebiten game interface for a machine.
type Game struct {
	ctx     context.Context
	logger  *log.Logger
	machine *emulator.Machine
	opts    Options
	keys    map[ebiten.Key]uint8

	image  *ebiten.Image
	pixels []byte
	face   *text.GoXFace

	paused      bool
	status      string
	statusTicks int
	shots       int

	clipboardOnce sync.Once
	clipboardOK   bool
}

// New returns a game that runs the machine.
func New(ctx context.Context, logger *log.Logger, m *emulator.Machine, opts Options) *Game {
	if opts.Layout == nil {
		opts.Layout = keypad.DefaultLayout
	}
	if opts.Scale <= 0 {
		opts.Scale = screenshot.DefaultScale
	}
	if opts.Title == "" {
		opts.Title = "chip8vm"
	}

	return &Game{
		ctx:     ctx,
		logger:  logger,
		machine: m,
		opts:    opts,
		keys:    KeyMap(opts.Layout),
		pixels:  make([]byte, display.Width*display.Height*4),
		face:    text.NewGoXFace(basicfont.Face7x13),
	}
}

// Run opens the window and runs the machine until the window is closed or
// the context is cancelled.
func Run(ctx context.Context, logger *log.Logger, m *emulator.Machine, opts Options) error {
	g := New(ctx, logger, m, opts)

	ebiten.SetWindowSize(display.Width*g.opts.Scale, display.Height*g.opts.Scale)
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(emulator.FrameRate)

	defer g.setSound(false)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Halted()
}

// Update runs one frame of the machine and handles the host hotkeys.
func (g *Game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.statusTicks > 0 {
		g.statusTicks--
	}

	g.handleHotkeys()

	if !g.paused {
		if _, err := g.machine.RunFrame(g.pressedKeys()); err != nil {
			g.pause("halted: " + err.Error())
		}
	}

	g.setSound(!g.paused && g.machine.SoundOn())
	return nil
}

func (g *Game) handleHotkeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if g.paused && g.machine.Halted() == nil {
			g.paused = false
			g.showStatus("resumed")
		} else {
			g.pause("paused")
		}

	case inpututil.IsKeyJustPressed(ebiten.KeyN) && g.paused && g.machine.Halted() == nil:
		if _, err := g.machine.RunFrame(g.pressedKeys()); err != nil {
			g.pause("halted: " + err.Error())
		}

	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		if err := g.machine.Reset(); err != nil {
			g.logger.Error("Resetting machine failed", log.Err(err))
			return
		}
		g.paused = false
		g.showStatus("reset")

	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		g.copyToClipboard()

	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		g.saveScreenshot()
	}
}

func (g *Game) pressedKeys() keypad.Keys {
	var keys keypad.Keys
	for key, code := range g.keys {
		if ebiten.IsKeyPressed(key) {
			keys = keys.Press(code)
		}
	}
	return keys
}

func (g *Game) pause(status string) {
	g.paused = true
	g.showStatus(status)
	if err := g.machine.Halted(); err != nil {
		g.logger.Error("Execution halted", log.Err(err))
	}
}

func (g *Game) showStatus(status string) {
	g.status = status
	g.statusTicks = statusFrames
}

func (g *Game) setSound(on bool) {
	if g.opts.Sound != nil {
		g.opts.Sound.SetOn(on)
	}
}

func (g *Game) copyToClipboard() {
	g.clipboardOnce.Do(func() {
		g.clipboardOK = clipboard.Init() == nil
	})
	if !g.clipboardOK {
		g.showStatus("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(g.machine.Display().String()))
	g.showStatus("display copied")
}

func (g *Game) saveScreenshot() {
	g.shots++
	name := fmt.Sprintf("chip8-%s-%d.png", time.Now().Format("20060102-150405"), g.shots)
	path := filepath.Join(g.opts.ScreenshotDir, name)

	if err := screenshot.SavePNG(path, g.machine.Display(), g.opts.Scale); err != nil {
		g.logger.Error("Saving screenshot failed", log.Err(err))
		g.showStatus("screenshot failed")
		return
	}
	g.logger.Info("Screenshot saved", log.String("file", path))
	g.showStatus("saved " + name)
}

// Draw renders the display and the status line.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.image == nil {
		g.image = ebiten.NewImage(display.Width, display.Height)
	}

	FillPixels(g.pixels, g.machine.Display())
	g.image.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.opts.Scale), float64(g.opts.Scale))
	screen.DrawImage(g.image, op)

	if g.paused || g.statusTicks > 0 {
		textOp := &text.DrawOptions{}
		textOp.GeoM.Translate(4, 4)
		textOp.ColorScale.ScaleWithColor(statusColor)
		text.Draw(screen, g.status, g.face, textOp)
	}
}

// Layout returns the fixed logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	return display.Width * g.opts.Scale, display.Height * g.opts.Scale
}

// FillPixels converts the display into RGBA pixels.
func FillPixels(pixels []byte, disp *display.Display) {
	for i, p := range disp.Pixels() {
		c := screenshot.Off
		if p != 0 {
			c = screenshot.On
		}
		pixels[i*4] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = c.A
	}
}

// KeyMap converts a keyboard layout into ebiten keys. Characters without a
// matching ebiten key are ignored.
func KeyMap(layout keypad.Layout) map[ebiten.Key]uint8 {
	keys := make(map[ebiten.Key]uint8, len(layout))
	for r, code := range layout {
		if key, ok := keyForRune(r); ok {
			keys[key] = code
		}
	}
	return keys
}

func keyForRune(r rune) (ebiten.Key, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return ebiten.KeyA + ebiten.Key(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return ebiten.KeyA + ebiten.Key(r-'A'), true
	case r >= '0' && r <= '9':
		return ebiten.KeyDigit0 + ebiten.Key(r-'0'), true
	default:
		return 0, false
	}
}
