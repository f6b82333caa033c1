package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/keypad"
)

const (
	viewDisplay   = "display"
	viewRegisters = "registers"
	viewStack     = "stack"
	viewCode      = "code"
	viewStatus    = "status"

	displayWidth  = 64
	displayHeight = 16
	sideWidth     = 30
	codeLines     = 16

	hexDigits = "0123456789abcdef"
	helpText  = "F5 run/pause  F10 step  F11 frame  F3 tick  F2 reset  0-9/a-f toggle key  q quit"
)

// debugger holds the state of the user interface. All fields are only
// accessed from the gocui main loop.
type debugger struct {
	machine *emulator.Machine
	title   string
	keys    keypad.Keys
	message string

	running bool
	stop    chan struct{}
}

func newDebugger(m *emulator.Machine, title string) *debugger {
	return &debugger{
		machine: m,
		title:   title,
		message: "paused",
	}
}

func (d *debugger) layout(g *gocui.Gui) error {
	views := []struct {
		name           string
		title          string
		x0, y0, x1, y1 int
		write          func(v *gocui.View)
	}{
		{viewDisplay, d.title, 0, 0, displayWidth + 1, displayHeight + 1, d.writeDisplay},
		{viewRegisters, "Registers", displayWidth + 2, 0, displayWidth + 2 + sideWidth, 11, d.writeRegisters},
		{viewStack, "Stack", displayWidth + 2, 12, displayWidth + 2 + sideWidth, displayHeight + 1, d.writeStack},
		{viewCode, "Code", 0, displayHeight + 2, displayWidth + 1, displayHeight + 3 + codeLines, d.writeCode},
		{viewStatus, "Status", displayWidth + 2, displayHeight + 2, displayWidth + 2 + sideWidth, displayHeight + 3 + codeLines, d.writeStatus},
	}

	for _, view := range views {
		v, err := g.SetView(view.name, view.x0, view.y0, view.x1, view.y1)
		if err != nil && !errors.Is(err, gocui.ErrUnknownView) {
			return fmt.Errorf("creating view %s: %w", view.name, err)
		}
		v.Title = view.title
		v.Wrap = view.name == viewStatus
		v.Clear()
		view.write(v)
	}
	return nil
}

func (d *debugger) writeDisplay(v *gocui.View) {
	writeDisplay(v, d.machine.Display())
}

func (d *debugger) writeRegisters(v *gocui.View) {
	writeRegisters(v, d.machine.CPU())
}

func (d *debugger) writeStack(v *gocui.View) {
	writeStack(v, d.machine.CPU())
}

func (d *debugger) writeCode(v *gocui.View) {
	writeCode(v, d.machine.Memory(), d.machine.CPU().PC, codeLines)
}

func (d *debugger) writeStatus(v *gocui.View) {
	writeMachineStatus(v, d.machine, d.running)
	fmt.Fprintf(v, "Keys:   %s\n", d.keys)
	fmt.Fprintf(v, "\n%s\n\n%s\n", d.message, helpText)
}

type keyBinding struct {
	key     any
	handler func(g *gocui.Gui, v *gocui.View) error
}

func (d *debugger) bindKeys(g *gocui.Gui) error {
	bindings := []keyBinding{
		{gocui.KeyCtrlC, quit},
		{'q', quit},
		{gocui.KeyF5, d.toggleRun},
		{gocui.KeyF10, d.step},
		{gocui.KeyF11, d.frame},
		{gocui.KeyF3, d.tick},
		{gocui.KeyF2, d.reset},
	}
	for code := range uint8(keypad.Count) {
		r := rune(hexDigits[code])
		bindings = append(bindings, keyBinding{r, d.toggleKey(code)})
	}

	for _, binding := range bindings {
		if err := g.SetKeybinding("", binding.key, gocui.ModNone, binding.handler); err != nil {
			return fmt.Errorf("setting key binding: %w", err)
		}
	}
	return nil
}

func quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func (d *debugger) step(_ *gocui.Gui, _ *gocui.View) error {
	d.pause()
	res, err := d.machine.Step(d.keys)
	if err != nil {
		d.message = err.Error()
		return nil
	}
	d.message = "executed " + res.Instruction.String()
	return nil
}

func (d *debugger) frame(_ *gocui.Gui, _ *gocui.View) error {
	d.pause()
	d.runFrame()
	return nil
}

func (d *debugger) runFrame() {
	frame, err := d.machine.RunFrame(d.keys)
	if err != nil {
		d.message = err.Error()
		d.pause()
		return
	}
	d.message = fmt.Sprintf("frame executed %d instructions", frame.Steps)
}

func (d *debugger) tick(_ *gocui.Gui, _ *gocui.View) error {
	d.machine.Tick()
	d.message = "timers ticked"
	return nil
}

func (d *debugger) reset(_ *gocui.Gui, _ *gocui.View) error {
	d.pause()
	if err := d.machine.Reset(); err != nil {
		d.message = err.Error()
		return nil
	}
	d.message = "machine reset"
	return nil
}

func (d *debugger) toggleKey(code uint8) func(g *gocui.Gui, v *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if d.keys.Pressed(code) {
			d.keys = d.keys.Release(code)
		} else {
			d.keys = d.keys.Press(code)
		}
		return nil
	}
}

func (d *debugger) toggleRun(g *gocui.Gui, _ *gocui.View) error {
	if d.running {
		d.pause()
		d.message = "paused"
		return nil
	}
	if d.machine.Halted() != nil {
		d.message = "machine halted, reset with F2"
		return nil
	}

	d.running = true
	d.message = "running"
	d.stop = make(chan struct{})
	go d.runLoop(g, d.stop)
	return nil
}

// runLoop schedules one frame per 60 Hz period on the gocui main loop.
func (d *debugger) runLoop(g *gocui.Gui, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / emulator.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.Update(func(_ *gocui.Gui) error {
				if d.running {
					d.runFrame()
				}
				return nil
			})
		}
	}
}

func (d *debugger) pause() {
	if !d.running {
		return
	}
	d.running = false
	close(d.stop)
}

func (d *debugger) stopRunning() {
	d.pause()
}
