// Package script drives headless runs with Lua scripts. A script can define
// an on_frame(n) function that is called after every emulated frame and use
// the exported functions to press keys and inspect the machine.
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

const frameCallback = "on_frame"

// ErrNoMachine is returned when running a script without a machine.
var ErrNoMachine = errors.New("script has no machine")

// Script is a Lua script bound to a single machine.
type Script struct {
	logger  *log.Logger
	machine *emulator.Machine
	state   *lua.LState

	keys    keypad.Keys
	stopped bool
	onFrame *lua.LFunction
}

// New creates a script environment for the machine.
func New(logger *log.Logger, machine *emulator.Machine) *Script {
	s := &Script{
		logger:  logger,
		machine: machine,
		state:   lua.NewState(),
	}
	s.register()
	return s
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.state.Close()
}

// LoadFile executes the script file and looks up the frame callback.
func (s *Script) LoadFile(path string) error {
	if err := s.state.DoFile(path); err != nil {
		return fmt.Errorf("running script %s: %w", path, err)
	}
	s.lookupCallback()
	return nil
}

// LoadString executes the script source and looks up the frame callback.
func (s *Script) LoadString(source string) error {
	if err := s.state.DoString(source); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	s.lookupCallback()
	return nil
}

// Keys returns the keys currently pressed by the script.
func (s *Script) Keys() keypad.Keys {
	return s.keys
}

// Stopped reports whether the script called stop().
func (s *Script) Stopped() bool {
	return s.stopped
}

// Frame calls the frame callback with the number of completed frames.
func (s *Script) Frame(ctx context.Context, frame uint64) error {
	if s.machine == nil {
		return ErrNoMachine
	}
	if s.onFrame == nil {
		return nil
	}

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	err := s.state.CallByParam(lua.P{
		Fn:      s.onFrame,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(frame))
	if err != nil {
		return fmt.Errorf("calling %s for frame %d: %w", frameCallback, frame, err)
	}
	return nil
}

func (s *Script) lookupCallback() {
	fn, ok := s.state.GetGlobal(frameCallback).(*lua.LFunction)
	if !ok {
		s.logger.Debug("Script has no frame callback", log.String("name", frameCallback))
		return
	}
	s.onFrame = fn
}

func (s *Script) register() {
	functions := map[string]lua.LGFunction{
		"press":   s.press,
		"release": s.release,
		"reg":     s.reg,
		"pc":      s.pc,
		"i":       s.index,
		"pixel":   s.pixel,
		"delay":   s.delay,
		"sound":   s.sound,
		"stop":    s.stop,
	}
	for name, fn := range functions {
		s.state.SetGlobal(name, s.state.NewFunction(fn))
	}
}

func (s *Script) checkKey(L *lua.LState) uint8 {
	code := L.CheckInt(1)
	if code < 0 || code >= keypad.Count {
		L.ArgError(1, "key code out of range")
	}
	return uint8(code)
}

func (s *Script) registers() *cpu.State {
	return s.machine.CPU()
}

func (s *Script) press(L *lua.LState) int {
	s.keys = s.keys.Press(s.checkKey(L))
	return 0
}

func (s *Script) release(L *lua.LState) int {
	s.keys = s.keys.Release(s.checkKey(L))
	return 0
}

func (s *Script) reg(L *lua.LState) int {
	x := L.CheckInt(1)
	if x < 0 || x >= cpu.RegisterCount {
		L.ArgError(1, "register index out of range")
	}
	L.Push(lua.LNumber(s.registers().V[x]))
	return 1
}

func (s *Script) pc(L *lua.LState) int {
	L.Push(lua.LNumber(s.registers().PC))
	return 1
}

func (s *Script) index(L *lua.LState) int {
	L.Push(lua.LNumber(s.registers().I))
	return 1
}

func (s *Script) pixel(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	L.Push(lua.LNumber(s.machine.Display().Pixel(x, y)))
	return 1
}

func (s *Script) delay(L *lua.LState) int {
	L.Push(lua.LNumber(s.registers().Delay))
	return 1
}

func (s *Script) sound(L *lua.LState) int {
	L.Push(lua.LNumber(s.registers().Sound))
	return 1
}

func (s *Script) stop(_ *lua.LState) int {
	s.stopped = true
	return 0
}
