// Package emulator ties memory, display and CPU state into a machine and
// runs it in frames of a fixed number of instructions followed by a timer tick.
package emulator

import (
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrHalted is returned when stepping a machine that stopped on a fatal error.
	ErrHalted = errors.New("machine halted")
	// ErrNoProgram is returned when running a machine without a loaded program.
	ErrNoProgram = errors.New("no program loaded")
)

// Tracer receives every instruction before it is executed.
type Tracer interface {
	Trace(state *cpu.State, ins opcode.Instruction)
}

// Frame summarizes the steps executed for one frame.
type Frame struct {
	Draw  bool // any step changed the display
	Clear bool // any step cleared the display
	Steps int  // number of executed steps
}

// Machine is a single CHIP-8 system. Machines do not share any state.
type Machine struct {
	cfg    Config
	logger *log.Logger
	tracer Tracer

	mem  *memory.Memory
	disp *display.Display
	cpu  *cpu.State

	program []byte
	frames  uint64
	halted  error
}

// New returns a machine without a program.
func New(cfg Config, logger *log.Logger) *Machine {
	cfg.Defaults()
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	return &Machine{
		cfg:    cfg,
		logger: logger,
		mem:    memory.New(),
		disp:   display.New(),
		cpu: cpu.New(cpu.Options{
			Seed:   cfg.Seed,
			Quirks: cfg.Quirks,
		}),
	}
}

// Load installs a program and resets the machine.
func (m *Machine) Load(program []byte) error {
	if len(program) == 0 {
		return ErrNoProgram
	}
	if len(program) > memory.MaxProgramSize {
		return fmt.Errorf("program size %d exceeds maximum of %d bytes: %w",
			len(program), memory.MaxProgramSize, memory.ErrOutOfBounds)
	}

	m.program = make([]byte, len(program))
	copy(m.program, program)
	return m.Reset()
}

// Reset restores the power-on state with the loaded program in memory.
func (m *Machine) Reset() error {
	m.mem.Reset()
	if err := cpu.InstallFont(m.mem); err != nil {
		return err
	}
	if err := m.mem.Load(memory.ProgramStart, m.program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	m.disp.Clear()
	m.cpu.Reset()
	m.frames = 0
	m.halted = nil

	m.logger.Debug("Machine reset",
		log.Int("program_size", len(m.program)),
		log.Hex("pc", m.cpu.PC))
	return nil
}

// SetTracer sets a tracer that receives every executed instruction, nil disables tracing.
func (m *Machine) SetTracer(tracer Tracer) {
	m.tracer = tracer
}

// Step executes a single instruction with the given key snapshot.
func (m *Machine) Step(keys keypad.Keys) (cpu.Result, error) {
	if m.halted != nil {
		return cpu.Result{}, fmt.Errorf("%w: %w", ErrHalted, m.halted)
	}
	if m.program == nil {
		return cpu.Result{}, ErrNoProgram
	}

	if m.tracer != nil {
		if word, err := m.peek(m.cpu.PC); err == nil {
			m.tracer.Trace(m.cpu, opcode.Decode(word))
		}
	}

	pc := m.cpu.PC
	res, err := m.cpu.Step(m.mem, keys, m.disp)
	if err != nil {
		m.halted = err
		m.logger.Warn("Execution halted",
			log.Hex("pc", pc),
			log.Err(err))
		return res, err
	}

	if res.Instruction.Kind == opcode.Unknown {
		m.logger.Debug("Unknown opcode",
			log.Hex("pc", pc),
			log.Hex("word", res.Instruction.Word))
	}
	return res, nil
}

// Tick advances the timers by one 60 Hz period.
func (m *Machine) Tick() {
	m.cpu.Tick()
}

// RunFrame executes the configured number of instructions followed by one
// timer tick. The draw and clear flags of all steps are combined.
func (m *Machine) RunFrame(keys keypad.Keys) (Frame, error) {
	var frame Frame
	for range m.cfg.InstructionsPerFrame {
		res, err := m.Step(keys)
		if err != nil {
			return frame, err
		}
		frame.Steps++
		frame.Draw = frame.Draw || res.Draw
		frame.Clear = frame.Clear || res.Clear
	}

	m.Tick()
	m.frames++
	return frame, nil
}

// Halted returns the fatal error that stopped the machine, or nil.
func (m *Machine) Halted() error {
	return m.halted
}

// Frames returns the number of frames completed since the last reset.
func (m *Machine) Frames() uint64 {
	return m.frames
}

// SoundOn reports whether the buzzer should sound.
func (m *Machine) SoundOn() bool {
	return m.cpu.SoundOn()
}

// Config returns the active configuration.
func (m *Machine) Config() Config {
	return m.cfg
}

// CPU returns the CPU state for inspection.
func (m *Machine) CPU() *cpu.State {
	return m.cpu
}

// Display returns the display of the machine.
func (m *Machine) Display() *display.Display {
	return m.disp
}

// Memory returns the memory of the machine.
func (m *Machine) Memory() *memory.Memory {
	return m.mem
}

// Program returns the loaded program.
func (m *Machine) Program() []byte {
	return m.program
}

func (m *Machine) peek(address uint16) (uint16, error) {
	hi, err := m.mem.Read(address)
	if err != nil {
		return 0, err
	}
	lo, err := m.mem.Read(address + 1)
	if err != nil {
		return 0, err
	}
	return opcode.Fetch(hi, lo), nil
}
