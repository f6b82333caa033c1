// Package cpu implements the CHIP-8 register file, call stack, timers and
// the instruction executor.
//
// A State is an explicit value owned by a single emulator instance. Memory,
// display and the key snapshot are passed into every Step call and are never
// retained, so independent instances do not share anything.
package cpu

import (
	"errors"
	"math/rand/v2"

	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/opcode"
)

const (
	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16
	// FlagRegister is the index of VF, the carry, borrow and collision flag.
	FlagRegister = 0xF
	// StackDepth is the maximum number of nested subroutine calls.
	StackDepth = 16
)

var (
	// ErrStackOverflow is returned by a call with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// Quirks select between behaviours that differ across CHIP-8 interpreters.
// The zero value matches the CHIP-48 family.
type Quirks struct {
	ShiftUsesVY          bool // 8xy6/8xyE shift Vy into Vx instead of shifting Vx
	LoadStoreIncrementsI bool // Fx55/Fx65 leave I pointing after the last register
}

// Options configure a new State.
type Options struct {
	Seed   uint64 // seed of the random number source used by RND
	Quirks Quirks
}

// State is the register, stack and timer state of the interpreter.
type State struct {
	V  [RegisterCount]byte // general purpose registers
	I  uint16              // index register
	PC uint16              // program counter

	Stack [StackDepth]uint16 // return addresses
	SP    uint8              // number of used stack entries

	Delay byte // delay timer
	Sound byte // sound timer

	Last opcode.Instruction // last decoded instruction

	executed bool // Last holds a decoded instruction
	quirks   Quirks
	seed     uint64
	rng      *rand.Rand
}

// New returns a state ready to execute a program at memory.ProgramStart.
func New(opts Options) *State {
	s := &State{
		quirks: opts.Quirks,
		seed:   opts.Seed,
	}
	s.Reset()
	return s
}

// Reset restores the power-on state and reseeds the random source.
func (s *State) Reset() {
	s.V = [RegisterCount]byte{}
	s.I = 0
	s.PC = memory.ProgramStart
	s.Stack = [StackDepth]uint16{}
	s.SP = 0
	s.Delay = 0
	s.Sound = 0
	s.Last = opcode.Instruction{}
	s.executed = false
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9E3779B97F4A7C15))
}

// Quirks returns the configured quirks.
func (s *State) Quirks() Quirks {
	return s.quirks
}

// Tick advances both timers by one 60 Hz period. Timers stop at zero.
func (s *State) Tick() {
	if s.Delay > 0 {
		s.Delay--
	}
	if s.Sound > 0 {
		s.Sound--
	}
}

// SoundOn reports whether the buzzer should sound.
func (s *State) SoundOn() bool {
	return s.Sound > 0
}

// Mnemonic returns the last executed instruction in assembly notation.
func (s *State) Mnemonic() string {
	if !s.executed {
		return ""
	}
	return s.Last.String()
}

// Frames returns a copy of the used part of the call stack, oldest first.
func (s *State) Frames() []uint16 {
	frames := make([]uint16, s.SP)
	copy(frames, s.Stack[:s.SP])
	return frames
}

func (s *State) push(address uint16) error {
	if int(s.SP) >= StackDepth {
		return ErrStackOverflow
	}
	s.Stack[s.SP] = address
	s.SP++
	return nil
}

func (s *State) pop() (uint16, error) {
	if s.SP == 0 {
		return 0, ErrStackUnderflow
	}
	s.SP--
	return s.Stack[s.SP], nil
}
