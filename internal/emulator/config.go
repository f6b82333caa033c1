package emulator

import "github.com/retroenv/chip8vm/internal/cpu"

// FrameRate is the number of frames per second, which is also the timer rate.
const FrameRate = 60

// Config contains settings that affect emulation behavior.
type Config struct {
	InstructionsPerFrame int        // instructions executed between two timer ticks
	Seed                 uint64     // random seed for RND, 0 selects a time based seed
	Quirks               cpu.Quirks // interpreter compatibility switches
	LimitFPS             bool       // throttle Run to FrameRate
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.InstructionsPerFrame <= 0 {
		c.InstructionsPerFrame = 10 // 600 instructions per second
	}
}
