// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateEmulatorConfig converts program options into an emulator configuration.
// Interactive frontends are throttled to the frame rate, headless runs are not.
func CreateEmulatorConfig(opts options.Program, interactive bool) emulator.Config {
	cfg := emulator.Config{
		InstructionsPerFrame: opts.Speed,
		Seed:                 opts.Seed,
		Quirks: cpu.Quirks{
			ShiftUsesVY:          opts.ShiftQuirk,
			LoadStoreIncrementsI: opts.LoadStoreQuirk,
		},
		LimitFPS: interactive,
	}
	cfg.Defaults()
	return cfg
}
