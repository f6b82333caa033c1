// Package main implements an interactive terminal debugger for CHIP-8 programs
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jroimartin/gocui"
	"github.com/retroenv/chip8vm/internal/config"
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/retrogolib/log"
)

type optionFlags struct {
	input string
	speed int
	seed  uint64

	shiftQuirk     bool
	loadStoreQuirk bool
}

func main() {
	opts := readArguments()

	// log output would corrupt the terminal user interface
	logger := config.CreateLogger(false, true)

	m, err := createMachine(logger, opts)
	if err != nil {
		fmt.Println(fmt.Errorf("loading program failed: %w", err))
		os.Exit(1)
	}

	if err := run(m, opts.input); err != nil {
		fmt.Println(fmt.Errorf("debugger failed: %w", err))
		os.Exit(1)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := optionFlags{}

	flags.IntVar(&opts.speed, "ipf", 10, "instructions executed per 60 Hz frame")
	flags.Uint64Var(&opts.seed, "seed", 0, "random number seed, 0 uses a time based seed")
	flags.BoolVar(&opts.shiftQuirk, "quirk-shift", false, "8xy6/8xyE shift Vy into Vx instead of shifting Vx")
	flags.BoolVar(&opts.loadStoreQuirk, "quirk-loadstore", false, "Fx55/Fx65 increment I past the last register")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) != 1 {
		fmt.Printf("usage: chip8debug [options] <program file>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	opts.input = args[0]
	return opts
}

func createMachine(logger *log.Logger, opts optionFlags) (*emulator.Machine, error) {
	data, err := loader.New().Load(opts.input)
	if err != nil {
		return nil, err
	}

	cfg := emulator.Config{
		InstructionsPerFrame: opts.speed,
		Seed:                 opts.seed,
		Quirks: cpu.Quirks{
			ShiftUsesVY:          opts.shiftQuirk,
			LoadStoreIncrementsI: opts.loadStoreQuirk,
		},
	}
	m := emulator.New(cfg, logger)
	if err := m.Load(data); err != nil {
		return nil, err
	}
	return m, nil
}

func run(m *emulator.Machine, title string) error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fmt.Errorf("creating terminal user interface: %w", err)
	}
	defer g.Close()

	dbg := newDebugger(m, title)
	g.SetManagerFunc(dbg.layout)
	if err := dbg.bindKeys(g); err != nil {
		return err
	}

	defer dbg.stopRunning()
	if err := g.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		return fmt.Errorf("running terminal user interface: %w", err)
	}
	return nil
}
