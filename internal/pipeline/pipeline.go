// Package pipeline orchestrates loading a program and either disassembling
// or running it on the selected frontend.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/chip8vm/internal/audio"
	"github.com/retroenv/chip8vm/internal/config"
	"github.com/retroenv/chip8vm/internal/detector"
	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/frontend/terminal"
	"github.com/retroenv/chip8vm/internal/frontend/window"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/program"
	"github.com/retroenv/chip8vm/internal/screenshot"
	"github.com/retroenv/chip8vm/internal/script"
	"github.com/retroenv/chip8vm/internal/writer"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// ErrChecksumMismatch is returned when the final display does not match the expected checksum.
var ErrChecksumMismatch = errors.New("display checksum mismatch")

// Pipeline orchestrates the complete workflow for a single program file.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new pipeline for the running process environment.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger, detector.ProcessEnvironment()),
		loader:   loader.New(),
	}
}

// Execute loads the input program and disassembles or runs it. Listings and
// traces are written to output.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, output io.Writer) error {
	data, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	if system := p.detector.DetectSystem(opts.Input); system != arch.CHIP8System {
		p.logger.Warn("File extension does not indicate a CHIP-8 program",
			log.String("file", opts.Input),
			log.String("system", system.String()))
	}

	if opts.Disasm {
		_, err := p.Disassemble(ctx, data, opts, output)
		return err
	}

	frontend := p.detector.Detect(opts)
	return p.Emulate(ctx, data, opts, frontend, output)
}

// Disassemble writes the listing of a program to output.
func (p *Pipeline) Disassemble(ctx context.Context, data []byte, opts options.Program,
	output io.Writer) (*program.Program, error) {

	if !opts.Quiet {
		p.logger.Info("Disassembling CHIP-8 program",
			log.String("file", opts.Input),
			log.Int("size", len(data)))
	}

	app, err := disasm.New(p.logger, data).Process(ctx)
	if err != nil {
		return nil, fmt.Errorf("disassembling: %w", err)
	}

	writerOptions := writer.Options{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
		ZeroBytes:      opts.ZeroBytes,
	}
	if err := writer.New(app, output, writerOptions).Write(); err != nil {
		return nil, fmt.Errorf("writing listing: %w", err)
	}
	return app, nil
}

// Emulate runs a program on the given frontend.
func (p *Pipeline) Emulate(ctx context.Context, data []byte, opts options.Program, frontend string,
	output io.Writer) error {

	interactive := frontend != options.FrontendHeadless
	m := emulator.New(config.CreateEmulatorConfig(opts, interactive), p.logger)
	if err := m.Load(data); err != nil {
		return fmt.Errorf("loading program into machine: %w", err)
	}

	var tracer *disasm.Tracer
	if opts.Trace {
		tracer = disasm.NewTracer(output)
		m.SetTracer(tracer)
	}

	if !opts.Quiet {
		p.logger.Info("Running CHIP-8 program",
			log.String("file", opts.Input),
			log.String("frontend", frontend),
			log.Int("instructions_per_frame", m.Config().InstructionsPerFrame))
	}

	var err error
	switch frontend {
	case options.FrontendHeadless:
		err = p.runHeadless(ctx, m, opts)
	case options.FrontendTerminal:
		err = p.runTerminal(ctx, m, opts)
	case options.FrontendWindow:
		err = p.runWindow(ctx, m, opts)
	default:
		return fmt.Errorf("unsupported frontend '%s'", frontend)
	}

	if tracer != nil && tracer.Err() != nil {
		return tracer.Err()
	}
	return err
}

func (p *Pipeline) runHeadless(ctx context.Context, m *emulator.Machine, opts options.Program) error {
	host := &headlessHost{
		ctx:    ctx,
		frames: uint64(opts.Frames),
	}

	if opts.Script != "" {
		s := script.New(p.logger, m)
		defer s.Close()
		if err := s.LoadFile(opts.Script); err != nil {
			return err
		}
		host.script = s
	}

	if err := m.Run(ctx, host); err != nil {
		return fmt.Errorf("running machine: %w", err)
	}

	p.logger.Debug("Headless run finished",
		log.Int("frames", int(m.Frames())),
		log.Int("lit_pixels", m.Display().Lit()))

	return p.checkResult(m, opts)
}

// checkResult writes the final display and compares its checksum.
func (p *Pipeline) checkResult(m *emulator.Machine, opts options.Program) error {
	if opts.PNG != "" {
		if err := screenshot.SavePNG(opts.PNG, m.Display(), opts.Scale); err != nil {
			return fmt.Errorf("saving display: %w", err)
		}
		p.logger.Info("Display saved", log.String("file", opts.PNG))
	}

	checksum := screenshot.FormatChecksum(screenshot.Checksum(m.Display()))
	if !opts.Quiet {
		p.logger.Info("Display checksum", log.String("crc32", checksum))
	}

	if opts.Expect != "" && !strings.EqualFold(opts.Expect, checksum) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, opts.Expect, checksum)
	}
	return nil
}

func (p *Pipeline) runTerminal(ctx context.Context, m *emulator.Machine, opts options.Program) error {
	sound, closeSound := p.openSound(opts)
	defer closeSound()

	host := terminal.New(p.logger, os.Stdin, os.Stdout, terminal.Options{
		Sound: sound,
	})
	if err := host.Run(ctx, m); err != nil {
		return fmt.Errorf("running terminal frontend: %w", err)
	}
	return nil
}

func (p *Pipeline) runWindow(ctx context.Context, m *emulator.Machine, opts options.Program) error {
	sound, closeSound := p.openSound(opts)
	defer closeSound()

	err := window.Run(ctx, p.logger, m, window.Options{
		Title: "chip8vm - " + opts.Input,
		Scale: opts.Scale,
		Sound: sound,
	})
	if err != nil {
		return fmt.Errorf("running window frontend: %w", err)
	}
	return nil
}

// openSound opens the audio device unless sound is muted. A missing audio
// device only disables sound.
func (p *Pipeline) openSound(opts options.Program) (audio.Sink, func()) {
	if opts.Mute {
		return nil, func() {}
	}

	beeper, err := audio.NewBeeper()
	if err != nil {
		p.logger.Warn("Audio output not available", log.Err(err))
		return nil, func() {}
	}
	return beeper, func() {
		if err := beeper.Close(); err != nil {
			p.logger.Error("Closing audio output failed", log.Err(err))
		}
	}
}

// headlessHost runs a fixed number of frames, optionally driven by a script.
type headlessHost struct {
	ctx    context.Context
	frames uint64
	script *script.Script
}

func (h *headlessHost) Keys() keypad.Keys {
	if h.script == nil {
		return 0
	}
	return h.script.Keys()
}

func (h *headlessHost) Present(m *emulator.Machine, _ emulator.Frame) error {
	if h.script != nil {
		if err := h.script.Frame(h.ctx, m.Frames()); err != nil {
			return err
		}
		if h.script.Stopped() {
			return emulator.ErrQuit
		}
	}
	if m.Frames() >= h.frames {
		return emulator.ErrQuit
	}
	return nil
}
