// Package detector handles frontend and program type detection.
package detector

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Environment gives access to the parts of the process environment that
// influence frontend selection.
type Environment struct {
	GOOS       string
	Getenv     func(key string) string
	IsTerminal func() bool
}

// ProcessEnvironment returns the environment of the running process.
func ProcessEnvironment() Environment {
	return Environment{
		GOOS:   runtime.GOOS,
		Getenv: os.Getenv,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	}
}

// Detector handles frontend selection from options and the environment.
type Detector struct {
	logger *log.Logger
	env    Environment
}

// New creates a new detector for the given environment.
func New(logger *log.Logger, env Environment) *Detector {
	return &Detector{
		logger: logger,
		env:    env,
	}
}

// Detect determines the frontend to use. An explicitly requested frontend
// is used as is, otherwise headless only options select the headless
// frontend, a display server selects the window and an interactive
// terminal selects the terminal frontend.
func (d *Detector) Detect(opts options.Program) string {
	frontend := strings.ToLower(opts.Frontend)
	if frontend != "" && frontend != options.FrontendAuto {
		return frontend
	}

	frontend = d.detectFromEnvironment(opts)
	d.logger.Debug("Auto-detected frontend",
		log.String("frontend", frontend),
		log.String("os", d.env.GOOS))
	return frontend
}

func (d *Detector) detectFromEnvironment(opts options.Program) string {
	switch {
	case opts.Script != "" || opts.PNG != "" || opts.Expect != "":
		return options.FrontendHeadless
	case d.hasDisplay():
		return options.FrontendWindow
	case d.env.IsTerminal != nil && d.env.IsTerminal():
		return options.FrontendTerminal
	default:
		return options.FrontendHeadless
	}
}

func (d *Detector) hasDisplay() bool {
	switch d.env.GOOS {
	case "windows", "darwin":
		return true
	}
	if d.env.Getenv == nil {
		return false
	}
	return d.env.Getenv("DISPLAY") != "" || d.env.Getenv("WAYLAND_DISPLAY") != ""
}

// DetectSystem determines the system a program file was made for based on
// its file extension. Unknown extensions are assumed to be CHIP-8 programs.
func (d *Detector) DetectSystem(filename string) arch.System {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".nes":
		return arch.NES
	default:
		return arch.CHIP8System
	}
}
