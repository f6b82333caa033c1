// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.Usage = func() {}
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, &UsageError{flags: flags}
		}
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}
	if opts.Input == "" && opts.Batch == "" {
		return opts, &UsageError{flags: flags}
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	if err := validateOptionCombinations(opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: chip8vm [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("Only one program file can be passed, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if !options.ValidFrontend(opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(options.Frontends, ", "))
	}
	if opts.Frames <= 0 {
		return fmt.Errorf("invalid frame count %d", opts.Frames)
	}
	if opts.Speed <= 0 {
		return fmt.Errorf("invalid instructions per frame %d", opts.Speed)
	}
	if opts.Scale <= 0 {
		return fmt.Errorf("invalid scale %d", opts.Scale)
	}
	opts.Expect = strings.TrimPrefix(strings.ToLower(opts.Expect), "0x")
	return nil
}

// validateOptionCombinations checks for options that can not be combined
func validateOptionCombinations(opts options.Program) error {
	if opts.Batch != "" && !opts.Disasm {
		return errors.New("-batch can only be used together with -disasm")
	}
	if opts.Disasm && opts.Trace {
		return errors.New("-disasm and -trace can not be combined")
	}

	headlessOnly := opts.Script != "" || opts.PNG != "" || opts.Expect != ""
	if headlessOnly && opts.Frontend != options.FrontendHeadless && opts.Frontend != options.FrontendAuto {
		return fmt.Errorf("-script, -png and -expect require the headless frontend, not %s", opts.Frontend)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input program file")
	flags.StringVar(&opts.Output, "o", "", "name of the output file for the disassembly listing, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "disassemble a batch of given path and file mask with automatic .lst file naming, for example *.ch8")
	flags.StringVar(&opts.Script, "script", "", "Lua script to drive a headless run")
	flags.StringVar(&opts.PNG, "png", "", "write the final display of a headless run to a PNG file")
	flags.StringVar(&opts.Expect, "expect", "", "assert the CRC32 (hex) of the final display of a headless run")
	flags.StringVar(&opts.Frontend, "f", options.FrontendAuto, "frontend to use (auto/window/terminal/headless)")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print a disassembly listing of the program instead of running it")
	flags.BoolVar(&opts.Trace, "trace", false, "print every executed instruction")
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output offsets in comments")
	flags.BoolVar(&opts.ZeroBytes, "z", false, "output the trailing zero bytes of the program")
	flags.IntVar(&opts.Frames, "frames", 300, "number of frames to run in headless mode")
	flags.IntVar(&opts.Speed, "ipf", 10, "instructions executed per 60 Hz frame")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random number seed, 0 uses a time based seed")
	flags.IntVar(&opts.Scale, "scale", 10, "window and PNG scale factor")
	flags.BoolVar(&opts.Mute, "mute", false, "disable sound output")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.ShiftQuirk, "quirk-shift", false, "8xy6/8xyE shift Vy into Vx instead of shifting Vx")
	flags.BoolVar(&opts.LoadStoreQuirk, "quirk-loadstore", false, "Fx55/Fx65 increment I past the last register")
}
