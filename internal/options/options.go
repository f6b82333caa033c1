// Package options contains the program options.
package options

import "strings"

// Frontend names.
const (
	FrontendAuto     = "auto"
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// Frontends lists the selectable frontends.
var Frontends = []string{FrontendAuto, FrontendWindow, FrontendTerminal, FrontendHeadless}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input program file (.ch8)"`
	Output string `flag:"o" usage:"output file for -disasm listings (default: stdout)"`
	Batch  string `flag:"batch" usage:"disassemble a batch of files matching pattern (e.g. *.ch8)"`
	Script string `flag:"script" usage:"Lua script driving a headless run"`
	PNG    string `flag:"png" usage:"write the final display to a PNG file"`
	Expect string `flag:"expect" usage:"expected CRC32 of the final display (hex)"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend string `flag:"f" usage:"frontend: auto, window, terminal, headless" default:"auto"`
	Disasm   bool   `flag:"disasm" usage:"print a disassembly listing instead of running"`
	Trace    bool   `flag:"trace" usage:"print every executed instruction"`

	NoHexComments bool `flag:"nohexcomments" usage:"do not output opcode bytes as hex values in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"do not output offsets in comments"`
	ZeroBytes     bool `flag:"z" usage:"output the trailing zero bytes of the program"`

	Frames int    `flag:"frames" usage:"frames to run in headless mode" default:"300"`
	Speed  int    `flag:"ipf" usage:"instructions per frame" default:"10"`
	Seed   uint64 `flag:"seed" usage:"random seed, 0 for a time based seed"`
	Scale  int    `flag:"scale" usage:"window and PNG scale factor" default:"10"`
	Mute   bool   `flag:"mute" usage:"disable sound"`
	Debug  bool   `flag:"debug" usage:"enable debug logging"`
	Quiet  bool   `flag:"q" usage:"quiet mode"`
}

// QuirkFlags contains interpreter compatibility options.
type QuirkFlags struct {
	ShiftQuirk     bool `flag:"quirk-shift" usage:"8xy6/8xyE shift Vy instead of Vx"`
	LoadStoreQuirk bool `flag:"quirk-loadstore" usage:"Fx55/Fx65 increment I"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	QuirkFlags
}

// ValidFrontend reports whether the name is a known frontend.
func ValidFrontend(name string) bool {
	name = strings.ToLower(name)
	for _, frontend := range Frontends {
		if frontend == name {
			return true
		}
	}
	return false
}
