package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/opcode"
)

// Tracer writes one line per executed instruction with the register state
// before the instruction is executed.
type Tracer struct {
	writer io.Writer
	err    error

	address func(a ...any) string
	code    func(a ...any) string
	unknown func(a ...any) string
}

// NewTracer returns a tracer writing to the given writer. Output is colored
// unless color.NoColor is set.
func NewTracer(writer io.Writer) *Tracer {
	return &Tracer{
		writer:  writer,
		address: color.New(color.FgCyan).SprintFunc(),
		code:    color.New(color.FgGreen).SprintFunc(),
		unknown: color.New(color.FgRed).SprintFunc(),
	}
}

// Trace writes the trace line for the instruction at the program counter.
func (t *Tracer) Trace(state *cpu.State, ins opcode.Instruction) {
	if t.err != nil {
		return
	}

	code := t.code
	if ins.Kind == opcode.Unknown {
		code = t.unknown
	}

	buf := &strings.Builder{}
	fmt.Fprintf(buf, "%s  %02X %02X  %s", t.address(fmt.Sprintf("$%04X", state.PC)),
		byte(ins.Word>>8), byte(ins.Word), code(fmt.Sprintf("%-16s", ins.String())))
	fmt.Fprintf(buf, " I=$%03X V=", state.I)
	for i, v := range state.V {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%02X", v)
	}
	fmt.Fprintf(buf, " DT=%02X ST=%02X SP=%X\n", state.Delay, state.Sound, state.SP)

	if _, err := io.WriteString(t.writer, buf.String()); err != nil {
		t.err = fmt.Errorf("writing trace line: %w", err)
	}
}

// Err returns the first error that occurred writing trace lines.
func (t *Tracer) Err() error {
	return t.err
}
