package main

import (
	"fmt"
	"io"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/emulator"
	"github.com/retroenv/chip8vm/internal/frontend/terminal"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/opcode"
)

func writeDisplay(w io.Writer, disp *display.Display) {
	for _, line := range terminal.RenderLines(disp) {
		fmt.Fprintln(w, line)
	}
}

func writeRegisters(w io.Writer, state *cpu.State) {
	for row := range cpu.RegisterCount / 4 {
		for col := range 4 {
			x := row*4 + col
			if col > 0 {
				fmt.Fprint(w, "  ")
			}
			fmt.Fprintf(w, "V%X=%02X", x, state.V[x])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nPC=%04X  I=%04X\n", state.PC, state.I)
	fmt.Fprintf(w, "DT=%02X    ST=%02X\n", state.Delay, state.Sound)
	fmt.Fprintf(w, "SP=%X\n", state.SP)

	quirks := state.Quirks()
	fmt.Fprintf(w, "\nshift quirk=%t\nloadstore quirk=%t\n", quirks.ShiftUsesVY, quirks.LoadStoreIncrementsI)
	if mnemonic := state.Mnemonic(); mnemonic != "" {
		fmt.Fprintf(w, "\nLast: %s\n", mnemonic)
	}
}

func writeMachineStatus(w io.Writer, m *emulator.Machine, running bool) {
	state := "paused"
	if running {
		state = "running"
	}
	fmt.Fprintf(w, "State:  %s\n", state)
	fmt.Fprintf(w, "Frames: %d\n", m.Frames())
	fmt.Fprintf(w, "Size:   %d bytes\n", len(m.Program()))
	if err := m.Halted(); err != nil {
		fmt.Fprintf(w, "Halted: %s\n", err)
	}
}

func writeStack(w io.Writer, state *cpu.State) {
	frames := state.Frames()
	if len(frames) == 0 {
		fmt.Fprintln(w, "empty")
		return
	}
	for i := len(frames) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "%2d  $%04X\n", i, frames[i])
	}
}

// writeCode disassembles the instructions around pc, starting a few
// instructions before it.
func writeCode(w io.Writer, mem *memory.Memory, pc uint16, lines int) {
	start := pc
	for range max(lines/4, 1) {
		if start < memory.ProgramStart+opcode.Size {
			break
		}
		start -= opcode.Size
	}

	for address := start; lines > 0 && int(address)+1 < mem.Size(); address += opcode.Size {
		hi, err := mem.Read(address)
		if err != nil {
			return
		}
		lo, err := mem.Read(address + 1)
		if err != nil {
			return
		}

		marker := " "
		if address == pc {
			marker = ">"
		}
		ins := opcode.Decode(opcode.Fetch(hi, lo))
		fmt.Fprintf(w, "%s $%04X  %02X %02X  %s\n", marker, address, hi, lo, ins)
		lines--
	}
}
