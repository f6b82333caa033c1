package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/chip8vm/internal/program"
)

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
)

// processJumpDestinations processes all jump destinations and updates the callers with
// the generated jump destination label name.
func (dis *Disasm) processJumpDestinations() {
	branchDestinations := make([]uint16, 0, len(dis.branchDestinations))
	for dest := range dis.branchDestinations {
		branchDestinations = append(branchDestinations, dest)
	}
	slices.Sort(branchDestinations)

	for _, address := range branchDestinations {
		offsetInfo := dis.prog.OffsetInfo(address)

		// if the offset is marked as code but does not have opcode bytes, the jump destination
		// is inside the second byte of an instruction.
		if offsetInfo.IsType(program.CodeOffset) && len(offsetInfo.Data) == 0 {
			dis.handleJumpIntoInstruction(address)
		}

		name := offsetInfo.Label
		if name == "" {
			switch {
			case offsetInfo.IsType(program.CallDestination):
				name = fmt.Sprintf(funcNaming, address)
			case offsetInfo.IsType(program.JumpDestination):
				name = fmt.Sprintf(labelNaming, address)
			default:
				name = fmt.Sprintf(dataNaming, address)
			}
			offsetInfo.Label = name
		}

		for _, from := range dis.references[address] {
			fromInfo := dis.prog.OffsetInfo(from)
			fromInfo.BranchingTo = name
			if fromInfo.IsType(program.CodeOffset) {
				fromInfo.Code = codeWithLabel(dis.instructions[from], name)
			}
		}
	}
}

// handleJumpIntoInstruction converts an instruction that has a jump destination label inside
// its second opcode byte into data.
func (dis *Disasm) handleJumpIntoInstruction(address uint16) {
	start := address - 1
	offsetInfo := dis.prog.OffsetInfo(start)
	nextInfo := dis.prog.OffsetInfo(address)

	offsetInfo.Comment = "branch into instruction detected: " + offsetInfo.Code
	offsetInfo.Code = ""
	nextInfo.Data = []byte{offsetInfo.Data[1]}
	offsetInfo.Data = offsetInfo.Data[:1]

	for _, info := range []*program.Offset{offsetInfo, nextInfo} {
		info.ClearType(program.CodeOffset)
		info.SetType(program.CodeAsData)
	}
	delete(dis.instructions, start)
}

// codeWithLabel formats an instruction that references an address with the
// label name of the address.
func codeWithLabel(ins opcode.Instruction, name string) string {
	switch ins.Kind {
	case opcode.Jump, opcode.Call:
		return ins.Name() + " " + name
	case opcode.JumpV0:
		return ins.Name() + " V0, " + name
	case opcode.LoadIndex:
		return ins.Name() + " I, " + name
	default:
		return ins.String()
	}
}
