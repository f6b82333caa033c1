package opcode

import (
	"fmt"
	"strings"
)

// Name returns the upper case mnemonic name of the instruction.
func (i Instruction) Name() string {
	desc := i.Kind.Descriptor()
	if desc == nil {
		return "UNKNOWN"
	}
	return strings.ToUpper(desc.Name)
}

// String returns the instruction in assembly notation, for example "LD V1, $05".
func (i Instruction) String() string {
	name := i.Name()
	if params := i.params(); params != "" {
		return name + " " + params
	}
	return name
}

// Target returns the address referenced by a jump, call or index load.
func (i Instruction) Target() (uint16, bool) {
	switch i.Kind {
	case Jump, Call, JumpV0, LoadIndex:
		return i.NNN, true
	default:
		return 0, false
	}
}

// params formats the operands of the instruction.
func (i Instruction) params() string {
	switch i.Kind {
	case Cls, Ret:
		return ""
	case Jump, Call:
		return fmt.Sprintf("$%03X", i.NNN)
	case JumpV0:
		return fmt.Sprintf("V0, $%03X", i.NNN)
	case SkipEqualImm, SkipNotEqualImm, LoadImm, AddImm, Rnd:
		return fmt.Sprintf("V%X, $%02X", i.X, i.KK)
	case SkipEqualReg, SkipNotEqualReg, LoadReg, Or, And, Xor, AddReg, Sub, SubN:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)
	case Shr, Shl, SkipKey, SkipNotKey:
		return fmt.Sprintf("V%X", i.X)
	case LoadIndex:
		return fmt.Sprintf("I, $%03X", i.NNN)
	case Draw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.N)
	case LoadDelay:
		return fmt.Sprintf("V%X, DT", i.X)
	case WaitKey:
		return fmt.Sprintf("V%X, K", i.X)
	case SetDelay:
		return fmt.Sprintf("DT, V%X", i.X)
	case SetSound:
		return fmt.Sprintf("ST, V%X", i.X)
	case AddIndex:
		return fmt.Sprintf("I, V%X", i.X)
	case LoadFont:
		return fmt.Sprintf("F, V%X", i.X)
	case StoreBCD:
		return fmt.Sprintf("B, V%X", i.X)
	case StoreRegs:
		return fmt.Sprintf("[I], V%X", i.X)
	case LoadRegs:
		return fmt.Sprintf("V%X, [I]", i.X)
	default:
		return fmt.Sprintf("$%04X", i.Word)
	}
}
