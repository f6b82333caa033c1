package cpu

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/opcode"
)

// Result describes the observable effects of a single step.
// A new Result is returned by every step, flags never carry over.
type Result struct {
	Draw        bool // display changed, set by CLS and DRW
	Clear       bool // display was cleared, set by CLS
	Instruction opcode.Instruction
}

// Step fetches, decodes and executes the instruction at PC.
//
// On a fatal error the program counter is left at the faulting instruction
// and no partial memory or register changes of the instruction are applied.
func (s *State) Step(mem *memory.Memory, keys keypad.Keys, disp *display.Display) (Result, error) {
	pc := s.PC
	word, err := fetch(mem, pc)
	if err != nil {
		return Result{}, err
	}

	ins := opcode.Decode(word)
	s.Last = ins
	s.executed = true
	s.PC = pc + opcode.Size

	res := Result{Instruction: ins}
	if err := s.execute(ins, mem, keys, disp, &res); err != nil {
		s.PC = pc
		return Result{Instruction: ins}, fmt.Errorf("executing '%s' at $%04X: %w", ins, pc, err)
	}
	return res, nil
}

func fetch(mem *memory.Memory, pc uint16) (uint16, error) {
	hi, err := mem.Read(pc)
	if err != nil {
		return 0, fmt.Errorf("fetching instruction: %w", err)
	}
	lo, err := mem.Read(pc + 1)
	if err != nil {
		return 0, fmt.Errorf("fetching instruction: %w", err)
	}
	return opcode.Fetch(hi, lo), nil
}

func (s *State) execute(ins opcode.Instruction, mem *memory.Memory, keys keypad.Keys,
	disp *display.Display, res *Result) error {

	vx := s.V[ins.X]
	vy := s.V[ins.Y]

	switch ins.Kind {
	case opcode.Cls:
		disp.Clear()
		res.Draw = true
		res.Clear = true

	case opcode.Ret:
		address, err := s.pop()
		if err != nil {
			return err
		}
		s.PC = address

	case opcode.Jump:
		s.PC = ins.NNN

	case opcode.Call:
		if err := s.push(s.PC); err != nil {
			return err
		}
		s.PC = ins.NNN

	case opcode.JumpV0:
		s.PC = (ins.NNN + uint16(s.V[0])) & memory.MaxAddress

	case opcode.SkipEqualImm:
		s.skipIf(vx == ins.KK)
	case opcode.SkipNotEqualImm:
		s.skipIf(vx != ins.KK)
	case opcode.SkipEqualReg:
		s.skipIf(vx == vy)
	case opcode.SkipNotEqualReg:
		s.skipIf(vx != vy)
	case opcode.SkipKey:
		s.skipIf(keys.Pressed(vx))
	case opcode.SkipNotKey:
		s.skipIf(!keys.Pressed(vx))

	case opcode.LoadImm:
		s.V[ins.X] = ins.KK
	case opcode.AddImm:
		s.V[ins.X] = vx + ins.KK
	case opcode.LoadReg:
		s.V[ins.X] = vy
	case opcode.Or:
		s.V[ins.X] = vx | vy
	case opcode.And:
		s.V[ins.X] = vx & vy
	case opcode.Xor:
		s.V[ins.X] = vx ^ vy

	case opcode.AddReg:
		sum := uint16(vx) + uint16(vy)
		s.V[ins.X] = byte(sum)
		s.setFlag(sum > 0xFF)
	case opcode.Sub:
		s.V[ins.X] = vx - vy
		s.setFlag(vx >= vy)
	case opcode.SubN:
		s.V[ins.X] = vy - vx
		s.setFlag(vy >= vx)
	case opcode.Shr:
		src := s.shiftSource(vx, vy)
		s.V[ins.X] = src >> 1
		s.V[FlagRegister] = src & 0x01
	case opcode.Shl:
		src := s.shiftSource(vx, vy)
		s.V[ins.X] = src << 1
		s.V[FlagRegister] = src >> 7

	case opcode.LoadIndex:
		s.I = ins.NNN
	case opcode.AddIndex:
		s.I = (s.I + uint16(vx)) & memory.MaxAddress
	case opcode.LoadFont:
		s.I = glyphAddress(vx)

	case opcode.Rnd:
		s.V[ins.X] = byte(s.rng.UintN(256)) & ins.KK

	case opcode.Draw:
		rows, err := readBlock(mem, s.I, int(ins.N))
		if err != nil {
			return err
		}
		collision := disp.DrawSprite(int(vx)%display.Width, int(vy)%display.Height, rows)
		s.setFlag(collision)
		res.Draw = true

	case opcode.LoadDelay:
		s.V[ins.X] = s.Delay
	case opcode.SetDelay:
		s.Delay = vx
	case opcode.SetSound:
		s.Sound = vx

	case opcode.WaitKey:
		key, ok := keys.Lowest()
		if !ok {
			s.PC -= opcode.Size
			return nil
		}
		s.V[ins.X] = key

	case opcode.StoreBCD:
		digits := []byte{vx / 100, vx / 10 % 10, vx % 10}
		if err := mem.Load(s.I, digits); err != nil {
			return err
		}

	case opcode.StoreRegs:
		count := int(ins.X) + 1
		if err := mem.Load(s.I, s.V[:count]); err != nil {
			return err
		}
		s.advanceIndex(count)

	case opcode.LoadRegs:
		count := int(ins.X) + 1
		values, err := readBlock(mem, s.I, count)
		if err != nil {
			return err
		}
		copy(s.V[:count], values)
		s.advanceIndex(count)

	case opcode.Unknown:
	}

	return nil
}

func (s *State) skipIf(condition bool) {
	if condition {
		s.PC += opcode.Size
	}
}

// setFlag writes VF after the result register, so VF as destination
// ends up holding the flag.
func (s *State) setFlag(set bool) {
	if set {
		s.V[FlagRegister] = 1
	} else {
		s.V[FlagRegister] = 0
	}
}

func (s *State) shiftSource(vx, vy byte) byte {
	if s.quirks.ShiftUsesVY {
		return vy
	}
	return vx
}

func (s *State) advanceIndex(count int) {
	if s.quirks.LoadStoreIncrementsI {
		s.I = (s.I + uint16(count)) & memory.MaxAddress
	}
}

// readBlock reads count bytes starting at address, failing without side
// effects if any byte is outside of the address space.
func readBlock(mem *memory.Memory, address uint16, count int) ([]byte, error) {
	data := make([]byte, count)
	for i := range data {
		b, err := mem.Read(address + uint16(i))
		if err != nil {
			return nil, err
		}
		data[i] = b
	}
	return data, nil
}
