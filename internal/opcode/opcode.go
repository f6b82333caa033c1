// Package opcode decodes 16-bit CHIP-8 instruction words.
//
// Every instruction is 2 bytes, fetched big-endian. The top nibble selects
// the instruction family, the remaining nibbles hold register indexes, an
// immediate byte, a sprite height or a 12-bit address depending on the family.
// Words that match no known instruction decode to the Unknown kind, decoding
// never fails.
package opcode

import (
	"strconv"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Size is the size of an instruction in bytes.
const Size = 2

// Kind identifies a decoded instruction.
type Kind uint8

// Instruction kinds, one per CHIP-8 instruction.
const (
	Unknown         Kind = iota // unrecognized word
	Cls                         // 00E0 clear display
	Ret                         // 00EE return from subroutine
	Jump                        // 1nnn jump to nnn
	Call                        // 2nnn call subroutine at nnn
	SkipEqualImm                // 3xkk skip if Vx == kk
	SkipNotEqualImm             // 4xkk skip if Vx != kk
	SkipEqualReg                // 5xy0 skip if Vx == Vy
	LoadImm                     // 6xkk Vx = kk
	AddImm                      // 7xkk Vx += kk, VF unaffected
	LoadReg                     // 8xy0 Vx = Vy
	Or                          // 8xy1 Vx |= Vy
	And                         // 8xy2 Vx &= Vy
	Xor                         // 8xy3 Vx ^= Vy
	AddReg                      // 8xy4 Vx += Vy, VF = carry
	Sub                         // 8xy5 Vx -= Vy, VF = not borrow
	Shr                         // 8xy6 Vx >>= 1, VF = shifted out bit
	SubN                        // 8xy7 Vx = Vy - Vx, VF = not borrow
	Shl                         // 8xyE Vx <<= 1, VF = shifted out bit
	SkipNotEqualReg             // 9xy0 skip if Vx != Vy
	LoadIndex                   // Annn I = nnn
	JumpV0                      // Bnnn jump to nnn + V0
	Rnd                         // Cxkk Vx = random & kk
	Draw                        // Dxyn draw n byte sprite at Vx,Vy
	SkipKey                     // Ex9E skip if key Vx pressed
	SkipNotKey                  // ExA1 skip if key Vx not pressed
	LoadDelay                   // Fx07 Vx = delay timer
	WaitKey                     // Fx0A wait for a key press, Vx = key
	SetDelay                    // Fx15 delay timer = Vx
	SetSound                    // Fx18 sound timer = Vx
	AddIndex                    // Fx1E I += Vx
	LoadFont                    // Fx29 I = font glyph address of Vx
	StoreBCD                    // Fx33 BCD of Vx at I, I+1, I+2
	StoreRegs                   // Fx55 store V0..Vx at I
	LoadRegs                    // Fx65 load V0..Vx from I

	kindCount
)

// descriptors maps every known kind to its instruction descriptor of the
// reference instruction set.
var descriptors = [kindCount]*chip8.Instruction{
	Cls:             chip8.ClsInst,
	Ret:             chip8.RetInst,
	Jump:            chip8.JpInst,
	Call:            chip8.CallInst,
	SkipEqualImm:    chip8.SeInst,
	SkipNotEqualImm: chip8.SneInst,
	SkipEqualReg:    chip8.SeInst,
	LoadImm:         chip8.LdInst,
	AddImm:          chip8.AddInst,
	LoadReg:         chip8.LdInst,
	Or:              chip8.OrInst,
	And:             chip8.AndInst,
	Xor:             chip8.XorInst,
	AddReg:          chip8.AddInst,
	Sub:             chip8.SubInst,
	Shr:             chip8.ShrInst,
	SubN:            chip8.SubnInst,
	Shl:             chip8.ShlInst,
	SkipNotEqualReg: chip8.SneInst,
	LoadIndex:       chip8.LdInst,
	JumpV0:          chip8.JpInst,
	Rnd:             chip8.RndInst,
	Draw:            chip8.DrwInst,
	SkipKey:         chip8.SkpInst,
	SkipNotKey:      chip8.SknpInst,
	LoadDelay:       chip8.LdInst,
	WaitKey:         chip8.LdInst,
	SetDelay:        chip8.LdInst,
	SetSound:        chip8.LdInst,
	AddIndex:        chip8.AddInst,
	LoadFont:        chip8.LdInst,
	StoreBCD:        chip8.LdInst,
	StoreRegs:       chip8.LdInst,
	LoadRegs:        chip8.LdInst,
}

var kindNames = [kindCount]string{
	Unknown:         "Unknown",
	Cls:             "Cls",
	Ret:             "Ret",
	Jump:            "Jump",
	Call:            "Call",
	SkipEqualImm:    "SkipEqualImm",
	SkipNotEqualImm: "SkipNotEqualImm",
	SkipEqualReg:    "SkipEqualReg",
	LoadImm:         "LoadImm",
	AddImm:          "AddImm",
	LoadReg:         "LoadReg",
	Or:              "Or",
	And:             "And",
	Xor:             "Xor",
	AddReg:          "AddReg",
	Sub:             "Sub",
	Shr:             "Shr",
	SubN:            "SubN",
	Shl:             "Shl",
	SkipNotEqualReg: "SkipNotEqualReg",
	LoadIndex:       "LoadIndex",
	JumpV0:          "JumpV0",
	Rnd:             "Rnd",
	Draw:            "Draw",
	SkipKey:         "SkipKey",
	SkipNotKey:      "SkipNotKey",
	LoadDelay:       "LoadDelay",
	WaitKey:         "WaitKey",
	SetDelay:        "SetDelay",
	SetSound:        "SetSound",
	AddIndex:        "AddIndex",
	LoadFont:        "LoadFont",
	StoreBCD:        "StoreBCD",
	StoreRegs:       "StoreRegs",
	LoadRegs:        "LoadRegs",
}

// String returns the Go name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Descriptor returns the reference instruction descriptor of the kind,
// nil for Unknown.
func (k Kind) Descriptor() *chip8.Instruction {
	if k >= kindCount {
		return nil
	}
	return descriptors[k]
}

// IsSkip reports whether the kind conditionally skips the next instruction.
func (k Kind) IsSkip() bool {
	desc := k.Descriptor()
	return desc != nil && chip8.SkipInstructions.Contains(desc.Name)
}

// Instruction is a decoded instruction word with its operand fields extracted.
// Only the fields used by the kind are meaningful.
type Instruction struct {
	Kind Kind
	Word uint16 // raw instruction word

	X   uint8  // register index, bits 8-11
	Y   uint8  // register index, bits 4-7
	N   uint8  // 4-bit immediate, bits 0-3
	KK  uint8  // 8-bit immediate, bits 0-7
	NNN uint16 // 12-bit address, bits 0-11
}

// Fetch combines two memory bytes into an instruction word.
func Fetch(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// Decode translates an instruction word into an instruction.
func Decode(word uint16) Instruction {
	ins := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		KK:   uint8(word),
		NNN:  word & 0x0FFF,
	}
	ins.Kind = decodeKind(word, ins.N, ins.KK)
	return ins
}

func decodeKind(word uint16, n, kk uint8) Kind {
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00E0:
			return Cls
		case 0x00EE:
			return Ret
		}
	case 0x1:
		return Jump
	case 0x2:
		return Call
	case 0x3:
		return SkipEqualImm
	case 0x4:
		return SkipNotEqualImm
	case 0x5:
		if n == 0 {
			return SkipEqualReg
		}
	case 0x6:
		return LoadImm
	case 0x7:
		return AddImm
	case 0x8:
		return decodeALU(n)
	case 0x9:
		if n == 0 {
			return SkipNotEqualReg
		}
	case 0xA:
		return LoadIndex
	case 0xB:
		return JumpV0
	case 0xC:
		return Rnd
	case 0xD:
		return Draw
	case 0xE:
		switch kk {
		case 0x9E:
			return SkipKey
		case 0xA1:
			return SkipNotKey
		}
	case 0xF:
		return decodeMisc(kk)
	}
	return Unknown
}

func decodeALU(n uint8) Kind {
	switch n {
	case 0x0:
		return LoadReg
	case 0x1:
		return Or
	case 0x2:
		return And
	case 0x3:
		return Xor
	case 0x4:
		return AddReg
	case 0x5:
		return Sub
	case 0x6:
		return Shr
	case 0x7:
		return SubN
	case 0xE:
		return Shl
	default:
		return Unknown
	}
}

func decodeMisc(kk uint8) Kind {
	switch kk {
	case 0x07:
		return LoadDelay
	case 0x0A:
		return WaitKey
	case 0x15:
		return SetDelay
	case 0x18:
		return SetSound
	case 0x1E:
		return AddIndex
	case 0x29:
		return LoadFont
	case 0x33:
		return StoreBCD
	case 0x55:
		return StoreRegs
	case 0x65:
		return LoadRegs
	default:
		return Unknown
	}
}
