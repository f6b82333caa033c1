// Package disasm implements a CHIP-8 disassembler that follows the execution
// flow of a program to separate code from data.
package disasm

import (
	"context"
	"fmt"

	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/chip8vm/internal/program"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const startLabel = "Start"

// Disasm implements a disassembler.
type Disasm struct {
	logger *log.Logger
	prog   *program.Program

	instructions       map[uint16]opcode.Instruction // decoded instructions by address
	references         map[uint16][]uint16           // destination address to referencing instructions
	branchDestinations set.Set[uint16]               // set of all addresses that are branched to or referenced

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
	offsetsParsed       set.Set[uint16]
}

// New creates a new disassembler for a program that is loaded at memory.ProgramStart.
func New(logger *log.Logger, data []byte) *Disasm {
	return &Disasm{
		logger:              logger,
		prog:                program.New(data, memory.ProgramStart),
		instructions:        map[uint16]opcode.Instruction{},
		references:          map[uint16][]uint16{},
		branchDestinations:  set.New[uint16](),
		offsetsToParseAdded: set.New[uint16](),
		offsetsParsed:       set.New[uint16](),
	}
}

// Process disassembles the program.
func (dis *Disasm) Process(ctx context.Context) (*program.Program, error) {
	if len(dis.prog.Offsets) == 0 {
		return dis.prog, nil
	}

	dis.prog.Offsets[0].Label = startLabel
	dis.AddAddressToParse(memory.ProgramStart, 0, false)

	if err := dis.followExecutionFlow(ctx); err != nil {
		return nil, err
	}
	dis.processJumpDestinations()
	return dis.prog, nil
}

// AddAddressToParse queues an address for parsing. A non zero fromAddress
// records the instruction referencing the address for label generation.
func (dis *Disasm) AddAddressToParse(address, fromAddress uint16, isReference bool) {
	offsetInfo := dis.prog.OffsetInfo(address)
	if offsetInfo == nil {
		dis.logger.Debug("Address outside of program",
			log.Hex("address", address),
			log.Hex("from", fromAddress))
		return
	}

	if isReference {
		dis.branchDestinations.Add(address)
		dis.references[address] = append(dis.references[address], fromAddress)
	}

	if dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("following execution flow: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		if dis.offsetsParsed.Contains(address) {
			continue
		}
		dis.offsetsParsed.Add(address)

		dis.processOffset(address)
	}
	return nil
}

func (dis *Disasm) processOffset(address uint16) {
	offsetInfo := dis.prog.OffsetInfo(address)
	nextInfo := dis.prog.OffsetInfo(address + 1)
	if nextInfo == nil {
		dis.logger.Debug("Instruction exceeds program end", log.Hex("address", address))
		return
	}
	if offsetInfo.IsType(program.CodeOffset) || nextInfo.IsType(program.CodeOffset) {
		// overlaps an instruction that was already decoded
		return
	}

	word := opcode.Fetch(offsetInfo.Data[0], nextInfo.Data[0])
	ins := opcode.Decode(word)
	dis.instructions[address] = ins

	offsetInfo.Data = []byte{offsetInfo.Data[0], nextInfo.Data[0]}
	nextInfo.Data = nil
	offsetInfo.SetType(program.CodeOffset)
	nextInfo.SetType(program.CodeOffset)

	if ins.Kind == opcode.Unknown {
		offsetInfo.Code = fmt.Sprintf(".word $%04X", word)
		offsetInfo.Comment = "unknown opcode"
	} else {
		offsetInfo.Code = ins.String()
	}

	dis.handleControlFlow(address, ins)
}

func (dis *Disasm) handleControlFlow(address uint16, ins opcode.Instruction) {
	next := address + opcode.Size

	switch {
	case ins.Kind == opcode.Ret:

	case ins.Kind == opcode.Jump, ins.Kind == opcode.JumpV0:
		dis.addTarget(address, ins, program.JumpDestination)

	case ins.Kind == opcode.Call:
		dis.addTarget(address, ins, program.CallDestination)
		dis.AddAddressToParse(next, address, false)

	case ins.Kind.IsSkip():
		dis.AddAddressToParse(next, address, false)
		dis.AddAddressToParse(next+opcode.Size, address, false)

	case ins.Kind == opcode.LoadIndex:
		dis.addDataReference(address, ins)
		dis.AddAddressToParse(next, address, false)

	default:
		dis.AddAddressToParse(next, address, false)
	}
}

func (dis *Disasm) addTarget(address uint16, ins opcode.Instruction, typ program.OffsetType) {
	target, _ := ins.Target()
	targetInfo := dis.prog.OffsetInfo(target)
	if targetInfo == nil {
		return
	}
	targetInfo.SetType(typ)
	dis.AddAddressToParse(target, address, true)
}

func (dis *Disasm) addDataReference(address uint16, ins opcode.Instruction) {
	target, _ := ins.Target()
	targetInfo := dis.prog.OffsetInfo(target)
	if targetInfo == nil {
		return
	}
	targetInfo.SetType(program.DataOffset)
	dis.branchDestinations.Add(target)
	dis.references[target] = append(dis.references[target], address)
}
