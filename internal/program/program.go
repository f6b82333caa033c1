// Package program represents a disassembled CHIP-8 program.
package program

import (
	"fmt"
	"hash/crc32"
	"strings"
)

// Offset defines the content of an offset in a program that can represent data or code.
type Offset struct {
	Address uint16 // memory address of the offset
	Data    []byte // data byte or both instruction bytes

	Type OffsetType

	Label       string // name of label or subroutine if identified as a jump or data destination
	Code        string // asm output of this instruction
	Comment     string
	BranchingTo string // label name of the jump, call or data destination of the instruction
}

// HexCodeComment returns the bytes of the offset as hex values separated by spaces.
func (o *Offset) HexCodeComment() (string, error) {
	buf := &strings.Builder{}
	for i, b := range o.Data {
		if i > 0 {
			if err := buf.WriteByte(' '); err != nil {
				return "", fmt.Errorf("writing separator: %w", err)
			}
		}
		if _, err := fmt.Fprintf(buf, "%02X", b); err != nil {
			return "", fmt.Errorf("writing hex byte: %w", err)
		}
	}
	return buf.String(), nil
}

// Program defines a CHIP-8 program that contains code or data.
type Program struct {
	Offsets  []Offset // one entry per program byte, instructions occupy the first of their two entries
	Start    uint16   // memory address of the first program byte
	Checksum uint32   // CRC32 checksum of the program bytes
}

// New creates a new program with every byte initialized as unknown offset.
func New(data []byte, start uint16) *Program {
	p := &Program{
		Offsets:  make([]Offset, len(data)),
		Start:    start,
		Checksum: crc32.ChecksumIEEE(data),
	}
	for i, b := range data {
		p.Offsets[i] = Offset{
			Address: start + uint16(i),
			Data:    []byte{b},
		}
	}
	return p
}

// OffsetInfo returns the offset at the given memory address, nil if the
// address is outside of the program.
func (p *Program) OffsetInfo(address uint16) *Offset {
	if address < p.Start {
		return nil
	}
	index := int(address - p.Start)
	if index >= len(p.Offsets) {
		return nil
	}
	return &p.Offsets[index]
}

// LastNonZeroIndex returns the index after the last offset that is not a zero
// data byte and has no label. Trailing zero padding is omitted from listings.
func (p *Program) LastNonZeroIndex() int {
	for i := len(p.Offsets) - 1; i >= 0; i-- {
		offset := p.Offsets[i]
		if offset.IsType(CodeOffset) {
			return i + max(len(offset.Data), 1)
		}
		if offset.Label != "" || (len(offset.Data) > 0 && offset.Data[0] != 0) {
			return i + 1
		}
	}
	return 0
}
