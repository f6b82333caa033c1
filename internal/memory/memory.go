// Package memory implements the CHIP-8 address space.
//
// The address space is 4KB, addresses 0x000-0xFFF. The first 512 bytes are
// reserved for the interpreter and hold the built-in font, programs are
// loaded at ProgramStart. Every access is range checked, an address outside
// of the address space is an error and never wraps.
package memory

import (
	"errors"
	"fmt"
)

const (
	// Size is the number of addressable bytes.
	Size = 0x1000

	// MaxAddress is the highest valid address.
	MaxAddress = Size - 1

	// ProgramStart is the address that programs are loaded to and execution starts at.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program that fits between ProgramStart and MaxAddress.
	MaxProgramSize = Size - ProgramStart
)

// ErrOutOfBounds is returned for any access outside of the address space.
var ErrOutOfBounds = errors.New("memory access out of bounds")

// Memory is a flat byte addressable store.
type Memory struct {
	data [Size]byte
}

// New returns a zeroed memory.
func New() *Memory {
	return &Memory{}
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if address > MaxAddress {
		return 0, fmt.Errorf("reading address $%04X: %w", address, ErrOutOfBounds)
	}
	return m.data[address], nil
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if address > MaxAddress {
		return fmt.Errorf("writing address $%04X: %w", address, ErrOutOfBounds)
	}
	m.data[address] = value
	return nil
}

// Load copies a block of bytes to memory starting at the given address.
// Nothing is written if the block does not fit completely.
func (m *Memory) Load(address uint16, data []byte) error {
	end := int(address) + len(data)
	if end > Size {
		return fmt.Errorf("loading %d bytes at $%04X: %w", len(data), address, ErrOutOfBounds)
	}
	copy(m.data[address:end], data)
	return nil
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() int {
	return Size
}

// Reset zeroes all bytes.
func (m *Memory) Reset() {
	m.data = [Size]byte{}
}
