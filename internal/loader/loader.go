// Package loader handles CHIP-8 program file loading operations.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

var (
	// ErrEmpty is returned for a program without any bytes.
	ErrEmpty = errors.New("program is empty")
	// ErrTooLarge is returned for a program that does not fit into memory.
	ErrTooLarge = errors.New("program too large")
	// ErrNESImage is returned for files that are iNES cartridge images.
	ErrNESImage = errors.New("file is an iNES cartridge image")
)

var nesMagic = []byte{'N', 'E', 'S', 0x1A}

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a program file and returns the raw program bytes.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return l.LoadFromBytes(data)
}

// LoadFromBytes validates a raw program image and returns the program bytes.
// The image is read as a headerless buffer, the same way raw binaries are
// read for disassembly.
func (l *Loader) LoadFromBytes(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if bytes.HasPrefix(data, nesMagic) {
		return nil, describeNESImage(data)
	}
	if len(data) > memory.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrTooLarge, len(data), memory.MaxProgramSize)
	}

	cart, err := cartridge.LoadBuffer(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading program buffer: %w", err)
	}
	if len(cart.PRG) < len(data) {
		return nil, fmt.Errorf("loading program buffer: got %d of %d bytes", len(cart.PRG), len(data))
	}

	// the buffer can be padded to a full bank
	program := make([]byte, len(data))
	copy(program, cart.PRG[:len(data)])
	return program, nil
}

func describeNESImage(data []byte) error {
	cart, err := cartridge.LoadFile(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNESImage, err)
	}
	return fmt.Errorf("%w: mapper %d with %d bytes PRG", ErrNESImage, cart.Mapper, len(cart.PRG))
}
