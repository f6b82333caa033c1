package cpu

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/memory"
)

const (
	// FontStart is the address of the built-in hexadecimal font.
	FontStart = 0x000
	// GlyphSize is the number of bytes of one font glyph.
	GlyphSize = 5
)

// Font contains the sprites for the hexadecimal digits 0-F, 4x5 pixels each.
var Font = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// InstallFont copies the font into the interpreter area of the memory.
func InstallFont(mem *memory.Memory) error {
	if err := mem.Load(FontStart, Font[:]); err != nil {
		return fmt.Errorf("installing font: %w", err)
	}
	return nil
}

// glyphAddress returns the address of the font glyph for the low nibble of digit.
func glyphAddress(digit byte) uint16 {
	return FontStart + uint16(digit&0x0F)*GlyphSize
}
