// Package display implements the CHIP-8 monochrome framebuffer.
package display

import "strings"

const (
	// Width is the number of pixel columns.
	Width = 64
	// Height is the number of pixel rows.
	Height = 32
)

// Display is a 64x32 grid of pixels stored row-major, one byte per pixel
// with the value 0 for off and 1 for on.
type Display struct {
	pixels [Width * Height]byte
}

// New returns a cleared display.
func New() *Display {
	return &Display{}
}

// Clear turns all pixels off.
func (d *Display) Clear() {
	d.pixels = [Width * Height]byte{}
}

// DrawSprite XORs the sprite rows onto the display with the top left corner
// at x,y. Each row byte holds 8 horizontal pixels, most significant bit first.
// Coordinates wrap around both edges. The returned value reports whether any
// pixel was turned from on to off.
func (d *Display) DrawSprite(x, y int, rows []byte) bool {
	collision := false
	for row, bits := range rows {
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			idx := index(x+col, y+row)
			if d.pixels[idx] == 1 {
				collision = true
			}
			d.pixels[idx] ^= 1
		}
	}
	return collision
}

// Pixel returns the pixel value at x,y using the same wraparound as drawing.
func (d *Display) Pixel(x, y int) byte {
	return d.pixels[index(x, y)]
}

// Pixels returns a copy of the framebuffer.
func (d *Display) Pixels() []byte {
	buf := make([]byte, len(d.pixels))
	copy(buf, d.pixels[:])
	return buf
}

// Lit returns the number of pixels that are on.
func (d *Display) Lit() int {
	n := 0
	for _, p := range d.pixels {
		n += int(p)
	}
	return n
}

// String renders the display as text, one line per row with '#' for lit pixels.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for y := range Height {
		for x := range Width {
			if d.pixels[y*Width+x] == 1 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func index(x, y int) int {
	x %= Width
	if x < 0 {
		x += Width
	}
	y %= Height
	if y < 0 {
		y += Height
	}
	return y*Width + x
}
