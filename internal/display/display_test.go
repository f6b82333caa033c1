package display

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// glyph0 is the font sprite for the digit 0.
var glyph0 = []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}

func TestDisplay_DrawOnCleared(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"origin", 0, 0},
		{"middle", 30, 12},
		{"wrap right", 62, 5},
		{"wrap bottom", 10, 30},
		{"wrap corner", 61, 29},
		{"coordinates beyond size", 64 + 3, 32 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			collision := d.DrawSprite(tt.x, tt.y, glyph0)
			assert.False(t, collision)

			lit := 0
			for row, bits := range glyph0 {
				for col := range 8 {
					want := byte(0)
					if bits&(0x80>>col) != 0 {
						want = 1
						lit++
					}
					px := (tt.x + col) % Width
					py := (tt.y + row) % Height
					assert.Equal(t, want, d.Pixel(px, py))
				}
			}
			assert.Equal(t, lit, d.Lit())
		})
	}
}

func TestDisplay_DrawTwiceCancels(t *testing.T) {
	d := New()

	assert.False(t, d.DrawSprite(60, 30, glyph0))
	assert.True(t, d.Lit() > 0)

	assert.True(t, d.DrawSprite(60, 30, glyph0))
	assert.Equal(t, 0, d.Lit())
}

func TestDisplay_PartialOverlap(t *testing.T) {
	d := New()
	d.DrawSprite(0, 0, []byte{0x80})

	// second sprite only touches the pixel right of the lit one
	assert.False(t, d.DrawSprite(1, 0, []byte{0x80}))
	// overlapping the first pixel turns it off
	assert.True(t, d.DrawSprite(0, 0, []byte{0xC0}))
	assert.Equal(t, byte(0), d.Pixel(0, 0))
	assert.Equal(t, byte(0), d.Pixel(1, 0))
}

func TestDisplay_PixelWraps(t *testing.T) {
	d := New()
	d.DrawSprite(0, 0, []byte{0x80})

	assert.Equal(t, byte(1), d.Pixel(Width, Height))
	assert.Equal(t, byte(1), d.Pixel(-Width, -Height))
	assert.Equal(t, byte(0), d.Pixel(-1, 0))
}

func TestDisplay_Clear(t *testing.T) {
	d := New()
	d.DrawSprite(5, 5, glyph0)
	d.Clear()
	assert.Equal(t, 0, d.Lit())
}

func TestDisplay_PixelsIsCopy(t *testing.T) {
	d := New()
	d.DrawSprite(0, 0, []byte{0x80})

	pixels := d.Pixels()
	assert.Len(t, pixels, Width*Height)
	assert.Equal(t, byte(1), pixels[0])

	pixels[0] = 0
	assert.Equal(t, byte(1), d.Pixel(0, 0))
}

func TestDisplay_String(t *testing.T) {
	d := New()
	d.DrawSprite(0, 0, []byte{0xA0})

	lines := strings.Split(strings.TrimSuffix(d.String(), "\n"), "\n")
	assert.Len(t, lines, Height)
	assert.True(t, strings.HasPrefix(lines[0], "#.#."))
	assert.Equal(t, strings.Repeat(".", Width), lines[1])
}
