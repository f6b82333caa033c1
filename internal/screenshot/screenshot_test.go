package screenshot

import (
	"bytes"
	"hash/crc32"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/retrogolib/assert"
)

func testDisplay() *display.Display {
	disp := display.New()
	disp.DrawSprite(0, 0, []byte{0x80})
	disp.DrawSprite(63, 31, []byte{0x80})
	return disp
}

func TestImage(t *testing.T) {
	tests := []struct {
		name  string
		scale int
		size  int
	}{
		{"unscaled", 1, 1},
		{"scaled", 4, 4},
		{"default scale", 0, DefaultScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := Image(testDisplay(), tt.scale)
			bounds := img.Bounds()
			assert.Equal(t, display.Width*tt.size, bounds.Dx())
			assert.Equal(t, display.Height*tt.size, bounds.Dy())

			assert.Equal(t, On, img.RGBAAt(0, 0))
			assert.Equal(t, On, img.RGBAAt(tt.size-1, tt.size-1))
			assert.Equal(t, Off, img.RGBAAt(tt.size, 0))
			assert.Equal(t, On, img.RGBAAt(bounds.Dx()-1, bounds.Dy()-1))
		})
	}
}

func TestWritePNG(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.NoError(t, WritePNG(buf, testDisplay(), 2))

	img, err := png.Decode(buf)
	assert.NoError(t, err)
	assert.Equal(t, display.Width*2, img.Bounds().Dx())
	assert.Equal(t, display.Height*2, img.Bounds().Dy())
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.png")
	assert.NoError(t, SavePNG(path, testDisplay(), 3))

	err := SavePNG(filepath.Join(t.TempDir(), "missing", "display.png"), testDisplay(), 3)
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	disp := testDisplay()
	assert.Equal(t, crc32.ChecksumIEEE(disp.Pixels()), Checksum(disp))

	empty := display.New()
	assert.False(t, Checksum(empty) == Checksum(disp))
	assert.Equal(t, "0000002a", FormatChecksum(42))
}
