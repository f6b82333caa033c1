// Package screenshot exports the display as a scaled PNG image and computes
// display checksums for regression checks.
package screenshot

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/display"
	"golang.org/x/image/draw"
)

// DefaultScale is the pixel size used for a scale that is not positive.
const DefaultScale = 10

var (
	// On is the color of a lit pixel.
	On = color.RGBA{R: 0xE0, G: 0xF8, B: 0xD0, A: 0xFF}
	// Off is the color of a dark pixel.
	Off = color.RGBA{R: 0x08, G: 0x18, B: 0x20, A: 0xFF}
)

// Image renders the display with every pixel scaled to a square of the given size.
func Image(disp *display.Display, scale int) *image.RGBA {
	if scale <= 0 {
		scale = DefaultScale
	}

	src := image.NewRGBA(image.Rect(0, 0, display.Width, display.Height))
	for y := range display.Height {
		for x := range display.Width {
			c := Off
			if disp.Pixel(x, y) != 0 {
				c = On
			}
			src.SetRGBA(x, y, c)
		}
	}
	if scale == 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, display.Width*scale, display.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG encodes the scaled display as PNG.
func WritePNG(w io.Writer, disp *display.Display, scale int) error {
	if err := png.Encode(w, Image(disp, scale)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// SavePNG writes the scaled display to a PNG file.
func SavePNG(path string, disp *display.Display, scale int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	if err := WritePNG(file, disp, scale); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	return nil
}

// Checksum returns the CRC32 of the display pixel buffer.
func Checksum(disp *display.Display) uint32 {
	return crc32.ChecksumIEEE(disp.Pixels())
}

// FormatChecksum formats a checksum the way it is accepted by -expect.
func FormatChecksum(sum uint32) string {
	return fmt.Sprintf("%08x", sum)
}
