package window

import (
	"context"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/screenshot"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestKeyMap(t *testing.T) {
	keys := KeyMap(keypad.DefaultLayout)
	assert.Len(t, keys, keypad.Count)

	tests := []struct {
		key  ebiten.Key
		code uint8
	}{
		{ebiten.KeyDigit1, 0x1},
		{ebiten.KeyDigit4, 0xC},
		{ebiten.KeyQ, 0x4},
		{ebiten.KeyX, 0x0},
		{ebiten.KeyV, 0xF},
	}
	for _, tt := range tests {
		code, ok := keys[tt.key]
		assert.True(t, ok, "key %s", tt.key)
		assert.Equal(t, tt.code, code)
	}

	keys = KeyMap(keypad.Layout{'#': 1, 'K': 2})
	assert.Len(t, keys, 1)
	assert.Equal(t, uint8(2), keys[ebiten.KeyK])
}

func TestFillPixels(t *testing.T) {
	disp := display.New()
	disp.DrawSprite(1, 0, []byte{0x80})

	pixels := make([]byte, display.Width*display.Height*4)
	FillPixels(pixels, disp)

	assert.Equal(t, []byte{screenshot.Off.R, screenshot.Off.G, screenshot.Off.B, 0xFF}, pixels[0:4])
	assert.Equal(t, []byte{screenshot.On.R, screenshot.On.G, screenshot.On.B, 0xFF}, pixels[4:8])
}

func TestNew(t *testing.T) {
	g := New(context.Background(), log.NewTestLogger(t), nil, Options{})
	assert.Equal(t, screenshot.DefaultScale, g.opts.Scale)
	assert.Equal(t, "chip8vm", g.opts.Title)
	assert.NotNil(t, g.face)
	assert.Equal(t, 11.0, g.face.Metrics().HAscent)
}
