package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/screenshot"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// LD I,$000; DRW V0,V0,$5; JP $204
var testProgram = []byte{0xA0, 0x00, 0xD0, 0x05, 0x12, 0x04}

func testOptions(t *testing.T) options.Program {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, testProgram, 0o600))

	var opts options.Program
	opts.Input = path
	opts.Frontend = options.FrontendHeadless
	opts.Frames = 3
	opts.Speed = 10
	opts.Scale = 2
	opts.Seed = 1
	opts.Quiet = true
	return opts
}

func expectedChecksum() string {
	disp := display.New()
	disp.DrawSprite(0, 0, cpu.Font[:cpu.GlyphSize])
	return screenshot.FormatChecksum(screenshot.Checksum(disp))
}

func TestNew(t *testing.T) {
	p := New(log.NewTestLogger(t))
	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.detector)
	assert.NotNil(t, p.loader)
}

func TestPipeline_Disassemble(t *testing.T) {
	color.NoColor = true
	opts := testOptions(t)
	opts.Disasm = true

	buf := &bytes.Buffer{}
	assert.NoError(t, New(log.NewTestLogger(t)).Execute(context.Background(), opts, buf))

	output := buf.String()
	assert.Contains(t, output, "; CHIP-8 program of 6 bytes")
	assert.Contains(t, output, "LD I, $000")
	assert.Contains(t, output, "DRW V0, V0, $5")
	assert.Contains(t, output, "_label_0204:")
	assert.Contains(t, output, "JP _label_0204")
	assert.Contains(t, output, "; $0200  A0 00")
}

func TestPipeline_Headless(t *testing.T) {
	tests := []struct {
		name    string
		expect  string
		wantErr error
	}{
		{"no expectation", "", nil},
		{"matching checksum", expectedChecksum(), nil},
		{"mismatching checksum", "00000000", ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			opts.Expect = tt.expect
			opts.PNG = filepath.Join(t.TempDir(), "display.png")

			err := New(log.NewTestLogger(t)).Execute(context.Background(), opts, &bytes.Buffer{})
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			assert.NoError(t, err)

			_, err = os.Stat(opts.PNG)
			assert.NoError(t, err)
		})
	}
}

func TestPipeline_Script(t *testing.T) {
	opts := testOptions(t)
	opts.Frames = 1000
	opts.Script = filepath.Join(t.TempDir(), "stop.lua")
	opts.Expect = expectedChecksum()
	source := "function on_frame(n) if n == 2 and pixel(0, 0) == 1 then stop() end end"
	assert.NoError(t, os.WriteFile(opts.Script, []byte(source), 0o600))

	assert.NoError(t, New(log.NewTestLogger(t)).Execute(context.Background(), opts, &bytes.Buffer{}))

	opts.Script = filepath.Join(t.TempDir(), "missing.lua")
	assert.Error(t, New(log.NewTestLogger(t)).Execute(context.Background(), opts, &bytes.Buffer{}))
}

func TestPipeline_Trace(t *testing.T) {
	color.NoColor = true
	opts := testOptions(t)
	opts.Frames = 1
	opts.Trace = true

	buf := &bytes.Buffer{}
	assert.NoError(t, New(log.NewTestLogger(t)).Execute(context.Background(), opts, buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, opts.Speed)
	assert.True(t, strings.HasPrefix(lines[0], "$0200  A0 00  LD I, $000"))
	assert.True(t, strings.HasPrefix(lines[1], "$0202  D0 05  DRW V0, V0, $5"))
}

func TestPipeline_Errors(t *testing.T) {
	p := New(log.NewTestLogger(t))

	opts := testOptions(t)
	opts.Input = filepath.Join(t.TempDir(), "missing.ch8")
	assert.Error(t, p.Execute(context.Background(), opts, &bytes.Buffer{}))

	opts = testOptions(t)
	err := p.Emulate(context.Background(), testProgram, opts, "unknown", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported frontend")

	// RET on an empty stack halts the machine
	err = p.Emulate(context.Background(), []byte{0x00, 0xEE}, opts, options.FrontendHeadless, &bytes.Buffer{})
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := testOptions(t)
	err := New(log.NewTestLogger(t)).Execute(ctx, opts, &bytes.Buffer{})
	assert.True(t, errors.Is(err, context.Canceled))
}
