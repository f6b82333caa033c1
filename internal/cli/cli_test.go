package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Program
	}{
		{
			name: "default flags",
			args: []string{"prog", "test.ch8"},
			want: options.Program{
				Parameters: options.Parameters{Input: "test.ch8"},
				Flags:      options.Flags{Frontend: options.FrontendAuto, Frames: 300, Speed: 10, Scale: 10},
			},
		},
		{
			name: "headless with checks",
			args: []string{"prog", "-f", "HEADLESS", "-frames", "60", "-expect", "0xDEADBEEF", "-png", "out.png", "test.ch8"},
			want: options.Program{
				Parameters: options.Parameters{Input: "test.ch8", PNG: "out.png", Expect: "deadbeef"},
				Flags:      options.Flags{Frontend: options.FrontendHeadless, Frames: 60, Speed: 10, Scale: 10},
			},
		},
		{
			name: "input flag and quirks",
			args: []string{"prog", "-i", "game.ch8", "-quirk-shift", "-quirk-loadstore", "-ipf", "15", "-seed", "7"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.ch8"},
				Flags:      options.Flags{Frontend: options.FrontendAuto, Frames: 300, Speed: 15, Seed: 7, Scale: 10},
				QuirkFlags: options.QuirkFlags{ShiftQuirk: true, LoadStoreQuirk: true},
			},
		},
		{
			name: "batch disassembly",
			args: []string{"prog", "-disasm", "-batch", "*.ch8"},
			want: options.Program{
				Parameters: options.Parameters{Batch: "*.ch8"},
				Flags:      options.Flags{Frontend: options.FrontendAuto, Disasm: true, Frames: 300, Speed: 10, Scale: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			got, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{"no program", []string{"prog"}, true},
		{"unknown flag", []string{"prog", "-nope", "test.ch8"}, true},
		{"flag after file", []string{"prog", "test.ch8", "-trace"}, true},
		{"two files", []string{"prog", "a.ch8", "b.ch8"}, true},
		{"unknown frontend", []string{"prog", "-f", "vga", "test.ch8"}, false},
		{"zero frames", []string{"prog", "-frames", "0", "test.ch8"}, false},
		{"batch without disasm", []string{"prog", "-batch", "*.ch8"}, false},
		{"png with window", []string{"prog", "-f", "window", "-png", "a.png", "test.ch8"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			_, err := ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usage, errors.As(err, &usageErr))
		})
	}
}

func TestValidateOptionCombinations(t *testing.T) {
	tests := []struct {
		name        string
		opts        options.Program
		expectError bool
	}{
		{
			name:        "no conflict",
			opts:        options.Program{Flags: options.Flags{Frontend: options.FrontendAuto}},
			expectError: false,
		},
		{
			name: "disasm and trace conflict",
			opts: options.Program{
				Flags: options.Flags{Disasm: true, Trace: true},
			},
			expectError: true,
		},
		{
			name: "script with headless",
			opts: options.Program{
				Parameters: options.Parameters{Script: "run.lua"},
				Flags:      options.Flags{Frontend: options.FrontendHeadless},
			},
			expectError: false,
		},
		{
			name: "script with terminal",
			opts: options.Program{
				Parameters: options.Parameters{Script: "run.lua"},
				Flags:      options.Flags{Frontend: options.FrontendTerminal},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOptionCombinations(tt.opts)
			if tt.expectError {
				assert.True(t, err != nil)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
