package detector

import (
	"testing"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testEnvironment(goos string, vars map[string]string, terminal bool) Environment {
	return Environment{
		GOOS:       goos,
		Getenv:     func(key string) string { return vars[key] },
		IsTerminal: func() bool { return terminal },
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		env      Environment
		opts     options.Program
		frontend string
	}{
		{
			name:     "explicit frontend",
			env:      testEnvironment("linux", map[string]string{"DISPLAY": ":0"}, true),
			opts:     options.Program{Flags: options.Flags{Frontend: options.FrontendTerminal}},
			frontend: options.FrontendTerminal,
		},
		{
			name:     "x11 display",
			env:      testEnvironment("linux", map[string]string{"DISPLAY": ":0"}, true),
			opts:     options.Program{Flags: options.Flags{Frontend: options.FrontendAuto}},
			frontend: options.FrontendWindow,
		},
		{
			name:     "wayland display",
			env:      testEnvironment("linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, false),
			opts:     options.Program{},
			frontend: options.FrontendWindow,
		},
		{
			name:     "windows",
			env:      testEnvironment("windows", nil, false),
			opts:     options.Program{},
			frontend: options.FrontendWindow,
		},
		{
			name:     "ssh session",
			env:      testEnvironment("linux", nil, true),
			opts:     options.Program{},
			frontend: options.FrontendTerminal,
		},
		{
			name:     "pipe",
			env:      testEnvironment("linux", nil, false),
			opts:     options.Program{},
			frontend: options.FrontendHeadless,
		},
		{
			name:     "png output",
			env:      testEnvironment("darwin", nil, true),
			opts:     options.Program{Parameters: options.Parameters{PNG: "out.png"}},
			frontend: options.FrontendHeadless,
		},
		{
			name:     "script",
			env:      testEnvironment("linux", map[string]string{"DISPLAY": ":0"}, true),
			opts:     options.Program{Parameters: options.Parameters{Script: "test.lua"}},
			frontend: options.FrontendHeadless,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(log.NewTestLogger(t), tt.env)
			assert.Equal(t, tt.frontend, d.Detect(tt.opts))
		})
	}
}

func TestDetectSystem(t *testing.T) {
	d := New(log.NewTestLogger(t), Environment{})

	tests := []struct {
		name       string
		filename   string
		wantSystem arch.System
	}{
		{
			name:       ".ch8 extension",
			filename:   "pong.ch8",
			wantSystem: arch.CHIP8System,
		},
		{
			name:       ".rom extension",
			filename:   "game.rom",
			wantSystem: arch.CHIP8System,
		},
		{
			name:       "no extension",
			filename:   "game",
			wantSystem: arch.CHIP8System,
		},
		{
			name:       ".NES extension (uppercase)",
			filename:   "ZELDA.NES",
			wantSystem: arch.NES,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSystem, d.DetectSystem(tt.filename))
		})
	}
}
