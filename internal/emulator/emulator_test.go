package emulator

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/chip8vm/internal/cpu"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/chip8vm/internal/opcode"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func words(program ...uint16) []byte {
	data := make([]byte, 0, len(program)*2)
	for _, word := range program {
		data = append(data, byte(word>>8), byte(word))
	}
	return data
}

func newTestMachine(t *testing.T, cfg Config, program ...uint16) *Machine {
	t.Helper()
	m := New(cfg, log.NewTestLogger(t))
	assert.NoError(t, m.Load(words(program...)))
	return m
}

func TestMachine_Load(t *testing.T) {
	m := New(Config{}, log.NewTestLogger(t))

	assert.True(t, errors.Is(m.Load(nil), ErrNoProgram))
	assert.True(t, errors.Is(m.Load(make([]byte, memory.MaxProgramSize+1)), memory.ErrOutOfBounds))

	program := words(0x6105, 0x1202)
	assert.NoError(t, m.Load(program))
	program[0] = 0xFF

	b, err := m.Memory().Read(memory.ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x61), b)

	b, err = m.Memory().Read(cpu.FontStart)
	assert.NoError(t, err)
	assert.Equal(t, cpu.Font[0], b)
}

func TestMachine_StepWithoutProgram(t *testing.T) {
	m := New(Config{}, log.NewTestLogger(t))
	_, err := m.Step(0)
	assert.True(t, errors.Is(err, ErrNoProgram))
}

func TestMachine_RunFrame(t *testing.T) {
	// LD V0,$05; LD DT,V0; LD I,$000; DRW V0,V0,$5; JP $208
	m := newTestMachine(t, Config{InstructionsPerFrame: 6}, 0x6005, 0xF015, 0xA000, 0xD005, 0x1208)

	frame, err := m.RunFrame(0)
	assert.NoError(t, err)
	assert.Equal(t, 6, frame.Steps)
	assert.True(t, frame.Draw)
	assert.False(t, frame.Clear)
	assert.Equal(t, byte(4), m.CPU().Delay)
	assert.Equal(t, uint64(1), m.Frames())

	frame, err = m.RunFrame(0)
	assert.NoError(t, err)
	assert.False(t, frame.Draw)
	assert.Equal(t, byte(3), m.CPU().Delay)
}

func TestMachine_TimersIndependentOfSpeed(t *testing.T) {
	for _, ipf := range []int{1, 10, 50} {
		// LD V0,$3C; LD DT,V0; JP $204
		m := newTestMachine(t, Config{InstructionsPerFrame: ipf}, 0x603C, 0xF015, 0x1204)
		for range 2 {
			_, err := m.Step(0)
			assert.NoError(t, err)
		}

		for range 30 {
			_, err := m.RunFrame(0)
			assert.NoError(t, err)
		}
		assert.Equal(t, byte(30), m.CPU().Delay)
	}
}

func TestMachine_Halt(t *testing.T) {
	m := newTestMachine(t, Config{InstructionsPerFrame: 4}, 0x00EE)

	_, err := m.RunFrame(0)
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
	assert.True(t, errors.Is(m.Halted(), cpu.ErrStackUnderflow))

	_, err = m.Step(0)
	assert.True(t, errors.Is(err, ErrHalted))
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))

	assert.NoError(t, m.Reset())
	assert.NoError(t, m.Halted())
	assert.Equal(t, uint16(memory.ProgramStart), m.CPU().PC)
}

func TestMachine_Reset(t *testing.T) {
	m := newTestMachine(t, Config{Seed: 3}, 0xA000, 0xD005, 0x6AFF, 0x1206)
	_, err := m.RunFrame(0)
	assert.NoError(t, err)
	assert.True(t, m.Display().Lit() > 0)

	assert.NoError(t, m.Reset())
	assert.Equal(t, 0, m.Display().Lit())
	assert.Equal(t, byte(0), m.CPU().V[0xA])
	assert.Equal(t, uint64(0), m.Frames())
}

type recordingTracer struct {
	pcs []uint16
}

func (r *recordingTracer) Trace(state *cpu.State, _ opcode.Instruction) {
	r.pcs = append(r.pcs, state.PC)
}

func TestMachine_Tracer(t *testing.T) {
	m := newTestMachine(t, Config{}, 0x6001, 0x1200)
	tracer := &recordingTracer{}
	m.SetTracer(tracer)

	for range 3 {
		_, err := m.Step(0)
		assert.NoError(t, err)
	}
	assert.Equal(t, []uint16{0x200, 0x202, 0x200}, tracer.pcs)
}

type testHost struct {
	keys    keypad.Keys
	frames  int
	draws   int
	quitAt  int
	failErr error
}

func (h *testHost) Keys() keypad.Keys {
	return h.keys
}

func (h *testHost) Present(_ *Machine, frame Frame) error {
	h.frames++
	if frame.Draw {
		h.draws++
	}
	if h.frames == h.quitAt {
		if h.failErr != nil {
			return h.failErr
		}
		return ErrQuit
	}
	return nil
}

func TestMachine_Run(t *testing.T) {
	// LD V1,K; LD I,$000; DRW V1,V1,$5; JP $206
	m := newTestMachine(t, Config{InstructionsPerFrame: 2}, 0xF10A, 0xA000, 0xD115, 0x1206)
	host := &testHost{keys: keypad.Of(3), quitAt: 5}

	assert.NoError(t, m.Run(context.Background(), host))
	assert.Equal(t, 5, host.frames)
	assert.Equal(t, 1, host.draws)
	assert.Equal(t, byte(3), m.CPU().V[1])
}

func TestMachine_RunHostError(t *testing.T) {
	m := newTestMachine(t, Config{}, 0x1200)
	errHost := errors.New("device lost")
	host := &testHost{quitAt: 2, failErr: errHost}

	assert.True(t, errors.Is(m.Run(context.Background(), host), errHost))
}

func TestMachine_RunCancel(t *testing.T) {
	m := newTestMachine(t, Config{LimitFPS: true}, 0x1200)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, errors.Is(m.Run(ctx, &testHost{}), context.Canceled))
}

func TestMachine_Independent(t *testing.T) {
	a := newTestMachine(t, Config{}, 0x6107, 0x1202)
	b := newTestMachine(t, Config{}, 0x6209, 0x1202)

	_, err := a.RunFrame(0)
	assert.NoError(t, err)
	_, err = b.RunFrame(0)
	assert.NoError(t, err)

	assert.Equal(t, byte(7), a.CPU().V[1])
	assert.Equal(t, byte(0), a.CPU().V[2])
	assert.Equal(t, byte(9), b.CPU().V[2])
	assert.Equal(t, byte(0), b.CPU().V[1])
}
