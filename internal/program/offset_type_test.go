package program

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOffset_IsType(t *testing.T) {
	offset := &Offset{}

	offset.SetType(CodeOffset)
	assert.True(t, offset.IsType(CodeOffset))
	assert.False(t, offset.IsType(DataOffset))

	offset.SetType(DataOffset)
	assert.True(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(DataOffset))
}

func TestOffset_SetType(t *testing.T) {
	offset := &Offset{}

	assert.False(t, offset.IsType(CodeOffset))
	offset.SetType(CodeOffset)
	assert.True(t, offset.IsType(CodeOffset))

	offset.SetType(DataOffset)
	assert.True(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(DataOffset))
}

func TestOffset_ClearType(t *testing.T) {
	offset := &Offset{}
	offset.SetType(CodeOffset)
	offset.SetType(DataOffset)

	assert.True(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(DataOffset))

	offset.ClearType(CodeOffset)
	assert.False(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(DataOffset))

	offset.ClearType(DataOffset)
	assert.False(t, offset.IsType(CodeOffset))
	assert.False(t, offset.IsType(DataOffset))
}

func TestOffset_HexCodeComment(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "single byte",
			data:     []byte{0x00},
			expected: "00",
		},
		{
			name:     "two bytes with high value",
			data:     []byte{0x6F, 0xFF},
			expected: "6F FF",
		},
		{
			name:     "instruction",
			data:     []byte{0xA2, 0xF0},
			expected: "A2 F0",
		},
		{
			name:     "empty data",
			data:     []byte{},
			expected: "",
		},
		{
			name:     "multiple bytes with different values",
			data:     []byte{0x00, 0x01, 0xFE, 0xFF},
			expected: "00 01 FE FF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := &Offset{
				Data: tt.data,
			}
			comment, err := offset.HexCodeComment()
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, comment)
		})
	}
}

func TestProgram_OffsetInfo(t *testing.T) {
	p := New([]byte{0x12, 0x00, 0xAB}, 0x200)

	assert.Len(t, p.Offsets, 3)
	assert.Nil(t, p.OffsetInfo(0x1FF))
	assert.Nil(t, p.OffsetInfo(0x203))

	offset := p.OffsetInfo(0x202)
	assert.NotNil(t, offset)
	assert.Equal(t, uint16(0x202), offset.Address)
	assert.Equal(t, []byte{0xAB}, offset.Data)
}

func TestProgram_LastNonZeroIndex(t *testing.T) {
	p := New([]byte{0x12, 0x00, 0x00, 0x07, 0x00, 0x00}, 0x200)
	assert.Equal(t, 4, p.LastNonZeroIndex())

	p.Offsets[5].Label = "_data_0205"
	assert.Equal(t, 6, p.LastNonZeroIndex())

	p = New([]byte{0x00, 0x00}, 0x200)
	assert.Equal(t, 0, p.LastNonZeroIndex())
}

func TestProgram_LastNonZeroIndexCode(t *testing.T) {
	p := New([]byte{0x00, 0xE0, 0x00, 0x00}, 0x200)
	p.Offsets[0].Data = []byte{0x00, 0xE0}
	p.Offsets[0].SetType(CodeOffset)
	p.Offsets[1].Data = nil
	p.Offsets[1].SetType(CodeOffset)

	assert.Equal(t, 2, p.LastNonZeroIndex())
}
