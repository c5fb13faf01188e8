package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutUint16Uint16RoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16(buf, 0x1234)
	assert.Equal(t, []byte{0x34, 0x12}, buf)
	assert.EqualValues(t, 0x1234, Uint16(buf))
}

func TestPutUint32Uint32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32(buf, 0x12345678)
	assert.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, buf)
	assert.EqualValues(t, 0x12345678, Uint32(buf))
}

func TestCursorReadSequence(t *testing.T) {
	c := NewCursor([]byte{0xAA, 0x34, 0x12, 0x01, 0x02, 0x03})
	b, ok := c.Byte()
	require.True(t, ok)
	assert.EqualValues(t, 0xAA, b)

	u16, ok := c.Uint16()
	require.True(t, ok)
	assert.EqualValues(t, 0x1234, u16)

	u24, ok := c.Uint24()
	require.True(t, ok)
	assert.EqualValues(t, 0x030201, u24)

	assert.Zero(t, c.Len())
}

func TestCursorAdvancePastEndFails(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	_, ok := c.Advance(3)
	assert.False(t, ok)
	// cursor position must not move on failure
	assert.Equal(t, 0, c.Pos())
}

func TestCursorWriteSequence(t *testing.T) {
	buf := make([]byte, 6)
	c := NewCursor(buf)
	require.True(t, c.PutByte(0xAA))
	require.True(t, c.PutUint16(0x1234))
	require.True(t, c.PutUint24(0x030201))
	assert.Equal(t, []byte{0xAA, 0x34, 0x12, 0x01, 0x02, 0x03}, buf)
}

func TestCursorPutBytesTooLongFails(t *testing.T) {
	buf := make([]byte, 2)
	c := NewCursor(buf)
	assert.False(t, c.PutBytes([]byte{1, 2, 3}))
}
