package datamsg

import (
	"testing"

	"github.com/cipsafety/core/pkg/modebyte"
	"github.com/cipsafety/core/pkg/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePID = seed.Identifier{
	VendorID:               0x1234,
	DeviceSerialNumber:     0x12345678,
	ConnectionSerialNumber: 0xABCD,
}

var referenceMode = modebyte.Semantic{RunIdle: true}

func TestBaseShortGoldenVector(t *testing.T) {
	seeds := seed.FromPID(referencePID)
	payload := []byte{0x55}

	msg, err := Build(BaseShort, seeds, 0, payload, referenceMode, 0x1234)
	require.NoError(t, err)

	want := []byte{0x84, 0x55, 0xAB, 0x09, 0x34, 0x12, 0x53}
	assert.Equal(t, want, msg)

	result, err := Verify(BaseShort, seeds, 0, msg)
	require.NoError(t, err)
	assert.Equal(t, payload, result.Payload)
	assert.EqualValues(t, 0x1234, result.TimeStamp)
	assert.Equal(t, referenceMode, result.Mode)
}

func TestBaseLongComplementCrossCheck(t *testing.T) {
	seeds := seed.FromPID(referencePID)
	payload := []byte{0xAA, 0x55, 0xFF, 0x00}

	msg, err := Build(BaseLong, seeds, 0, payload, referenceMode, 0x1234)
	require.NoError(t, err)

	// Mode(1) + Actual(4) + Complement(4) + ActualCRC(2) + ComplementCRC(2) + TS(2) + TsCRC(1)
	comp := msg[5:9]
	assert.Equal(t, []byte{0x55, 0xAA, 0x00, 0xFF}, comp)

	_, err = Verify(BaseLong, seeds, 0, msg)
	require.NoError(t, err)

	mutated := append([]byte(nil), msg...)
	mutated[6] ^= 0x01 // flip bit 0 of Complement[1] (index 6 = Complement byte index 1)
	_, err = Verify(BaseLong, seeds, 0, mutated)
	require.Error(t, err)
}

func TestExtendedShortRolloverChangesCrc(t *testing.T) {
	seeds := seed.FromPID(referencePID)
	payload := []byte{0x55}

	msgRC0, err := Build(ExtShort, seeds, 0, payload, referenceMode, 0x1234)
	require.NoError(t, err)
	msgRC1, err := Build(ExtShort, seeds, 1, payload, referenceMode, 0x1234)
	require.NoError(t, err)

	assert.NotEqual(t, msgRC0[len(msgRC0)-3:], msgRC1[len(msgRC1)-3:])

	_, err = Verify(ExtShort, seeds, 0, msgRC0)
	require.NoError(t, err)
	_, err = Verify(ExtShort, seeds, 1, msgRC1)
	require.NoError(t, err)

	// A message built under one rollover count must not verify under another.
	_, err = Verify(ExtShort, seeds, 1, msgRC0)
	require.Error(t, err)
}

func TestRoundTripAllFormats(t *testing.T) {
	seeds := seed.FromPID(referencePID)
	modes := []modebyte.Semantic{
		{},
		{RunIdle: true},
		{TBD: true},
		{TBD2: true},
		{RunIdle: true, TBD: true, TBD2: true},
	}

	cases := []struct {
		format  Format
		payload []byte
	}{
		{BaseShort, []byte{0x01}},
		{BaseShort, []byte{0x01, 0x02}},
		{ExtShort, []byte{0x01}},
		{ExtShort, []byte{0x01, 0x02}},
		{BaseLong, []byte{0x01, 0x02, 0x03, 0x04}},
		{BaseLong, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}},
		{ExtLong, []byte{0x01, 0x02, 0x03, 0x04}},
	}

	for _, tc := range cases {
		for _, m := range modes {
			msg, err := Build(tc.format, seeds, 7, tc.payload, m, 0xBEEF)
			require.NoError(t, err, "format %v payload %v mode %+v", tc.format, tc.payload, m)

			result, err := Verify(tc.format, seeds, 7, msg)
			require.NoError(t, err, "format %v payload %v mode %+v", tc.format, tc.payload, m)
			assert.Equal(t, tc.payload, result.Payload)
			assert.EqualValues(t, 0xBEEF, result.TimeStamp)
			assert.Equal(t, m, result.Mode)
		}
	}
}

func TestBitFlipDetectionAllFormats(t *testing.T) {
	seeds := seed.FromPID(referencePID)

	cases := []struct {
		format  Format
		payload []byte
	}{
		{BaseShort, []byte{0x01, 0x02}},
		{ExtShort, []byte{0x01, 0x02}},
		{BaseLong, []byte{0x01, 0x02, 0x03, 0x04}},
		{ExtLong, []byte{0x01, 0x02, 0x03, 0x04}},
	}

	for _, tc := range cases {
		msg, err := Build(tc.format, seeds, 3, tc.payload, referenceMode, 0x4321)
		require.NoError(t, err)

		for byteIdx := range msg {
			for bit := 0; bit < 8; bit++ {
				// The two unused Mode Byte bits are not bound by any CRC in
				// Extended Short (the message CRC masks the Mode Byte with
				// 0xE0 and the redundant-bit check covers bits 2..7 only).
				if tc.format == ExtShort && byteIdx == 0 && bit < 2 {
					continue
				}
				mutated := append([]byte(nil), msg...)
				mutated[byteIdx] ^= 1 << bit
				_, err := Verify(tc.format, seeds, 3, mutated)
				assert.Error(t, err, "format %v byte %d bit %d did not fail verification", tc.format, byteIdx, bit)
			}
		}
	}
}

func TestWireLenBoundaries(t *testing.T) {
	assert.Equal(t, 0, BaseLong.WireLen(3))
	assert.Equal(t, 0, BaseLong.WireLen(1))
	assert.Equal(t, 0, BaseLong.WireLen(251))
	assert.Equal(t, 16, BaseLong.WireLen(4))
	assert.Equal(t, 0, BaseShort.WireLen(3))
	assert.Equal(t, 7, BaseShort.WireLen(1))
	assert.Equal(t, 8, BaseShort.WireLen(2))
}
