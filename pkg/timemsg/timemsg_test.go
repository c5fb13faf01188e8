package timemsg

import (
	"testing"

	"github.com/cipsafety/core/pkg/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceIdentifier = seed.Identifier{
	VendorID:               0x1234,
	DeviceSerialNumber:     0x12345678,
	ConnectionSerialNumber: 0xABCD,
}

func TestTCOOBaseGoldenVector(t *testing.T) {
	cidSeeds := seed.FromCID(referenceIdentifier)

	msg := BuildTCOO(Base, cidSeeds, 0x55, 0x0102)
	assert.Equal(t, []byte{0x55, 0x02, 0x01, 0x00, 0xC7, 0x43}, msg)

	result, err := VerifyTCOO(Base, cidSeeds, msg)
	require.NoError(t, err)
	assert.EqualValues(t, 0x55, result.AckLow7)
	assert.EqualValues(t, 0x0102, result.ConsumerTimeValue)
}

func TestTCOORoundTripBothFormats(t *testing.T) {
	cidSeeds := seed.FromCID(referenceIdentifier)

	for _, format := range []Format{Base, Extended} {
		for low7 := byte(0); low7 < 128; low7 += 17 {
			msg := BuildTCOO(format, cidSeeds, low7, 0xBEEF)
			result, err := VerifyTCOO(format, cidSeeds, msg)
			require.NoError(t, err, "format %v low7 0x%02X", format, low7)
			assert.Equal(t, low7, result.AckLow7)
			assert.EqualValues(t, 0xBEEF, result.ConsumerTimeValue)
		}
	}
}

func TestTCORRRoundTripBothFormats(t *testing.T) {
	pidSeeds := seed.FromPID(referenceIdentifier)

	for _, format := range []Format{Base, Extended} {
		for low7 := byte(0); low7 < 128; low7 += 23 {
			msg := BuildTCORR(format, pidSeeds, low7, 0xCAFE)
			result, err := VerifyTCORR(format, pidSeeds, msg)
			require.NoError(t, err, "format %v low7 0x%02X", format, low7)
			assert.Equal(t, low7, result.McastLow7)
			assert.EqualValues(t, 0xCAFE, result.TimeCorrectionValue)
		}
	}
}

func TestTCOOBitFlipDetection(t *testing.T) {
	cidSeeds := seed.FromCID(referenceIdentifier)

	for _, format := range []Format{Base, Extended} {
		msg := BuildTCOO(format, cidSeeds, 0x2A, 0x1357)
		for byteIdx := range msg {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), msg...)
				mutated[byteIdx] ^= 1 << bit
				_, err := VerifyTCOO(format, cidSeeds, mutated)
				assert.Error(t, err, "format %v byte %d bit %d did not fail", format, byteIdx, bit)
			}
		}
	}
}

func TestTCORRUsesPidNotCid(t *testing.T) {
	pidSeeds := seed.FromPID(referenceIdentifier)
	otherPid := seed.FromPID(seed.Identifier{VendorID: 0x9999, DeviceSerialNumber: 1, ConnectionSerialNumber: 2})

	msg := BuildTCORR(Base, pidSeeds, 0x10, 0x2222)
	_, err := VerifyTCORR(Base, otherPid, msg)
	assert.Error(t, err)
}

func TestWireLenIsSixForBothFormats(t *testing.T) {
	assert.Equal(t, 6, Base.WireLen())
	assert.Equal(t, 6, Extended.WireLen())
}
