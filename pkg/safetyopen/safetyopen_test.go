package safetyopen

import (
	"testing"

	"github.com/cipsafety/core/pkg/datamsg"
	"github.com/stretchr/testify/assert"
)

func TestCPCRCIncrementalOverSlices(t *testing.T) {
	slices := ForwardOpenSlices{
		ConnectionSerialAndVendorID: []byte{0xCD, 0xAB, 0x34, 0x12},
		TimeoutThroughPathSize:      []byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A},
		ElectronicKeyAndAppPaths:    []byte{0x20, 0x04, 0x24, 0x01},
		NetworkSegmentSafety:        make([]byte, NSSLenBase),
	}
	got := CPCRC(slices, false)

	// The result is deterministic for a fixed input.
	again := CPCRC(slices, false)
	assert.Equal(t, got, again)

	// Mutating any single slice must change the CPCRC.
	mutated := slices
	mutated.ConnectionSerialAndVendorID = append([]byte(nil), slices.ConnectionSerialAndVendorID...)
	mutated.ConnectionSerialAndVendorID[0] ^= 0x01
	assert.NotEqual(t, got, CPCRC(mutated, false))
}

func TestCPCRCDiffersBaseVsExtendedOnLongerNSS(t *testing.T) {
	nss := make([]byte, NSSLenExtended)
	for i := range nss {
		nss[i] = byte(i + 1)
	}
	slices := ForwardOpenSlices{
		ConnectionSerialAndVendorID: []byte{0x01, 0x02, 0x03, 0x04},
		TimeoutThroughPathSize:      make([]byte, 13),
		ElectronicKeyAndAppPaths:    []byte{0x20, 0x04},
		NetworkSegmentSafety:        nss,
	}
	base := CPCRC(slices, false)
	extended := CPCRC(slices, true)
	assert.NotEqual(t, base, extended)
}

func TestSCCRCChangesOnMajorRevOrHwIdOrParams(t *testing.T) {
	params := []byte{0x01, 0x02, 0x03, 0x04}
	base := SCCRC(1, 0x1234, params)

	assert.NotEqual(t, base, SCCRC(2, 0x1234, params))
	assert.NotEqual(t, base, SCCRC(1, 0x1235, params))
	mutatedParams := append([]byte(nil), params...)
	mutatedParams[0] ^= 0x01
	assert.NotEqual(t, base, SCCRC(1, 0x1234, mutatedParams))
}

func TestSCIDBytesLayout(t *testing.T) {
	scid := ComputeSCID(1, 0x1234, []byte{0xAA}, 0x01020304, 0xBEEF)
	b := scid.Bytes()
	assert.Len(t, b, 10)
	assert.Equal(t, byte(0xEF), b[8])
	assert.Equal(t, byte(0xBE), b[9])
}

func TestPayloadLenSinglecastBoundaries(t *testing.T) {
	assert.Equal(t, 7, datamsg.BaseShort.WireLen(1))

	payload, ok := PayloadLen(datamsg.BaseShort, 7, false)
	assert.True(t, ok)
	assert.Equal(t, 1, payload)

	payload, ok = PayloadLen(datamsg.BaseShort, 8, false)
	assert.True(t, ok)
	assert.Equal(t, 2, payload)

	_, ok = PayloadLen(datamsg.BaseShort, 9, false)
	assert.False(t, ok)

	payload, ok = PayloadLen(datamsg.BaseLong, 16, false)
	assert.True(t, ok)
	assert.Equal(t, 4, payload)

	payload, ok = PayloadLen(datamsg.BaseLong, 508, false)
	assert.True(t, ok)
	assert.Equal(t, 250, payload)

	_, ok = PayloadLen(datamsg.BaseLong, 17, false)
	assert.False(t, ok, "odd long-format length must be rejected")

	_, ok = PayloadLen(datamsg.BaseLong, 510, false)
	assert.False(t, ok, "above max long payload must be rejected")
}

func TestPayloadLenMulticastSubtractsTimeCorrectionOverhead(t *testing.T) {
	// A multicast connection carries a 6-byte Time Correction message
	// ahead of the data message; its length must be subtracted before
	// the short/long regime match.
	wireLen := 6 + datamsg.ExtShort.WireLen(2)
	payload, ok := PayloadLen(datamsg.ExtShort, wireLen, true)
	assert.True(t, ok)
	assert.Equal(t, 2, payload)

	_, ok = PayloadLen(datamsg.ExtShort, 5, true)
	assert.False(t, ok, "shorter than the Time Correction message itself must be rejected")
}
