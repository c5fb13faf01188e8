package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var referencePID = Identifier{
	VendorID:               0x1234,
	DeviceSerialNumber:     0x12345678,
	ConnectionSerialNumber: 0xABCD,
}

func TestStreamLayout(t *testing.T) {
	assert.Equal(t, [8]byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xCD, 0xAB}, referencePID.Stream())
}

func TestFromPIDReferenceVector(t *testing.T) {
	seeds := FromPID(referencePID)
	assert.EqualValues(t, 0xf3, seeds.S1)
	assert.EqualValues(t, 0x149c, seeds.S3)
	assert.EqualValues(t, 0xe2a92b, seeds.S5)
}

func TestFromCIDMatchesFromPIDForSameIdentifierBits(t *testing.T) {
	cidSeeds := FromCID(referencePID)
	pidSeeds := FromPID(referencePID)
	assert.Equal(t, pidSeeds.S3, cidSeeds.S3)
	assert.Equal(t, pidSeeds.S5, cidSeeds.S5)
}

func TestSeedBindingDiffersOnAnyFieldChange(t *testing.T) {
	base := FromPID(referencePID)

	mutations := []Identifier{
		{VendorID: referencePID.VendorID + 1, DeviceSerialNumber: referencePID.DeviceSerialNumber, ConnectionSerialNumber: referencePID.ConnectionSerialNumber},
		{VendorID: referencePID.VendorID, DeviceSerialNumber: referencePID.DeviceSerialNumber + 1, ConnectionSerialNumber: referencePID.ConnectionSerialNumber},
		{VendorID: referencePID.VendorID, DeviceSerialNumber: referencePID.DeviceSerialNumber, ConnectionSerialNumber: referencePID.ConnectionSerialNumber + 1},
	}

	for _, m := range mutations {
		other := FromPID(m)
		differs := other.S1 != base.S1 || other.S3 != base.S3 || other.S5 != base.S5
		assert.True(t, differs, "mutated identifier %+v produced identical seeds", m)
	}
}

func TestRolloverCountChangesSeed(t *testing.T) {
	seeds := FromPID(referencePID)

	s3Zero := WithRolloverS3(seeds.S3, 0)
	s3One := WithRolloverS3(seeds.S3, 1)
	assert.NotEqual(t, s3Zero, s3One)

	s5Zero := WithRolloverS5(seeds.S5, 0)
	s5One := WithRolloverS5(seeds.S5, 1)
	assert.NotEqual(t, s5Zero, s5One)
}
