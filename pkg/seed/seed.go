// Package seed derives the per-connection CRC seeds from a Producer or
// Consumer Identifier (PID/CID), and extends the Extended Format seed with
// the Rollover Count step that is never transmitted on the wire.
package seed

import "github.com/cipsafety/core/pkg/crc"

// Identifier is the 64-bit value that binds every safety message of a
// connection to its producer (PID) or consumer (CID): a 16-bit Vendor ID, a
// 32-bit Device Serial Number, and a 16-bit Connection Serial Number.
type Identifier struct {
	VendorID               uint16
	DeviceSerialNumber     uint32
	ConnectionSerialNumber uint16
}

// Stream serializes the identifier into its 8-byte little-endian wire
// representation — VendorID, then DeviceSerialNumber, then
// ConnectionSerialNumber, each little-endian. This stream never appears on
// the wire of a data message; it exists only to be fed into the CRC
// engines below.
func (id Identifier) Stream() [8]byte {
	var buf [8]byte
	buf[0] = byte(id.VendorID)
	buf[1] = byte(id.VendorID >> 8)
	buf[2] = byte(id.DeviceSerialNumber)
	buf[3] = byte(id.DeviceSerialNumber >> 8)
	buf[4] = byte(id.DeviceSerialNumber >> 16)
	buf[5] = byte(id.DeviceSerialNumber >> 24)
	buf[6] = byte(id.ConnectionSerialNumber)
	buf[7] = byte(id.ConnectionSerialNumber >> 8)
	return buf
}

// PIDSeeds holds every CRC seed derivable from a Producer Identifier. Base
// Short uses S1 only; Base Long uses S1 and S3; Extended uses S3 and S5.
type PIDSeeds struct {
	S1 byte
	S3 uint16
	S5 uint32
}

// CIDSeeds holds the CRC seeds derivable from a Consumer Identifier, used to
// verify Time Coordination messages.
type CIDSeeds struct {
	S3 uint16
	S5 uint32
}

// FromPID derives the PID-seed set: CRC-S1, CRC-S3 and CRC-S5 of the
// identifier's 8-byte stream, each with preset 0.
func FromPID(pid Identifier) PIDSeeds {
	stream := pid.Stream()
	return PIDSeeds{
		S1: crc.S1(stream[:], 0),
		S3: crc.S3(stream[:], 0),
		S5: crc.S5(stream[:], 0),
	}
}

// FromCID derives the CID-seed set: CRC-S3 and CRC-S5 of the identifier's
// 8-byte stream, each with preset 0.
func FromCID(cid Identifier) CIDSeeds {
	stream := cid.Stream()
	return CIDSeeds{
		S3: crc.S3(stream[:], 0),
		S5: crc.S5(stream[:], 0),
	}
}

// rolloverStream serializes a 16-bit Rollover Count as 2 little-endian
// bytes, never transmitted on the wire.
func rolloverStream(rolloverCount uint16) [2]byte {
	return [2]byte{byte(rolloverCount), byte(rolloverCount >> 8)}
}

// WithRolloverS3 carries the PID-seed CRC-S3 one more step over the 2-byte
// little-endian Rollover Count, producing the effective Extended Format
// seed for this message's Actual-data CRC.
func WithRolloverS3(pidS3 uint16, rolloverCount uint16) uint16 {
	stream := rolloverStream(rolloverCount)
	return crc.S3(stream[:], pidS3)
}

// WithRolloverS5 carries the PID-seed CRC-S5 one more step over the 2-byte
// little-endian Rollover Count, producing the effective Extended Format
// seed for this message's Complement-data CRC (Long) or whole-message CRC
// (Short).
func WithRolloverS5(pidS5 uint32, rolloverCount uint16) uint32 {
	stream := rolloverStream(rolloverCount)
	return crc.S5(stream[:], pidS5)
}
