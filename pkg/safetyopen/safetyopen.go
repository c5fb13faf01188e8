// Package safetyopen implements the integrity checks performed once per
// connection at SafetyOpen: the Configuration Parameter CRC (CPCRC) over a
// received Forward_Open, the Safety Configuration CRC/Identifier (SCCRC /
// SCID) over a device's configuration parameters, and the wire-length to
// payload-length mapping that both peers must agree on before any data
// message is exchanged.
package safetyopen

import (
	"github.com/cipsafety/core/pkg/crc"
	"github.com/cipsafety/core/pkg/datamsg"
	"github.com/cipsafety/core/pkg/wire"
)

// Network Segment Safety byte counts bound into the CPCRC: 32 bytes for
// Base Format, 34 for Extended Format. A longer NetworkSegmentSafety slice
// is cut to this length; a shorter one is used as given.
const (
	NSSLenBase     = 32
	NSSLenExtended = 34
)

// ForwardOpenSlices gathers the four contiguous byte slices of a received
// Forward_Open that the CPCRC is computed over, in wire order. The caller
// is responsible for slicing them correctly out of the raw request; CPCRC
// itself is total and never rejects malformed input — a wrong slice simply
// produces a CPCRC that will not match and causes SafetyOpen rejection one
// layer up.
type ForwardOpenSlices struct {
	// ConnectionSerialAndVendorID is the 2-byte Connection Serial Number
	// followed by the 2-byte Originator Vendor ID.
	ConnectionSerialAndVendorID []byte
	// TimeoutThroughPathSize is the block from Connection Timeout
	// Multiplier through Connection Path Size.
	TimeoutThroughPathSize []byte
	// ElectronicKeyAndAppPaths is the Electronic Key segment followed by
	// the application paths found in the Connection Path.
	ElectronicKeyAndAppPaths []byte
	// NetworkSegmentSafety is the Safety Segment of the Connection Path:
	// NSSLenBase bytes for Base Format, NSSLenExtended for Extended. It
	// includes the Safety Configuration CRC and Time Stamp, so the CPCRC
	// binds host and device to the same configuration.
	NetworkSegmentSafety []byte
}

// CPCRC computes the Configuration Parameter CRC over the four slices of a
// Forward_Open, in order, using CRC-S4 seeded with 0xFFFFFFFF.
func CPCRC(slices ForwardOpenSlices, extended bool) uint32 {
	c := crc.S4(slices.ConnectionSerialAndVendorID, crc.PresetS4)
	c = crc.S4(slices.TimeoutThroughPathSize, c)
	c = crc.S4(slices.ElectronicKeyAndAppPaths, c)

	nssLen := NSSLenBase
	if extended {
		nssLen = NSSLenExtended
	}
	nss := slices.NetworkSegmentSafety
	if len(nss) > nssLen {
		nss = nss[:nssLen]
	}
	return crc.S4(nss, c)
}

// SCCRC computes the Safety Configuration CRC: CRC-S4 seeded with
// 0xFFFFFFFF over {major software revision, little-endian hardware
// identifier, configuration parameters}. The preamble ensures incompatible
// firmware cannot accept a matching configuration from a previous version.
func SCCRC(majorRev byte, hardwareID uint16, params []byte) uint32 {
	hwBytes := make([]byte, 2)
	wire.PutUint16(hwBytes, hardwareID)

	data := make([]byte, 0, 3+len(params))
	data = append(data, majorRev)
	data = append(data, hwBytes...)
	data = append(data, params...)

	return crc.S4(data, crc.PresetS4)
}

// SCID is the Safety Configuration Identifier: the SCCRC plus a 6-byte
// configuration time stamp (a 4-byte time value and a 2-byte date value).
// Host and device must agree on all three to accept a SafetyOpen.
type SCID struct {
	SCCRC uint32
	Time  uint32
	Date  uint16
}

// ComputeSCID derives the SCID for a device's current configuration.
func ComputeSCID(majorRev byte, hardwareID uint16, params []byte, time uint32, date uint16) SCID {
	return SCID{SCCRC: SCCRC(majorRev, hardwareID, params), Time: time, Date: date}
}

// Bytes serializes the SCID to its 10-byte little-endian wire form:
// SCCRC(4), Time(4), Date(2).
func (s SCID) Bytes() [10]byte {
	var buf [10]byte
	wire.PutUint32(buf[0:4], s.SCCRC)
	wire.PutUint32(buf[4:8], s.Time)
	wire.PutUint16(buf[8:10], s.Date)
	return buf
}

// PayloadLen maps a wire length (and, for a multicast connection, the
// Time Correction message prefixed ahead of the data message) to the
// payload length of a data message of the given format. It returns
// ok=false if wireLen does not correspond to any valid payload length for
// format — including an odd Long-format wire length, or a length outside
// the format's short/long regime.
func PayloadLen(format datamsg.Format, wireLen int, isMulticast bool) (payloadLen int, ok bool) {
	d := wireLen
	if isMulticast {
		const tcorrOverhead = 6
		if wireLen < tcorrOverhead {
			return 0, false
		}
		d = wireLen - tcorrOverhead
	}

	return format.PayloadLenFromWireLen(d)
}
