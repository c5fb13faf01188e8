// Package modebyte implements the Mode Byte redundant-bit codec and the
// Ack_Byte/Mcast_Byte parity and redundant-byte codec shared by the
// data-message and time-message formats.
package modebyte

// Semantic holds the three producer-supplied bits of a Mode Byte; the codec
// derives the three redundant bits from these.
type Semantic struct {
	RunIdle bool
	TBD2    bool
	TBD     bool
}

// Encode lays out a Mode Byte from bit 7 to bit 0 as:
// Run/Idle, TBD_2_Bit, TBD_Bit, N_Run/Idle, TBD_2_Bit_Copy, N_TBD_Bit, 0, 0.
// The redundant bits are the complement/copy of the non-redundant ones.
func Encode(s Semantic) byte {
	var b byte
	if s.RunIdle {
		b |= 1 << 7
	}
	if s.TBD2 {
		b |= 1 << 6
	}
	if s.TBD {
		b |= 1 << 5
	}
	// Mode_Byte = (Mode_Byte & 0xE3) | (((Mode_Byte >> 3) & 0x1C) XOR 0x14)
	// with only the three actual bits set so far, this derives N_Run/Idle,
	// TBD_2_Copy and N_TBD from them.
	return (b & 0xE3) | (((b >> 3) & 0x1C) ^ 0x14)
}

// CheckRedundantBits verifies the Mode Byte invariant:
// Run/Idle == !N_Run/Idle, TBD_2 == TBD_2_Copy, TBD == !N_TBD, expressed as
// ((b>>5)&0x07) XOR ((b>>2)&0x07) == 0x05.
func CheckRedundantBits(b byte) bool {
	aBits := (b >> 5) & 0x07
	nBits := (b >> 2) & 0x07
	return (aBits ^ nBits) == 0x05
}

// Decode extracts the three semantic bits from a Mode Byte without checking
// the redundant-bit invariant; callers must call CheckRedundantBits first.
func Decode(b byte) Semantic {
	return Semantic{
		RunIdle: b&(1<<7) != 0,
		TBD2:    b&(1<<6) != 0,
		TBD:     b&(1<<5) != 0,
	}
}

// ActualMask isolates the three non-redundant "actual" bits of a Mode Byte
// (Run/Idle, TBD_2, TBD) for CRCs that bind Actual Data.
func ActualMask(b byte) byte {
	return b & 0xE0
}

// ComplementMaskBaseFormat inverts the byte and keeps bits 7..5, i.e. the
// complemented Run/Idle, TBD_2 and TBD bits, for Base Format CRCs that bind
// Complement Data.
func ComplementMaskBaseFormat(b byte) byte {
	return (b ^ 0xFF) & 0xE0
}

// ComplementMaskExtendedLong isolates the low-nibble redundant bits used by
// Extended Long's Complement-data CRC.
func ComplementMaskExtendedLong(b byte) byte {
	return b & 0x1F
}

// TimeStampMask isolates the three redundant bits in the low nibble
// (N_Run/Idle, TBD_2_Copy, N_TBD) used by the Base Format time-stamp CRC.
// This is intentionally asymmetric with ActualMask: the time-stamp CRC
// binds the redundant copies, the actual-data CRC binds the originals.
func TimeStampMask(b byte) byte {
	return b & 0x1F
}

// parityTable is the 128-entry even-parity lookup table for the
// Ack_Byte/Mcast_Byte bits 0..6, as published in the CIP Networks Library
// Volume 5. Bit 7 of each entry is the even parity over bits 0..6.
var parityTable = [128]byte{
	0x00, 0x81, 0x82, 0x03, 0x84, 0x05, 0x06, 0x87,
	0x88, 0x09, 0x0A, 0x8B, 0x0C, 0x8D, 0x8E, 0x0F,
	0x90, 0x11, 0x12, 0x93, 0x14, 0x95, 0x96, 0x17,
	0x18, 0x99, 0x9A, 0x1B, 0x9C, 0x1D, 0x1E, 0x9F,
	0xA0, 0x21, 0x22, 0xA3, 0x24, 0xA5, 0xA6, 0x27,
	0x28, 0xA9, 0xAA, 0x2B, 0xAC, 0x2D, 0x2E, 0xAF,
	0x30, 0xB1, 0xB2, 0x33, 0xB4, 0x35, 0x36, 0xB7,
	0xB8, 0x39, 0x3A, 0xBB, 0x3C, 0xBD, 0xBE, 0x3F,
	0xC0, 0x41, 0x42, 0xC3, 0x44, 0xC5, 0xC6, 0x47,
	0x48, 0xC9, 0xCA, 0x4B, 0xCC, 0x4D, 0x4E, 0xCF,
	0x50, 0xD1, 0xD2, 0x53, 0xD4, 0x55, 0x56, 0xD7,
	0xD8, 0x59, 0x5A, 0xDB, 0x5C, 0xDD, 0xDE, 0x5F,
	0x60, 0xE1, 0xE2, 0x63, 0xE4, 0x65, 0x66, 0xE7,
	0xE8, 0x69, 0x6A, 0xEB, 0x6C, 0xED, 0xEE, 0x6F,
	0xF0, 0x71, 0x72, 0xF3, 0x74, 0xF5, 0xF6, 0x77,
	0x78, 0xF9, 0xFA, 0x7B, 0xFC, 0x7D, 0x7E, 0xFF,
}

// EncodeParity sets the even-parity bit (bit 7) of an Ack_Byte or
// Mcast_Byte from its low 7 bits.
func EncodeParity(low7 byte) byte {
	return parityTable[low7&0x7F]
}

// CheckParity reports whether b's bit 7 is the correct even parity over
// bits 0..6.
func CheckParity(b byte) bool {
	return parityTable[b&0x7F] == b
}

// Byte2 computes the Base Format redundant byte (Ack_Byte_2 from Ack_Byte,
// or Mcast_Byte_2 from Mcast_Byte):
// Byte2 = ((Byte XOR 0xFF) AND 0x55) OR (Byte AND 0xAA).
func Byte2(b byte) byte {
	return ((b ^ 0xFF) & 0x55) | (b & 0xAA)
}

// CheckByte2 reports whether byte2 is the correct redundant byte for b.
func CheckByte2(b, byte2 byte) bool {
	return Byte2(b) == byte2
}
