// Package timemsg implements the Time Coordination and Time Correction
// messages that bind a producer's and a consumer's clocks. Time
// Coordination flows consumer to producer, seeded with the consumer's CID;
// Time Correction flows producer to the multicast group, seeded with the
// producer's PID. Both come in Base (CRC-S3) and Extended (CRC-S5) flavors.
package timemsg

import (
	"github.com/cipsafety/core"
	"github.com/cipsafety/core/pkg/crc"
	"github.com/cipsafety/core/pkg/modebyte"
	"github.com/cipsafety/core/pkg/seed"
	"github.com/cipsafety/core/pkg/wire"
)

// Format distinguishes the Base (CRC-S3, redundant Byte2) and Extended
// (CRC-S5 only) time-message wire layouts.
type Format int

const (
	Base Format = iota
	Extended
)

func (f Format) String() string {
	if f == Extended {
		return "Extended"
	}
	return "Base"
}

// WireLen returns the fixed wire length for a time message of this format:
// 6 bytes either way (Base carries a redundant Byte2 and a 2-byte CRC-S3,
// Extended a 3-byte CRC-S5 and no Byte2).
func (f Format) WireLen() int {
	return 6
}

// CoordinationResult is what a successful VerifyTCOO returns.
type CoordinationResult struct {
	AckLow7           byte
	ConsumerTimeValue uint16
}

// CorrectionResult is what a successful VerifyTCORR returns.
type CorrectionResult struct {
	McastLow7           byte
	TimeCorrectionValue uint16
}

func crcOver(format Format, engineS3Seed uint16, engineS5Seed uint32, parityByte byte, timeValue uint16) (s3 uint16, s5 uint32) {
	tsBytes := make([]byte, 2)
	wire.PutUint16(tsBytes, timeValue)
	body := append([]byte{parityByte}, tsBytes...)
	if format == Base {
		return crc.S3(body, engineS3Seed), 0
	}
	return 0, crc.S5(body, engineS5Seed)
}

// BuildTCOO constructs a Time Coordination message seeded from the
// consumer's CID, carrying ackLow7 (the Ack_Byte's semantic low 7 bits,
// parity derived by the codec) and the Consumer_Time_Value.
func BuildTCOO(format Format, cidSeeds seed.CIDSeeds, ackLow7 byte, consumerTimeValue uint16) []byte {
	ackByte := modebyte.EncodeParity(ackLow7)
	s3, s5 := crcOver(format, cidSeeds.S3, cidSeeds.S5, ackByte, consumerTimeValue)

	buf := make([]byte, format.WireLen())
	cur := wire.NewCursor(buf)
	cur.PutByte(ackByte)
	cur.PutUint16(consumerTimeValue)
	if format == Base {
		cur.PutByte(modebyte.Byte2(ackByte))
		cur.PutUint16(s3)
	} else {
		cur.PutUint24(s5)
	}
	return buf
}

// VerifyTCOO parses and verifies a received Time Coordination message
// against the consumer's CID seeds.
func VerifyTCOO(format Format, cidSeeds seed.CIDSeeds, data []byte) (CoordinationResult, error) {
	if len(data) < format.WireLen() {
		return CoordinationResult{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}
	if len(data) > format.WireLen() {
		return CoordinationResult{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooLong, FailureCount: 1}
	}

	cur := wire.NewCursor(data)
	ackByte, _ := cur.Byte()
	timeValue, _ := cur.Uint16()

	failures := 0
	var firstKind cipsafety.VerifyErrorKind
	fail := func(kind cipsafety.VerifyErrorKind) {
		if failures == 0 {
			firstKind = kind
		}
		failures++
	}

	if !modebyte.CheckParity(ackByte) {
		fail(cipsafety.AckByteParity)
	}

	if format == Base {
		ackByte2, _ := cur.Byte()
		wantCrc, _ := cur.Uint16()
		s3, _ := crcOver(format, cidSeeds.S3, cidSeeds.S5, ackByte, timeValue)
		if s3 != wantCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
		if !modebyte.CheckByte2(ackByte, ackByte2) {
			fail(cipsafety.ModeByteRedundantBits)
		}
	} else {
		wantCrc, _ := cur.Uint24()
		_, s5 := crcOver(format, cidSeeds.S3, cidSeeds.S5, ackByte, timeValue)
		if s5 != wantCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
	}

	if failures > 0 {
		return CoordinationResult{}, &cipsafety.VerifyError{Kind: firstKind, FailureCount: failures}
	}

	return CoordinationResult{AckLow7: ackByte & 0x7F, ConsumerTimeValue: timeValue}, nil
}

// BuildTCORR constructs a Time Correction message seeded from the
// producer's PID, carrying mcastLow7 (the Mcast_Byte's semantic low 7
// bits) and the Time_Correction_Value. Time Correction is multicast-only.
func BuildTCORR(format Format, pidSeeds seed.PIDSeeds, mcastLow7 byte, timeCorrectionValue uint16) []byte {
	mcastByte := modebyte.EncodeParity(mcastLow7)
	s3, s5 := crcOver(format, pidSeeds.S3, pidSeeds.S5, mcastByte, timeCorrectionValue)

	buf := make([]byte, format.WireLen())
	cur := wire.NewCursor(buf)
	cur.PutByte(mcastByte)
	cur.PutUint16(timeCorrectionValue)
	if format == Base {
		cur.PutByte(modebyte.Byte2(mcastByte))
		cur.PutUint16(s3)
	} else {
		cur.PutUint24(s5)
	}
	return buf
}

// VerifyTCORR parses and verifies a received Time Correction message
// against the producer's PID seeds.
func VerifyTCORR(format Format, pidSeeds seed.PIDSeeds, data []byte) (CorrectionResult, error) {
	if len(data) != format.WireLen() {
		return CorrectionResult{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}

	cur := wire.NewCursor(data)
	mcastByte, _ := cur.Byte()
	timeValue, _ := cur.Uint16()

	failures := 0
	var firstKind cipsafety.VerifyErrorKind
	fail := func(kind cipsafety.VerifyErrorKind) {
		if failures == 0 {
			firstKind = kind
		}
		failures++
	}

	if !modebyte.CheckParity(mcastByte) {
		fail(cipsafety.McastByteParity)
	}

	if format == Base {
		mcastByte2, _ := cur.Byte()
		wantCrc, _ := cur.Uint16()
		s3, _ := crcOver(format, pidSeeds.S3, pidSeeds.S5, mcastByte, timeValue)
		if s3 != wantCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
		if !modebyte.CheckByte2(mcastByte, mcastByte2) {
			fail(cipsafety.ModeByteRedundantBits)
		}
	} else {
		wantCrc, _ := cur.Uint24()
		_, s5 := crcOver(format, pidSeeds.S3, pidSeeds.S5, mcastByte, timeValue)
		if s5 != wantCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
	}

	if failures > 0 {
		return CorrectionResult{}, &cipsafety.VerifyError{Kind: firstKind, FailureCount: failures}
	}

	return CorrectionResult{McastLow7: mcastByte & 0x7F, TimeCorrectionValue: timeValue}, nil
}
