// Package datamsg implements the four CIP Safety data-message formats: Base
// Short, Base Long, Extended Short and Extended Long. Each format has a
// distinct wire layout, CRC seeding, and masking rule, but shares the same
// producer/consumer shape: the producer builds a message from a payload, a
// time stamp and a mode, seeded by a connection's PID; the consumer parses
// and cross-checks a received message against the same seed, returning the
// payload only if every check passes.
package datamsg

import (
	"github.com/cipsafety/core"
	"github.com/cipsafety/core/pkg/crc"
	"github.com/cipsafety/core/pkg/modebyte"
	"github.com/cipsafety/core/pkg/seed"
	"github.com/cipsafety/core/pkg/wire"
)

// Format identifies one of the four wire layouts. It is fixed for the
// lifetime of a connection, chosen at SafetyOpen from the Network Segment
// Safety.
type Format int

const (
	BaseShort Format = iota
	BaseLong
	ExtShort
	ExtLong
)

func (f Format) String() string {
	switch f {
	case BaseShort:
		return "BaseShort"
	case BaseLong:
		return "BaseLong"
	case ExtShort:
		return "ExtShort"
	case ExtLong:
		return "ExtLong"
	default:
		return "Unknown"
	}
}

// IsExtended reports whether f is one of the Extended Format variants,
// which seed their CRCs through the connection's Rollover Count.
func (f Format) IsExtended() bool {
	return f == ExtShort || f == ExtLong
}

// IsLong reports whether f carries an Actual+Complement cross-check,
// requiring a payload length of 3..250 bytes rather than 1..2.
func (f Format) IsLong() bool {
	return f == BaseLong || f == ExtLong
}

const (
	shortMinPayload = 1
	shortMaxPayload = 2
	// longMinPayload is 3, not 4: evenness is enforced on the *wire*
	// length (always even, since it is
	// 8 + 2*payload for any integer payload), never on the payload length
	// itself — an odd Long payload (3, 5, 7, ...) is valid and yields an
	// even wire length the same way an even one does.
	longMinPayload = 3
	longMaxPayload = 250
	// longOverhead is the fixed non-doubled byte count of a Long format
	// message: Mode(1) + ActualCRC/ComplementCRC(2+2, Base) or
	// ActualCRC/ComplementCRC-S5(2+3, Ext) + TimeStamp(2) + TsCRC(1, Base
	// only) — both Long formats total 8 regardless of which CRC pair they
	// use, leaving wire length = longOverhead + 2*payloadLen.
	longOverhead = 8
)

// Result is what a successful Verify returns: the plaintext payload, the
// time stamp it carried, and its decoded mode semantic.
type Result struct {
	Payload   []byte
	TimeStamp uint16
	Mode      modebyte.Semantic
}

// complement returns the bitwise NOT of every byte of data.
func complement(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = ^b
	}
	return out
}

// WireLen returns the exact number of bytes a message of this format and
// payload length occupies on the wire, or 0 if payloadLen is out of range
// for the format.
func (f Format) WireLen(payloadLen int) int {
	if f.IsLong() {
		if payloadLen < longMinPayload || payloadLen > longMaxPayload {
			return 0
		}
		return longOverhead + 2*payloadLen
	}
	if payloadLen < shortMinPayload || payloadLen > shortMaxPayload {
		return 0
	}
	return 6 + payloadLen
}

// PayloadLenFromWireLen maps a wire length back to this format's payload
// length. It returns ok=false if wireLen does not correspond to any valid payload
// length for the format, including an odd Long-format wire length (which
// can only arise from a corrupted or malformed message, since a
// well-formed one is always longOverhead + 2*payloadLen).
func (f Format) PayloadLenFromWireLen(wireLen int) (payloadLen int, ok bool) {
	if f.IsLong() {
		minWire := f.WireLen(longMinPayload)
		maxWire := f.WireLen(longMaxPayload)
		if wireLen < minWire || wireLen > maxWire || wireLen%2 != 0 {
			return 0, false
		}
		return (wireLen - longOverhead) / 2, true
	}
	switch wireLen {
	case f.WireLen(shortMinPayload):
		return shortMinPayload, true
	case f.WireLen(shortMaxPayload):
		return shortMaxPayload, true
	default:
		return 0, false
	}
}

// Build constructs the wire bytes for a data message of the given format,
// seeded from pidSeeds (and, for Extended formats, rolloverCount). It
// returns an error only if payload's length is out of range for the
// format.
func Build(format Format, pidSeeds seed.PIDSeeds, rolloverCount uint16, payload []byte, mode modebyte.Semantic, timeStamp uint16) ([]byte, error) {
	wireLen := format.WireLen(len(payload))
	if wireLen == 0 {
		minPayload := shortMinPayload
		if format.IsLong() {
			minPayload = longMinPayload
		}
		if len(payload) < minPayload {
			return nil, cipsafety.ErrWireTooShort
		}
		return nil, cipsafety.ErrWireTooLong
	}

	modeByte := modebyte.Encode(mode)
	buf := make([]byte, wireLen)
	cur := wire.NewCursor(buf)

	switch format {
	case BaseShort:
		cur.PutByte(modeByte)
		cur.PutBytes(payload)
		actualCrc := crc.S1(append([]byte{modebyte.ActualMask(modeByte)}, payload...), pidSeeds.S1)
		cur.PutByte(actualCrc)
		compCrc := crc.S2(append([]byte{modebyte.ComplementMaskBaseFormat(modeByte)}, complement(payload)...), pidSeeds.S1)
		cur.PutByte(compCrc)
		cur.PutUint16(timeStamp)
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		tsCrc := crc.S1(append([]byte{modebyte.TimeStampMask(modeByte)}, tsBytes...), pidSeeds.S1)
		cur.PutByte(tsCrc)

	case BaseLong:
		comp := complement(payload)
		cur.PutByte(modeByte)
		cur.PutBytes(payload)
		cur.PutBytes(comp)
		actualCrc := crc.S3(append([]byte{modebyte.ActualMask(modeByte)}, payload...), pidSeeds.S3)
		cur.PutUint16(actualCrc)
		compCrc := crc.S3(append([]byte{modebyte.ComplementMaskBaseFormat(modeByte)}, comp...), pidSeeds.S3)
		cur.PutUint16(compCrc)
		cur.PutUint16(timeStamp)
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		tsCrc := crc.S1(append([]byte{modebyte.TimeStampMask(modeByte)}, tsBytes...), pidSeeds.S1)
		cur.PutByte(tsCrc)

	case ExtShort:
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		s5Seed := seed.WithRolloverS5(pidSeeds.S5, rolloverCount)
		body := append([]byte{modebyte.ActualMask(modeByte)}, payload...)
		body = append(body, tsBytes...)
		msgCrc := crc.S5(body, s5Seed)
		cur.PutByte(modeByte)
		cur.PutBytes(payload)
		cur.PutUint16(timeStamp)
		cur.PutUint24(msgCrc)

	case ExtLong:
		comp := complement(payload)
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		s3Seed := seed.WithRolloverS3(pidSeeds.S3, rolloverCount)
		actualCrc := crc.S3(append([]byte{modebyte.ActualMask(modeByte)}, payload...), s3Seed)
		s5Seed := seed.WithRolloverS5(pidSeeds.S5, rolloverCount)
		compBody := append([]byte{modebyte.ComplementMaskExtendedLong(modeByte)}, comp...)
		compBody = append(compBody, tsBytes...)
		compCrc := crc.S5(compBody, s5Seed)

		cur.PutByte(modeByte)
		cur.PutBytes(payload)
		cur.PutUint16(actualCrc)
		cur.PutBytes(comp)
		cur.PutUint16(timeStamp)
		cur.PutUint24(compCrc)
	}

	return buf, nil
}

// Verify parses and verifies a received data message of the given format
// against pidSeeds (and rolloverCount for Extended formats). It continues
// through every applicable check, counting failures, and returns the first
// kind observed plus the total count in a *cipsafety.VerifyError. On full
// success it returns a Result and a nil error.
func Verify(format Format, pidSeeds seed.PIDSeeds, rolloverCount uint16, data []byte) (Result, error) {
	switch format {
	case BaseShort, ExtShort:
		return verifyShort(format, pidSeeds, rolloverCount, data)
	case BaseLong, ExtLong:
		return verifyLong(format, pidSeeds, rolloverCount, data)
	default:
		return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}
}

func verifyShort(format Format, pidSeeds seed.PIDSeeds, rolloverCount uint16, data []byte) (Result, error) {
	payloadLen, ok := format.PayloadLenFromWireLen(len(data))
	if !ok {
		if len(data) > format.WireLen(shortMaxPayload) {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooLong, FailureCount: 1}
		}
		return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}
	return verifyShortWithLen(format, pidSeeds, rolloverCount, data, payloadLen)
}

func verifyShortWithLen(format Format, pidSeeds seed.PIDSeeds, rolloverCount uint16, data []byte, payloadLen int) (Result, error) {
	cur := wire.NewCursor(data)
	modeByte, ok := cur.Byte()
	if !ok {
		return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}
	payload, ok := cur.Advance(payloadLen)
	if !ok {
		return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}
	payload = append([]byte(nil), payload...)

	failures := 0
	var firstKind cipsafety.VerifyErrorKind
	fail := func(kind cipsafety.VerifyErrorKind) {
		if failures == 0 {
			firstKind = kind
		}
		failures++
	}

	var timeStamp uint16

	switch format {
	case BaseShort:
		actualCrc, ok := cur.Byte()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		compCrc, ok := cur.Byte()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		timeStamp, ok = cur.Uint16()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		tsCrc, ok := cur.Byte()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}

		wantActual := crc.S1(append([]byte{modebyte.ActualMask(modeByte)}, payload...), pidSeeds.S1)
		if wantActual != actualCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
		wantComp := crc.S2(append([]byte{modebyte.ComplementMaskBaseFormat(modeByte)}, complement(payload)...), pidSeeds.S1)
		if wantComp != compCrc {
			fail(cipsafety.ComplementCrcMismatch)
		}
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		wantTsCrc := crc.S1(append([]byte{modebyte.TimeStampMask(modeByte)}, tsBytes...), pidSeeds.S1)
		if wantTsCrc != tsCrc {
			fail(cipsafety.TimeStampCrcMismatch)
		}

	case ExtShort:
		ts, ok := cur.Uint16()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		timeStamp = ts
		msgCrc, ok := cur.Uint24()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		s5Seed := seed.WithRolloverS5(pidSeeds.S5, rolloverCount)
		body := append([]byte{modebyte.ActualMask(modeByte)}, payload...)
		body = append(body, tsBytes...)
		wantCrc := crc.S5(body, s5Seed)
		if wantCrc != msgCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
	}

	if !modebyte.CheckRedundantBits(modeByte) {
		fail(cipsafety.ModeByteRedundantBits)
	}

	if failures > 0 {
		return Result{}, &cipsafety.VerifyError{Kind: firstKind, FailureCount: failures}
	}

	return Result{Payload: payload, TimeStamp: timeStamp, Mode: modebyte.Decode(modeByte)}, nil
}

func verifyLong(format Format, pidSeeds seed.PIDSeeds, rolloverCount uint16, data []byte) (Result, error) {
	payloadLen, ok := format.PayloadLenFromWireLen(len(data))
	if !ok {
		if len(data) > format.WireLen(longMaxPayload) {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooLong, FailureCount: 1}
		}
		if len(data) >= format.WireLen(longMinPayload) && len(data)%2 != 0 {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.LengthNotEven, FailureCount: 1}
		}
		return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}
	return verifyLongWithLen(format, pidSeeds, rolloverCount, data, payloadLen)
}

func verifyLongWithLen(format Format, pidSeeds seed.PIDSeeds, rolloverCount uint16, data []byte, payloadLen int) (Result, error) {
	cur := wire.NewCursor(data)
	modeByte, ok := cur.Byte()
	if !ok {
		return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
	}

	failures := 0
	var firstKind cipsafety.VerifyErrorKind
	fail := func(kind cipsafety.VerifyErrorKind) {
		if failures == 0 {
			firstKind = kind
		}
		failures++
	}

	var (
		payload, comp []byte
		timeStamp     uint16
	)

	switch format {
	case BaseLong:
		p, ok := cur.Advance(payloadLen)
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		payload = append([]byte(nil), p...)
		c, ok := cur.Advance(payloadLen)
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		comp = append([]byte(nil), c...)
		actualCrc, ok := cur.Uint16()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		compCrc, ok := cur.Uint16()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		timeStamp, ok = cur.Uint16()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		tsCrc, ok := cur.Byte()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}

		wantActual := crc.S3(append([]byte{modebyte.ActualMask(modeByte)}, payload...), pidSeeds.S3)
		if wantActual != actualCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
		wantComp := crc.S3(append([]byte{modebyte.ComplementMaskBaseFormat(modeByte)}, comp...), pidSeeds.S3)
		if wantComp != compCrc {
			fail(cipsafety.ComplementCrcMismatch)
		}
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		wantTsCrc := crc.S1(append([]byte{modebyte.TimeStampMask(modeByte)}, tsBytes...), pidSeeds.S1)
		if wantTsCrc != tsCrc {
			fail(cipsafety.TimeStampCrcMismatch)
		}

	case ExtLong:
		p, ok := cur.Advance(payloadLen)
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		payload = append([]byte(nil), p...)
		actualCrc, ok := cur.Uint16()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		c, ok := cur.Advance(payloadLen)
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		comp = append([]byte(nil), c...)
		ts, ok := cur.Uint16()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}
		timeStamp = ts
		compCrc, ok := cur.Uint24()
		if !ok {
			return Result{}, &cipsafety.VerifyError{Kind: cipsafety.WireTooShort, FailureCount: 1}
		}

		s3Seed := seed.WithRolloverS3(pidSeeds.S3, rolloverCount)
		wantActual := crc.S3(append([]byte{modebyte.ActualMask(modeByte)}, payload...), s3Seed)
		if wantActual != actualCrc {
			fail(cipsafety.ActualCrcMismatch)
		}
		s5Seed := seed.WithRolloverS5(pidSeeds.S5, rolloverCount)
		tsBytes := make([]byte, 2)
		wire.PutUint16(tsBytes, timeStamp)
		compBody := append([]byte{modebyte.ComplementMaskExtendedLong(modeByte)}, comp...)
		compBody = append(compBody, tsBytes...)
		wantComp := crc.S5(compBody, s5Seed)
		if wantComp != compCrc {
			fail(cipsafety.ComplementCrcMismatch)
		}
	}

	if !modebyte.CheckRedundantBits(modeByte) {
		fail(cipsafety.ModeByteRedundantBits)
	}

	for i := range payload {
		if payload[i] != ^comp[i] {
			fail(cipsafety.ActualVsComplementData)
			break
		}
	}

	if failures > 0 {
		return Result{}, &cipsafety.VerifyError{Kind: firstKind, FailureCount: failures}
	}

	return Result{Payload: payload, TimeStamp: timeStamp, Mode: modebyte.Decode(modeByte)}, nil
}
