// Package cipsafety implements the core of a CIP Safety protocol stack:
// CRC engines, identifier seeding, the mode-byte and parity codecs, the four
// data-message formats, the time-message formats, and the SafetyOpen
// integrity checks. The package is a pure, synchronous library; it never
// touches a network, a file, or a clock.
package cipsafety

import "errors"

// VerifyErrorKind discriminates the reasons a consumer rejects a message or
// a connection. Exactly one kind is reported per failed verification, even
// when several checks fail, so a caller can distinguish one fault from two.
type VerifyErrorKind int

const (
	// ActualCrcMismatch means a plaintext-path CRC (Actual Data) failed.
	ActualCrcMismatch VerifyErrorKind = iota
	// ComplementCrcMismatch means the cross-check CRC over Complement Data failed.
	ComplementCrcMismatch
	// TimeStampCrcMismatch means the Base Format time-stamp CRC failed.
	TimeStampCrcMismatch
	// ModeByteRedundantBits means the Mode Byte redundant-bit invariant was violated.
	ModeByteRedundantBits
	// ActualVsComplementData means a byte of Actual did not match the
	// bit-complement of its Complement counterpart (Long formats only).
	ActualVsComplementData
	// AckByteParity means the parity bit of an Ack_Byte failed.
	AckByteParity
	// McastByteParity means the parity bit of a Mcast_Byte failed.
	McastByteParity
	// WireTooShort means the received buffer is shorter than the format requires.
	WireTooShort
	// WireTooLong means the received buffer is longer than the format allows.
	WireTooLong
	// LengthNotEven means a Long-format wire buffer's length was odd,
	// which cannot correspond to any valid payload length (8 + 2*payload
	// is always even).
	LengthNotEven
	// CpcrcMismatch means a SafetyOpen's Configuration Parameter CRC did not match.
	CpcrcMismatch
	// SccrcMismatch means a Safety Configuration CRC did not match.
	SccrcMismatch
)

// String renders the error kind using the names surfaced by the verifier's
// error-handling design, for logging and diagnostics.
func (k VerifyErrorKind) String() string {
	switch k {
	case ActualCrcMismatch:
		return "ActualCrcMismatch"
	case ComplementCrcMismatch:
		return "ComplementCrcMismatch"
	case TimeStampCrcMismatch:
		return "TimeStampCrcMismatch"
	case ModeByteRedundantBits:
		return "ModeByteRedundantBits"
	case ActualVsComplementData:
		return "ActualVsComplementData"
	case AckByteParity:
		return "AckByteParity"
	case McastByteParity:
		return "McastByteParity"
	case WireTooShort:
		return "WireTooShort"
	case WireTooLong:
		return "WireTooLong"
	case LengthNotEven:
		return "LengthNotEven"
	case CpcrcMismatch:
		return "CpcrcMismatch"
	case SccrcMismatch:
		return "SccrcMismatch"
	default:
		return "Unknown"
	}
}

// VerifyError is the discriminated union returned by every consumer-path
// verification. Kind identifies the first check that failed; FailureCount
// records how many of the applicable checks failed in total, so a caller
// wired to a diagnostic counter can tell one fault from several without
// re-running the verification.
type VerifyError struct {
	Kind         VerifyErrorKind
	FailureCount int
}

func (e *VerifyError) Error() string {
	return "cipsafety: " + e.Kind.String()
}

// Sentinel errors for structural conditions checked ahead of the per-field
// verification proper.
var (
	ErrWireTooShort  = errors.New("cipsafety: wire buffer shorter than format requires")
	ErrWireTooLong   = errors.New("cipsafety: wire buffer longer than format allows")
	ErrLengthNotEven = errors.New("cipsafety: long-format wire buffer length must be even")
)
