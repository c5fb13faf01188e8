package main

import (
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cipsafety/core/pkg/datamsg"
	"github.com/cipsafety/core/pkg/modebyte"
	"github.com/cipsafety/core/pkg/safetyopen"
	"github.com/cipsafety/core/pkg/seed"
)

// referencePID is the PID the golden vectors use throughout:
// VendorID=0x1234, DeviceSerialNumber=0x12345678,
// ConnectionSerialNumber=0xABCD.
var referencePID = seed.Identifier{
	VendorID:               0x1234,
	DeviceSerialNumber:     0x12345678,
	ConnectionSerialNumber: 0xABCD,
}

type vectorCase struct {
	name string
	run  func() error
}

func vectorCases() []vectorCase {
	return []vectorCase{
		{"pid-seed-reference", vectorPIDSeedReference},
		{"base-short-roundtrip", vectorBaseShortRoundTrip},
		{"base-long-cross-check", vectorBaseLongCrossCheck},
		{"extended-short-rollover", vectorExtendedShortRollover},
		{"payload-length-boundaries", vectorPayloadLengthBoundaries},
	}
}

var vectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Replay the golden end-to-end reference vectors and report pass/fail",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, tc := range vectorCases() {
			if err := tc.run(); err != nil {
				fmt.Printf("FAIL %-28s %v\n", tc.name, err)
				log.WithField("vector", tc.name).WithError(err).Warn("vector: failed")
				failed++
				continue
			}
			fmt.Printf("PASS %-28s\n", tc.name)
		}
		if failed > 0 {
			return fmt.Errorf("vector: %d scenario(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vectorCmd)
}

// vectorPIDSeedReference checks that the 8-byte PID stream and its
// derived CRC-S1/S3/S5 seeds are stable across releases.
func vectorPIDSeedReference() error {
	wantStream := [8]byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xCD, 0xAB}
	if got := referencePID.Stream(); got != wantStream {
		return fmt.Errorf("stream = % X, want % X", got, wantStream)
	}
	seeds := seed.FromPID(referencePID)
	if seeds.S1 != 0xF3 {
		return fmt.Errorf("S1 = 0x%02X, want 0xF3", seeds.S1)
	}
	if seeds.S3 != 0x149C {
		return fmt.Errorf("S3 = 0x%04X, want 0x149C", seeds.S3)
	}
	if seeds.S5 != 0xE2A92B {
		return fmt.Errorf("S5 = 0x%06X, want 0xE2A92B", seeds.S5)
	}
	return nil
}

// vectorBaseShortRoundTrip checks that a Base Short message built for
// payload 0x55, mode Run=1/TBD=0/TBD2=0, time stamp 0x1234 equals a
// fixed 7-byte wire vector and round-trips through Verify.
func vectorBaseShortRoundTrip() error {
	seeds := seed.FromPID(referencePID)
	payload := []byte{0x55}
	mode := modebyte.Semantic{RunIdle: true}

	msg, err := datamsg.Build(datamsg.BaseShort, seeds, 0, payload, mode, 0x1234)
	if err != nil {
		return err
	}
	want := []byte{0x84, 0x55, 0xAB, 0x09, 0x34, 0x12, 0x53}
	if !bytes.Equal(msg, want) {
		return fmt.Errorf("built message = % X, want % X", msg, want)
	}
	result, err := datamsg.Verify(datamsg.BaseShort, seeds, 0, msg)
	if err != nil {
		return fmt.Errorf("verify rejected golden message: %w", err)
	}
	if !bytes.Equal(result.Payload, payload) {
		return fmt.Errorf("recovered payload = % X, want % X", result.Payload, payload)
	}
	return nil
}

// vectorBaseLongCrossCheck checks that payload AA 55 FF 00 produces
// Complement 55 AA 00 FF byte-exact, and that flipping a bit of
// Complement is rejected.
func vectorBaseLongCrossCheck() error {
	seeds := seed.FromPID(referencePID)
	payload := []byte{0xAA, 0x55, 0xFF, 0x00}
	mode := modebyte.Semantic{RunIdle: true}

	msg, err := datamsg.Build(datamsg.BaseLong, seeds, 0, payload, mode, 0x1234)
	if err != nil {
		return err
	}
	// Mode(1) + Actual(4) + Complement(4) ...
	comp := msg[5:9]
	wantComp := []byte{0x55, 0xAA, 0x00, 0xFF}
	if !bytes.Equal(comp, wantComp) {
		return fmt.Errorf("complement = % X, want % X", comp, wantComp)
	}
	if _, err := datamsg.Verify(datamsg.BaseLong, seeds, 0, msg); err != nil {
		return fmt.Errorf("verify rejected well-formed message: %w", err)
	}
	mutated := append([]byte(nil), msg...)
	mutated[6] ^= 0x01 // flip bit 0 of Complement[1]
	_, err = datamsg.Verify(datamsg.BaseLong, seeds, 0, mutated)
	if err == nil {
		return fmt.Errorf("verify accepted a message with a flipped Complement bit")
	}
	return nil
}

// vectorExtendedShortRollover checks that the same payload built under
// Rollover Count 0 vs 1 produces different CRC-S5 values, and that the
// message built under Rollover Count 0 is rejected under Rollover Count 1.
func vectorExtendedShortRollover() error {
	seeds := seed.FromPID(referencePID)
	payload := []byte{0x55}
	mode := modebyte.Semantic{RunIdle: true}

	msg0, err := datamsg.Build(datamsg.ExtShort, seeds, 0, payload, mode, 0x1234)
	if err != nil {
		return err
	}
	msg1, err := datamsg.Build(datamsg.ExtShort, seeds, 1, payload, mode, 0x1234)
	if err != nil {
		return err
	}
	if bytes.Equal(msg0[len(msg0)-3:], msg1[len(msg1)-3:]) {
		return fmt.Errorf("CRC-S5 identical across Rollover Count 0 and 1")
	}
	if _, err := datamsg.Verify(datamsg.ExtShort, seeds, 1, msg0); err == nil {
		return fmt.Errorf("message built with Rollover Count 0 verified under Rollover Count 1")
	}
	return nil
}

// vectorPayloadLengthBoundaries exercises the payload-length mapping at
// both short lengths, the long lengths 4 and 250, an odd long wire length
// (rejected), and a multicast Extended Short message.
func vectorPayloadLengthBoundaries() error {
	cases := []struct {
		format      datamsg.Format
		wireLen     int
		isMulticast bool
		wantLen     int
		wantOK      bool
	}{
		{datamsg.BaseShort, datamsg.BaseShort.WireLen(1), false, 1, true},
		{datamsg.BaseShort, datamsg.BaseShort.WireLen(2), false, 2, true},
		{datamsg.BaseLong, datamsg.BaseLong.WireLen(4), false, 4, true},
		{datamsg.BaseLong, datamsg.BaseLong.WireLen(250), false, 250, true},
		{datamsg.BaseLong, datamsg.BaseLong.WireLen(4) + 1, false, 0, false}, // odd long length
		{datamsg.ExtShort, datamsg.ExtShort.WireLen(2) + 6, true, 2, true},   // multicast Time Correction overhead
	}
	for _, tc := range cases {
		got, ok := safetyopen.PayloadLen(tc.format, tc.wireLen, tc.isMulticast)
		if ok != tc.wantOK || (ok && got != tc.wantLen) {
			return fmt.Errorf("PayloadLen(%v, %d, multicast=%v) = (%d, %v), want (%d, %v)",
				tc.format, tc.wireLen, tc.isMulticast, got, ok, tc.wantLen, tc.wantOK)
		}
	}
	return nil
}
