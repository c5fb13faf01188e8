package main

import (
	"encoding/hex"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cipsafety/core/pkg/safetyopen"
)

var (
	cpcrcSerialVendorHex  string
	cpcrcTimeoutPathHex   string
	cpcrcElectronicKeyHex string
	cpcrcNSSHex           string
	cpcrcExtended         bool
)

var cpcrcCmd = &cobra.Command{
	Use:   "cpcrc",
	Short: "Compute the Configuration Parameter CRC over a captured Forward_Open's four slices",
	Long: `cpcrc takes the four CPCRC input slices as hex-encoded strings — the
Connection Serial Number + Vendor ID, the Connection Timeout Multiplier
through Connection Path Size block, the Electronic Key plus application
paths, and the Network Segment Safety segment — and reports the resulting
CRC-S4 value, the same one the peer must compute to accept the
SafetyOpen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serialVendor, err := hex.DecodeString(cpcrcSerialVendorHex)
		if err != nil {
			return fmt.Errorf("cpcrc: --serial-vendor: %w", err)
		}
		timeoutPath, err := hex.DecodeString(cpcrcTimeoutPathHex)
		if err != nil {
			return fmt.Errorf("cpcrc: --timeout-path: %w", err)
		}
		electronicKey, err := hex.DecodeString(cpcrcElectronicKeyHex)
		if err != nil {
			return fmt.Errorf("cpcrc: --electronic-key: %w", err)
		}
		nss, err := hex.DecodeString(cpcrcNSSHex)
		if err != nil {
			return fmt.Errorf("cpcrc: --nss: %w", err)
		}

		slices := safetyopen.ForwardOpenSlices{
			ConnectionSerialAndVendorID: serialVendor,
			TimeoutThroughPathSize:      timeoutPath,
			ElectronicKeyAndAppPaths:    electronicKey,
			NetworkSegmentSafety:        nss,
		}
		result := safetyopen.CPCRC(slices, cpcrcExtended)
		log.WithField("extended", cpcrcExtended).Debug("cpcrc: computed")
		fmt.Printf("CPCRC=0x%08X\n", result)
		return nil
	},
}

func init() {
	cpcrcCmd.Flags().StringVar(&cpcrcSerialVendorHex, "serial-vendor", "", "hex: Connection Serial Number + Vendor ID (4 bytes)")
	cpcrcCmd.Flags().StringVar(&cpcrcTimeoutPathHex, "timeout-path", "", "hex: Connection Timeout Multiplier through Connection Path Size")
	cpcrcCmd.Flags().StringVar(&cpcrcElectronicKeyHex, "electronic-key", "", "hex: Electronic Key + application paths")
	cpcrcCmd.Flags().StringVar(&cpcrcNSSHex, "nss", "", "hex: Network Segment Safety (32 bytes Base, 34 Extended)")
	cpcrcCmd.Flags().BoolVar(&cpcrcExtended, "extended", false, "connection uses Extended Format (34-byte Network Segment Safety)")
	for _, name := range []string{"serial-vendor", "timeout-path", "electronic-key", "nss"} {
		cpcrcCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(cpcrcCmd)
}
