package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cipsafety/core/pkg/deviceconfig"
)

var (
	scidConfigPath string
	scidConnection string
	scidTime       uint32
	scidDate       uint16
)

var scidCmd = &cobra.Command{
	Use:   "scid",
	Short: "Compute the Safety Configuration Identifier for a connection in a device configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := deviceconfig.Load(scidConfigPath)
		if err != nil {
			return err
		}
		if scidConnection == "" {
			names := file.ConnectionNames()
			if len(names) != 1 {
				return fmt.Errorf("scid: --connection required, file declares %v", names)
			}
			scidConnection = names[0]
		}

		id, err := file.SCID(scidConnection, scidTime, scidDate)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"connection": scidConnection,
			"sccrc":      fmt.Sprintf("0x%08X", id.SCCRC),
		}).Debug("scid: computed")
		fmt.Printf("SCCRC=0x%08X Time=0x%08X Date=0x%04X\n", id.SCCRC, id.Time, id.Date)
		fmt.Printf("wire: % X\n", id.Bytes())
		return nil
	},
}

func init() {
	scidCmd.Flags().StringVar(&scidConfigPath, "config", "", "path to a deviceconfig INI file")
	scidCmd.Flags().StringVar(&scidConnection, "connection", "", "connection name (default: the file's only connection)")
	scidCmd.Flags().Uint32Var(&scidTime, "time", 0, "4-byte configuration time stamp")
	scidCmd.Flags().Uint16Var(&scidDate, "date", 0, "2-byte configuration date stamp")
	scidCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(scidCmd)
}
