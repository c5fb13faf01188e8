// Command cipsafetyctl is an operator diagnostic CLI over the cipsafety
// core: it recomputes the CRC tables, replays the golden end-to-end
// reference vectors, and computes SCID/CPCRC values from
// captured inputs. It is not part of the core itself — the core stays a
// pure library — this is the thin, standard cobra-CLI shell around it,
// in the style the wider example pack builds multi-command operator
// tools with.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cipsafetyctl",
	Short: "Diagnostic CLI for the CIP Safety protocol core",
	Long: `cipsafetyctl exercises the cipsafety core from the command line:
recomputing CRC tables, replaying golden end-to-end vectors, and
computing SCID/CPCRC from device configuration and captured wire bytes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
