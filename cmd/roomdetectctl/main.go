// Command roomdetectctl is the scriptable CLI companion to the room
// detection service: it runs the orchestrator directly against a local
// lines/SVG/image file and prints the result as a table or JSON, without
// needing a running server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arxfloor/roomdetect/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "roomdetectctl",
	Short:         "Detect rooms in a floor plan from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	logger.SetLevel(logger.INFO)

	rootCmd.AddCommand(detectCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
