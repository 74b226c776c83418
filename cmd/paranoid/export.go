package main

import (
	"os"

	"github.com/bradylowe/paranoid-coder/internal/logging"

	"github.com/spf13/cobra"
)

var exportSnapshot bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the code graph as SCIP, or snapshot the store to a gzip archive",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportSnapshot, "snapshot", false, "Write a gzip-compressed backup of the store instead of a SCIP index")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat})

	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	if exportSnapshot {
		return eng.DB.Snapshot(os.Stdout)
	}
	return eng.DB.ExportSCIP(os.Stdout, eng.Root)
}
