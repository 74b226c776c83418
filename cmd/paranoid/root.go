package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// jsonOutput requests structured (kind, message, remedy, next-steps) error
// output on failure instead of a plain message, per §6's "structured error
// output ... emitted when the consumer requests machine-readable output."
var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:     "paranoid",
	Short:   "paranoid-coder - local, privacy-preserving codebase intelligence",
	Long:    "paranoid-coder indexes a codebase locally, building an incremental summary tree, a static code graph, and a vector index, all served by a local model host. Nothing leaves the machine.",
	Version: version,
	// SilenceUsage/SilenceErrors: main.go owns error reporting so it can
	// choose plain-text or --json formatting.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("paranoid-coder version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit structured JSON error output on failure")
}
