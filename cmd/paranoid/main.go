// Command paranoid is the CLI entrypoint for the local codebase intelligence
// engine: init, summarize, analyze, index, and ask, each a thin wrapper over
// the internal/ packages.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/logging"
)

func main() {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.InfoLevel})

	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			printJSONError(err)
		} else {
			logger.Error("command failed", map[string]interface{}{"error": err.Error()})
		}
		os.Exit(1)
	}
}

// printJSONError writes err's structured (kind, message, remedy,
// next-steps) shape to stderr when it's a *pcerrors.Error, falling back to
// a bare message field for plain errors (e.g. cobra's own flag-parsing
// errors, which never carry a Kind).
func printJSONError(err error) {
	var pcErr *pcerrors.Error
	var payload interface{}
	if pcerrors.As(err, &pcErr) {
		payload = pcErr
	} else {
		payload = struct {
			Message string `json:"message"`
		}{Message: err.Error()}
	}
	data, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	fmt.Fprintln(os.Stderr, string(data))
}
