package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bradylowe/paranoid-coder/internal/logging"
	"github.com/bradylowe/paranoid-coder/internal/project"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose project setup and model host connectivity",
	Args:  cobra.NoArgs,
	Run:   runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name string
	OK   bool
	Info string
}

func runDoctor(cmd *cobra.Command, args []string) {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat})

	var checks []doctorCheck
	healthy := true

	cwd, err := os.Getwd()
	if err != nil {
		checks = append(checks, doctorCheck{"working directory", false, err.Error()})
		printDoctorChecks(checks)
		os.Exit(1)
	}

	root, err := project.Find(cwd)
	if err != nil {
		checks = append(checks, doctorCheck{"project", false, "not initialized: run 'paranoid init'"})
		printDoctorChecks(checks)
		os.Exit(1)
	}
	checks = append(checks, doctorCheck{"project", true, root})

	eng, err := newEngine(logger)
	if err != nil {
		checks = append(checks, doctorCheck{"config/store", false, err.Error()})
		printDoctorChecks(checks)
		os.Exit(1)
	}
	defer eng.Close()
	checks = append(checks, doctorCheck{"config", true, fmt.Sprintf("model=%s embedding=%s", eng.Config.DefaultModel, eng.Config.DefaultEmbeddingModel)})

	if err := eng.DB.Ping(); err != nil {
		checks = append(checks, doctorCheck{"store", false, err.Error()})
		healthy = false
	} else {
		checks = append(checks, doctorCheck{"store", true, eng.DB.Path()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, eng.Config.OllamaHost, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		checks = append(checks, doctorCheck{"model host", false, fmt.Sprintf("%s unreachable: %v", eng.Config.OllamaHost, err)})
		healthy = false
	} else {
		resp.Body.Close()
		checks = append(checks, doctorCheck{"model host", true, eng.Config.OllamaHost})
	}

	printDoctorChecks(checks)
	if !healthy {
		os.Exit(1)
	}
}

func printDoctorChecks(checks []doctorCheck) {
	for _, c := range checks {
		status := "ok"
		if !c.OK {
			status = "FAIL"
		}
		fmt.Printf("[%s] %-12s %s\n", status, c.Name, c.Info)
	}
}
