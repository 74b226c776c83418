package main

import (
	"fmt"

	"github.com/bradylowe/paranoid-coder/internal/logging"
	"github.com/bradylowe/paranoid-coder/internal/store"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project status: summary/entity/vector counts and config",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat})

	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	summaries, err := eng.DB.ListSummaries()
	if err != nil {
		return err
	}
	entities, err := eng.DB.ListAllEntities()
	if err != nil {
		return err
	}
	summaryVectors, err := eng.DB.VectorCount(store.VectorSummary)
	if err != nil {
		return err
	}
	entityVectors, err := eng.DB.VectorCount(store.VectorEntity)
	if err != nil {
		return err
	}

	fmt.Printf("Project root:      %s\n", eng.Root)
	fmt.Printf("Model:              %s\n", eng.Config.DefaultModel)
	fmt.Printf("Embedding model:    %s\n", eng.Config.DefaultEmbeddingModel)
	fmt.Printf("Classifier model:   %s\n", eng.Config.DefaultClassifierModel)
	fmt.Printf("Ollama host:        %s\n", eng.Config.OllamaHost)
	fmt.Printf("Summaries:          %d (%d embedded)\n", len(summaries), summaryVectors)
	fmt.Printf("Entities:           %d (%d embedded)\n", len(entities), entityVectors)
	return nil
}
