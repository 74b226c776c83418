package main

import (
	"context"
	"fmt"

	"github.com/bradylowe/paranoid-coder/internal/graphextract"
	"github.com/bradylowe/paranoid-coder/internal/jobs"
	"github.com/bradylowe/paranoid-coder/internal/logging"
	"github.com/bradylowe/paranoid-coder/internal/store"

	"github.com/spf13/cobra"
)

var analyzeForce bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract the static code graph (entities and relationships)",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeForce, "force", "f", false, "Re-analyze every file even if its content hash is unchanged")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat})

	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	files, err := listProjectFiles(eng.Root, eng.Matcher)
	if err != nil {
		return err
	}

	extractor := graphextract.NewExtractor()
	adapter := store.NewGraphExtractAdapter(eng.DB)

	snap, err := runAsJob(logger, jobs.TypeAnalyze, func(ctx context.Context, job *jobs.Job, progress func(int)) (interface{}, error) {
		return graphextract.AnalyzeProject(ctx, extractor, adapter, files, analyzeForce)
	})
	if err != nil {
		return err
	}
	if snap.Status == jobs.Failed {
		return fmt.Errorf("analyze failed: %s", snap.Error)
	}
	if snap.Status == jobs.Cancelled {
		fmt.Println("analyze cancelled")
		return nil
	}

	stats := snap.Result.(*graphextract.Stats)
	fmt.Printf("Analyzed %d file(s) (skipped %d unchanged): %d entities, %d relationships\n",
		stats.FilesAnalyzed, stats.FilesSkipped, stats.EntitiesExtracted, stats.RelationshipsExtracted)
	for _, e := range stats.Errors {
		fmt.Printf("  error: %s: %v\n", e.Path, e.Err)
	}
	return nil
}
