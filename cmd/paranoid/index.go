package main

import (
	"context"
	"fmt"

	"github.com/bradylowe/paranoid-coder/internal/indexer"
	"github.com/bradylowe/paranoid-coder/internal/jobs"
	"github.com/bradylowe/paranoid-coder/internal/logging"

	"github.com/spf13/cobra"
)

var (
	indexFull           bool
	indexEmbeddingModel string
	indexSkipSummaries  bool
	indexSkipEntities   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed summaries and entities into the vector index",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "Re-embed everything, ignoring content-hash/model staleness checks")
	indexCmd.Flags().StringVar(&indexEmbeddingModel, "embedding-model", "", "Override the default embedding model")
	indexCmd.Flags().BoolVar(&indexSkipSummaries, "skip-summaries", false, "Don't index summary embeddings")
	indexCmd.Flags().BoolVar(&indexSkipEntities, "skip-entities", false, "Don't index entity embeddings")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat})

	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	model := indexEmbeddingModel
	if model == "" {
		model = eng.Config.DefaultEmbeddingModel
	}

	mode := indexer.ModeIncremental
	if indexFull {
		mode = indexer.ModeFull
	}

	ix := &indexer.Indexer{DB: eng.DB, Embedder: eng.Model}

	snap, err := runAsJob(logger, jobs.TypeIndex, func(ctx context.Context, job *jobs.Job, progress func(int)) (interface{}, error) {
		return ix.Run(ctx, indexer.Options{
			Mode:           mode,
			Model:          model,
			IndexSummaries: !indexSkipSummaries,
			IndexEntities:  !indexSkipEntities,
		})
	})
	if err != nil {
		return err
	}
	if snap.Status == jobs.Failed {
		return fmt.Errorf("index failed: %s", snap.Error)
	}
	if snap.Status == jobs.Cancelled {
		fmt.Println("index cancelled")
		return nil
	}

	stats := snap.Result.(*indexer.Stats)
	fmt.Printf("Indexed %d summar%s (skipped %d), %d entit%s (skipped %d)\n",
		stats.SummariesIndexed, plural(stats.SummariesIndexed, "y", "ies"), stats.SummariesSkipped,
		stats.EntitiesIndexed, plural(stats.EntitiesIndexed, "y", "ies"), stats.EntitiesSkipped)
	return nil
}
