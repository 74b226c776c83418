package main

import (
	"context"
	"fmt"

	"github.com/bradylowe/paranoid-coder/internal/jobs"
	"github.com/bradylowe/paranoid-coder/internal/logging"
	"github.com/bradylowe/paranoid-coder/internal/summarizer"

	"github.com/spf13/cobra"
)

var (
	summarizeForce  bool
	summarizeDryRun bool
	summarizeModel  string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [path]",
	Short: "Summarize a file or directory tree bottom-up",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().BoolVarP(&summarizeForce, "force", "f", false, "Re-summarize even if content is unchanged")
	summarizeCmd.Flags().BoolVar(&summarizeDryRun, "dry-run", false, "Report what would be summarized without calling the model")
	summarizeCmd.Flags().StringVar(&summarizeModel, "model", "", "Override the default summarization model")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat})

	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	target := eng.Root
	if len(args) == 1 {
		target = args[0]
	}

	model := summarizeModel
	if model == "" {
		model = eng.Config.DefaultModel
	}

	templates, err := summarizer.LoadTemplateSet(eng.Root)
	if err != nil {
		return err
	}

	walker := &summarizer.Walker{
		DB:          eng.DB,
		Model:       eng.Model,
		Config:      *eng.Config,
		Logger:      logger,
		Matcher:     eng.Matcher,
		ProjectRoot: eng.Root,
		Templates:   templates,
	}

	snap, err := runAsJob(logger, jobs.TypeSummarize, func(ctx context.Context, job *jobs.Job, progress func(int)) (interface{}, error) {
		return walker.Walk(ctx, target, summarizer.Options{
			Model:        model,
			ContextLevel: eng.Config.DefaultContextLevel,
			Force:        summarizeForce,
			DryRun:       summarizeDryRun,
		})
	})
	if err != nil {
		return err
	}
	if snap.Status == jobs.Failed {
		return fmt.Errorf("summarize failed: %s", snap.Error)
	}
	if snap.Status == jobs.Cancelled {
		fmt.Println("summarize cancelled")
		return nil
	}

	stats := snap.Result.(*summarizer.Stats)
	fmt.Printf("Summarized %d file(s), %d director%s (skipped %d file(s), %d director%s)\n",
		stats.FilesSummarized, stats.DirsSummarized, plural(stats.DirsSummarized, "y", "ies"),
		stats.FilesSkipped, stats.DirsSkipped, plural(stats.DirsSkipped, "y", "ies"))
	for _, e := range stats.Errors {
		fmt.Printf("  error: %s: %v\n", e.Path, e.Err)
	}
	return nil
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
