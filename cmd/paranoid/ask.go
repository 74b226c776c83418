package main

import (
	"fmt"
	"strings"

	"github.com/bradylowe/paranoid-coder/internal/logging"
	"github.com/bradylowe/paranoid-coder/internal/query"

	"github.com/spf13/cobra"
)

var (
	askForceRAG bool
	askTopK     int
	askModel    string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question about the codebase",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askForceRAG, "force-rag", false, "Always answer via retrieval + synthesis, skipping graph-based routing")
	askCmd.Flags().IntVar(&askTopK, "top-k", 5, "Number of summaries to retrieve for RAG answers")
	askCmd.Flags().StringVar(&askModel, "model", "", "Override the default answer-synthesis model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{Format: logging.HumanFormat})

	eng, err := newEngine(logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	question := strings.Join(args, " ")

	router := &query.Router{
		Classifier: eng.Model,
		GraphAPI:   newGraphAPI(eng.DB),
		DB:         eng.DB,
		Generator:  eng.Model,
		Embedder:   eng.Model,
	}

	model := askModel
	if model == "" {
		model = eng.Config.DefaultModel
	}

	result, err := router.Ask(cmdContext(), question, query.Options{
		Model:           model,
		EmbeddingModel:  eng.Config.DefaultEmbeddingModel,
		ClassifierModel: eng.Config.DefaultClassifierModel,
		ForceRAG:        askForceRAG,
		TopK:            askTopK,
	})
	if err != nil {
		return err
	}

	if result.Answer != "" {
		fmt.Println(result.Answer)
	}
	if len(result.Sources) > 0 {
		fmt.Println("\n--- Sources ---")
		for _, s := range result.Sources {
			printSource(s)
		}
	}
	return nil
}

func printSource(s query.Source) {
	switch {
	case s.SimilarityScore != 0:
		fmt.Printf("  %s (similarity %.2f): %s\n", s.Path, s.SimilarityScore, s.Preview)
	case s.Signature != "":
		fmt.Printf("  %s: %s — %s\n", s.Location, s.Signature, s.DocstringPreview)
	default:
		fmt.Printf("  %s (%s) at %s\n", s.QualifiedName, s.Path, s.Location)
	}
}
