// Package query implements the hybrid natural-language query router
// (§4.G): classify a question, route USAGE/DEFINITION questions directly to
// the Graph API with no answer-LLM call, and route EXPLANATION/GENERATION
// questions (and any graph-path fallback) through vector retrieval plus
// answer synthesis.
package query

import (
	"context"
	"fmt"
	"strings"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/graphapi"
	"github.com/bradylowe/paranoid-coder/internal/modelhost"
	"github.com/bradylowe/paranoid-coder/internal/store"
)

// explanationSystemPrompt is ported from original_source's ASK_SYSTEM.
const explanationSystemPrompt = "You are answering a question about a codebase. Use only the following codebase summaries. If the answer is not in the summaries, say so. Be concise and cite paths when relevant."

// generationSystemPrompt is this project's generation-oriented counterpart
// to explanationSystemPrompt — the original implementation had no distinct
// GENERATION path, so this is supplemented in its style.
const generationSystemPrompt = "You are writing code for a codebase. Use the following codebase summaries as context for conventions and existing structure. Produce only the requested code, in a fenced code block, with a brief note on where it belongs."

const previewLength = 100

// Generator is the subset of modelhost.Client the router needs for answer
// synthesis.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, extraOptions map[string]interface{}) (modelhost.GenerateResult, error)
}

// Embedder is the subset of modelhost.Client the router needs to embed the
// question for retrieval.
type Embedder interface {
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// DB is the persistence surface the router depends on for retrieval.
type DB interface {
	GetSummary(path string) (store.Summary, bool, error)
	VectorCount(kind store.VectorKind) (int, error)
	NearestNeighbors(kind store.VectorKind, q []float32, k int) ([]store.Match, error)
}

// GraphAPI is the subset of graphapi.API the router depends on for
// graph-backed routing and optional context enrichment.
type GraphAPI interface {
	FindDefinition(name string) ([]store.Entity, error)
	GetCallers(entityID int64) ([]graphapi.CallerInfo, error)
	GetCallees(entityID int64) ([]graphapi.CalleeInfo, error)
}

// Options configures one Ask call.
type Options struct {
	Model           string
	EmbeddingModel  string
	ClassifierModel string
	ForceRAG        bool
	TopK            int
}

const defaultTopK = 5

// Source is one structured reference backing an answer: a graph hit (caller/
// definition) or a RAG retrieval hit (path, similarity, preview).
type Source struct {
	Path             string
	Location         string
	QualifiedName    string
	Signature        string
	DocstringPreview string
	SimilarityScore  float64
	Preview          string
}

// Result is the router's response to one question.
type Result struct {
	Answer  string
	Type    Type
	Sources []Source
}

// Router drives the classify-then-route decision of §4.G.
type Router struct {
	Classifier Classifier
	GraphAPI   GraphAPI
	DB         DB
	Generator  Generator
	Embedder   Embedder
}

// Ask classifies question and routes it to the graph API or to RAG
// synthesis, per §4.G.
func (r *Router) Ask(ctx context.Context, question string, opts Options) (*Result, error) {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}

	var classification Classification
	if opts.ForceRAG {
		classification = Classification{Type: Explanation, EntityName: extractEntity(question)}
	} else {
		classification = Classify(ctx, r.Classifier, opts.ClassifierModel, question)
	}

	if !opts.ForceRAG && classification.EntityName != "" {
		switch classification.Type {
		case Usage:
			if result, ok, err := r.routeUsage(classification.EntityName); err != nil {
				return nil, err
			} else if ok {
				return result, nil
			}
		case Definition:
			if result, ok, err := r.routeDefinition(classification.EntityName); err != nil {
				return nil, err
			} else if ok {
				return result, nil
			}
		}
	}

	return r.routeRAG(ctx, question, classification, opts)
}

// routeUsage implements the USAGE branch: exactly one find_definition match
// returns its callers with no answer-LLM call; zero or ambiguous matches
// fall back to RAG.
func (r *Router) routeUsage(entityName string) (*Result, bool, error) {
	matches, err := r.GraphAPI.FindDefinition(entityName)
	if err != nil {
		return nil, false, err
	}
	if len(matches) != 1 {
		return nil, false, nil
	}

	callers, err := r.GraphAPI.GetCallers(matches[0].ID)
	if err != nil {
		return nil, false, err
	}
	sources := make([]Source, len(callers))
	for i, c := range callers {
		sources[i] = Source{Path: c.FilePath, Location: c.Location, QualifiedName: c.QualifiedName}
	}
	return &Result{Type: Usage, Sources: sources}, true, nil
}

// routeDefinition implements the DEFINITION branch: find_definition matches
// are returned directly with no answer-LLM call. Zero matches falls back to
// RAG, since an empty result set answers nothing.
func (r *Router) routeDefinition(entityName string) (*Result, bool, error) {
	matches, err := r.GraphAPI.FindDefinition(entityName)
	if err != nil {
		return nil, false, err
	}
	if len(matches) == 0 {
		return nil, false, nil
	}

	sources := make([]Source, len(matches))
	for i, e := range matches {
		sources[i] = Source{
			Path:             e.FilePath,
			Location:         fmt.Sprintf("%s:%d", e.FilePath, e.StartLine),
			QualifiedName:    e.QualifiedName,
			Signature:        e.Signature,
			DocstringPreview: truncate(e.Docstring, previewLength),
		}
	}
	return &Result{Type: Definition, Sources: sources}, true, nil
}

// routeRAG implements the EXPLANATION/GENERATION branch and the graph-path
// fallback: retrieve top-K nearest summaries to the question's embedding,
// assemble a context block, optionally append a graph context block for a
// named entity, and synthesize an answer (§4.G step 2, last two bullets).
func (r *Router) routeRAG(ctx context.Context, question string, classification Classification, opts Options) (*Result, error) {
	count, err := r.DB.VectorCount(store.VectorSummary)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, pcerrors.New(pcerrors.IndexEmpty, "vector index is empty").
			WithRemedy("run `paranoid index` to embed summaries before asking explanation questions")
	}

	embeddings, err := r.Embedder.Embed(ctx, opts.EmbeddingModel, []string{question})
	if err != nil {
		return nil, err
	}

	matches, err := r.DB.NearestNeighbors(store.VectorSummary, embeddings[0], opts.TopK)
	if err != nil {
		return nil, err
	}

	var contextParts []string
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		summary, found, err := r.DB.GetSummary(m.ObjectID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		contextParts = append(contextParts, fmt.Sprintf("--- %s ---\n%s", summary.Path, summary.Description))
		sources = append(sources, Source{
			Path:            summary.Path,
			SimilarityScore: m.Score,
			Preview:         truncate(summary.Description, previewLength),
		})
	}

	systemPrompt := explanationSystemPrompt
	if classification.Type == Generation {
		systemPrompt = generationSystemPrompt
	}

	prompt := systemPrompt + "\n\n## Codebase summaries\n\n" + strings.Join(contextParts, "\n\n")
	if classification.EntityName != "" {
		if graphCtx := r.buildEntityGraphContext(classification.EntityName); graphCtx != "" {
			prompt += "\n\n" + graphCtx
		}
	}
	prompt += "\n\n## Question\n" + question + "\n\n## Answer\n"

	result, err := r.Generator.Generate(ctx, opts.Model, prompt, nil)
	if err != nil {
		return nil, err
	}

	return &Result{Answer: result.Text, Type: classification.Type, Sources: sources}, nil
}

// buildEntityGraphContext renders a short callers/callees summary for a
// named entity, appended to the RAG prompt when analysis is available
// (§4.G: "If analysis is available, optionally append a graph context for
// any entity named in the question"). Returns "" if the entity doesn't
// resolve or has no graph data, rather than erroring the whole answer.
func (r *Router) buildEntityGraphContext(entityName string) string {
	matches, err := r.GraphAPI.FindDefinition(entityName)
	if err != nil || len(matches) != 1 {
		return ""
	}
	entity := matches[0]

	callers, err := r.GraphAPI.GetCallers(entity.ID)
	if err != nil {
		return ""
	}
	callees, err := r.GraphAPI.GetCallees(entity.ID)
	if err != nil {
		return ""
	}
	if len(callers) == 0 && len(callees) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Code graph context for %s:", entity.QualifiedName))
	if len(callers) > 0 {
		names := make([]string, len(callers))
		for i, c := range callers {
			names[i] = c.QualifiedName
		}
		lines = append(lines, "  Callers: "+strings.Join(names, ", "))
	}
	if len(callees) > 0 {
		names := make([]string, len(callees))
		for i, c := range callees {
			names[i] = c.QualifiedName
		}
		lines = append(lines, "  Callees: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
