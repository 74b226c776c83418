package query

import (
	"context"
	"errors"
	"testing"

	"github.com/bradylowe/paranoid-coder/internal/graphapi"
	"github.com/bradylowe/paranoid-coder/internal/modelhost"
	"github.com/bradylowe/paranoid-coder/internal/store"
)

type fakeGraphAPI struct {
	definitions map[string][]store.Entity
	callers     map[int64][]graphapi.CallerInfo
	callees     map[int64][]graphapi.CalleeInfo
}

func (f *fakeGraphAPI) FindDefinition(name string) ([]store.Entity, error) {
	return f.definitions[name], nil
}

func (f *fakeGraphAPI) GetCallers(entityID int64) ([]graphapi.CallerInfo, error) {
	return f.callers[entityID], nil
}

func (f *fakeGraphAPI) GetCallees(entityID int64) ([]graphapi.CalleeInfo, error) {
	return f.callees[entityID], nil
}

type fakeRouterDB struct {
	summaries   map[string]store.Summary
	vectorCount int
	neighbors   []store.Match
}

func (f *fakeRouterDB) GetSummary(path string) (store.Summary, bool, error) {
	s, ok := f.summaries[path]
	return s, ok, nil
}

func (f *fakeRouterDB) VectorCount(kind store.VectorKind) (int, error) {
	return f.vectorCount, nil
}

func (f *fakeRouterDB) NearestNeighbors(kind store.VectorKind, q []float32, k int) ([]store.Match, error) {
	if len(f.neighbors) > k {
		return f.neighbors[:k], nil
	}
	return f.neighbors, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, extra map[string]interface{}) (modelhost.GenerateResult, error) {
	if f.err != nil {
		return modelhost.GenerateResult{}, f.err
	}
	return modelhost.GenerateResult{Text: f.text}, nil
}

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func TestAsk_UsageWithSingleMatchReturnsCallersNoGenerate(t *testing.T) {
	r := &Router{
		Classifier: &fakeClassifier{response: "USAGE"},
		GraphAPI: &fakeGraphAPI{
			definitions: map[string][]store.Entity{"User.login": {{ID: 1, QualifiedName: "User.login"}}},
			callers:     map[int64][]graphapi.CallerInfo{1: {{QualifiedName: "Session.start", FilePath: "session.py", Location: "session.py:10"}}},
		},
		Generator: &fakeGenerator{err: errors.New("must not be called")},
	}

	result, err := r.Ask(context.Background(), "where is User.login called?", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != Usage {
		t.Errorf("expected Usage, got %v", result.Type)
	}
	if len(result.Sources) != 1 || result.Sources[0].QualifiedName != "Session.start" {
		t.Errorf("unexpected sources: %+v", result.Sources)
	}
}

func TestAsk_UsageWithAmbiguousMatchFallsBackToRAG(t *testing.T) {
	r := &Router{
		Classifier: &fakeClassifier{response: "USAGE"},
		GraphAPI: &fakeGraphAPI{
			definitions: map[string][]store.Entity{
				"login": {{ID: 1, QualifiedName: "User.login"}, {ID: 2, QualifiedName: "Admin.login"}},
			},
		},
		DB: &fakeRouterDB{
			vectorCount: 1,
			summaries:   map[string]store.Summary{"a.py": {Path: "a.py", Description: "handles login"}},
			neighbors:   []store.Match{{ObjectID: "a.py", Score: 0.9}},
		},
		Embedder:  &fakeEmbedder{vec: []float32{0.1, 0.2}},
		Generator: &fakeGenerator{text: "login is handled by several classes"},
	}

	result, err := r.Ask(context.Background(), "where is login called?", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer == "" {
		t.Error("expected RAG fallback to synthesize an answer")
	}
}

func TestAsk_DefinitionReturnsMatchesNoGenerate(t *testing.T) {
	r := &Router{
		Classifier: &fakeClassifier{response: "DEFINITION"},
		GraphAPI: &fakeGraphAPI{
			definitions: map[string][]store.Entity{
				"authenticate": {{ID: 5, FilePath: "auth.py", StartLine: 12, QualifiedName: "auth.authenticate", Signature: "def authenticate(user)", Docstring: "Checks credentials."}},
			},
		},
		Generator: &fakeGenerator{err: errors.New("must not be called")},
	}

	result, err := r.Ask(context.Background(), "find the authenticate function", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != Definition {
		t.Errorf("expected Definition, got %v", result.Type)
	}
	if len(result.Sources) != 1 || result.Sources[0].Signature != "def authenticate(user)" {
		t.Errorf("unexpected sources: %+v", result.Sources)
	}
}

func TestAsk_ExplanationRetrievesAndSynthesizes(t *testing.T) {
	r := &Router{
		Classifier: &fakeClassifier{response: "EXPLANATION"},
		GraphAPI:   &fakeGraphAPI{},
		DB: &fakeRouterDB{
			vectorCount: 2,
			summaries: map[string]store.Summary{
				"auth.py": {Path: "auth.py", Description: "implements JWT validation"},
			},
			neighbors: []store.Match{{ObjectID: "auth.py", Score: 0.87}},
		},
		Embedder:  &fakeEmbedder{vec: []float32{0.3, 0.4}},
		Generator: &fakeGenerator{text: "JWT validation checks the signature and expiry."},
	}

	result, err := r.Ask(context.Background(), "explain JWT validation", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "JWT validation checks the signature and expiry." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if len(result.Sources) != 1 || result.Sources[0].Path != "auth.py" {
		t.Errorf("unexpected sources: %+v", result.Sources)
	}
}

func TestAsk_EmptyVectorIndexReturnsIndexEmptyError(t *testing.T) {
	r := &Router{
		Classifier: &fakeClassifier{response: "EXPLANATION"},
		GraphAPI:   &fakeGraphAPI{},
		DB:         &fakeRouterDB{vectorCount: 0},
	}

	_, err := r.Ask(context.Background(), "explain the auth flow", Options{})
	if err == nil {
		t.Fatal("expected an error for empty vector index")
	}
}

func TestAsk_ForceRAGSkipsClassificationAndGraphRouting(t *testing.T) {
	r := &Router{
		Classifier: &fakeClassifier{response: "USAGE"},
		GraphAPI: &fakeGraphAPI{
			definitions: map[string][]store.Entity{"login": {{ID: 1, QualifiedName: "User.login"}}},
			callers:     map[int64][]graphapi.CallerInfo{1: {{QualifiedName: "Session.start"}}},
		},
		DB: &fakeRouterDB{
			vectorCount: 1,
			summaries:   map[string]store.Summary{"a.py": {Path: "a.py", Description: "login logic"}},
			neighbors:   []store.Match{{ObjectID: "a.py", Score: 0.5}},
		},
		Embedder:  &fakeEmbedder{vec: []float32{0.1}},
		Generator: &fakeGenerator{text: "forced RAG answer"},
	}

	result, err := r.Ask(context.Background(), "where is login called?", Options{ForceRAG: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "forced RAG answer" {
		t.Errorf("expected --force-rag to take the RAG path, got %+v", result)
	}
}

func TestAsk_GenerationUsesGenerationSystemPrompt(t *testing.T) {
	var capturedPrompt string
	r := &Router{
		Classifier: &fakeClassifier{response: "GENERATION"},
		GraphAPI:   &fakeGraphAPI{},
		DB: &fakeRouterDB{
			vectorCount: 1,
			summaries:   map[string]store.Summary{"a.py": {Path: "a.py", Description: "existing test helpers"}},
			neighbors:   []store.Match{{ObjectID: "a.py", Score: 0.5}},
		},
		Embedder: &fakeEmbedder{vec: []float32{0.1}},
		Generator: &capturingGenerator{onGenerate: func(prompt string) {
			capturedPrompt = prompt
		}},
	}

	_, err := r.Ask(context.Background(), "write a test for login", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedPrompt == "" || capturedPrompt[:len(generationSystemPrompt)] != generationSystemPrompt {
		t.Errorf("expected generation system prompt to lead the request, got %q", capturedPrompt)
	}
}

type capturingGenerator struct {
	onGenerate func(prompt string)
}

func (c *capturingGenerator) Generate(ctx context.Context, model, prompt string, extra map[string]interface{}) (modelhost.GenerateResult, error) {
	c.onGenerate(prompt)
	return modelhost.GenerateResult{Text: "generated code"}, nil
}
