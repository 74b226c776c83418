// Package summarizer implements the bottom-up summarization walk (§4.E):
// incremental re-summarization of files and directories driven by content/
// tree hashing and smart invalidation, prompt construction from the
// teacher-ported templates, and doc-quality side-effects.
package summarizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bradylowe/paranoid-coder/internal/config"
	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/hashutil"
	"github.com/bradylowe/paranoid-coder/internal/ignorematch"
	"github.com/bradylowe/paranoid-coder/internal/logging"
	"github.com/bradylowe/paranoid-coder/internal/modelhost"
	"github.com/bradylowe/paranoid-coder/internal/store"
)

// Generator is the subset of modelhost.Client the summarizer depends on,
// kept as an interface so tests can fake a model host without an HTTP
// server.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, extraOptions map[string]interface{}) (modelhost.GenerateResult, error)
}

// DB is the persistence surface the walk depends on. *store.DB satisfies it
// directly, including the hashutil.ChildHashLister/SummaryLookup interfaces
// it embeds.
type DB interface {
	hashutil.ChildHashLister
	hashutil.SummaryLookup
	GraphStore
	contextChanger
	GetSummary(path string) (store.Summary, bool, error)
	UpsertSummary(s store.Summary) error
	SetSummaryContext(c store.SummaryContext) error
	SetDocQuality(q store.DocQuality) error
}

// Options configures one Walk invocation.
type Options struct {
	Model        string
	ContextLevel int
	Force        bool
	DryRun       bool
}

// Stats summarizes one Walk run.
type Stats struct {
	FilesSummarized int
	FilesSkipped    int
	DirsSummarized  int
	DirsSkipped     int
	Errors          []FileError
}

// FileError records a single path's summarization failure without aborting
// the walk (§4.E: "Errors on individual items ... do not abort the walk").
type FileError struct {
	Path string
	Err  error
}

// Walker drives the bottom-up summarization walk.
type Walker struct {
	DB          DB
	Model       Generator
	Config      config.Config
	Logger      *logging.Logger
	Matcher     *ignorematch.Matcher
	ProjectRoot string
	// Templates is the prompt template set, built-ins merged with any
	// project override (§6). Nil is treated as DefaultTemplateSet().
	Templates *TemplateSet
}

func (w *Walker) templates() *TemplateSet {
	if w.Templates != nil {
		return w.Templates
	}
	return DefaultTemplateSet()
}

// Walk summarizes root (a file or directory) bottom-up, skipping ignored
// paths and unchanged content unless opts.Force is set.
func (w *Walker) Walk(ctx context.Context, root string, opts Options) (*Stats, error) {
	stats := &Stats{}
	info, err := os.Stat(root)
	if err != nil {
		return stats, pcerrors.Wrap(pcerrors.IoError, "stat walk root", err)
	}
	if info.IsDir() {
		if _, _, err := w.walkDir(ctx, root, opts, stats); err != nil {
			return stats, err
		}
	} else {
		if _, _, err := w.summarizeFile(ctx, root, opts, stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

type childResult struct {
	name        string
	kind        string
	description string
}

func (w *Walker) walkDir(ctx context.Context, dirPath string, opts Options, stats *Stats) (hash, description string, err error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return "", "", pcerrors.Wrap(pcerrors.IoError, "read directory", err)
	}

	var children []childResult
	for _, entry := range entries {
		childPath := filepath.Join(dirPath, entry.Name())
		relPath, ok := ignorematch.RelativeTo(w.ProjectRoot, childPath)
		if ok && w.Matcher != nil && w.Matcher.Match(relPath, entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			_, desc, err := w.walkDir(ctx, childPath, opts, stats)
			if err != nil {
				stats.Errors = append(stats.Errors, FileError{Path: childPath, Err: err})
				continue
			}
			children = append(children, childResult{name: entry.Name(), kind: "directory", description: desc})
		} else {
			_, desc, err := w.summarizeFile(ctx, childPath, opts, stats)
			if err != nil {
				stats.Errors = append(stats.Errors, FileError{Path: childPath, Err: err})
				continue
			}
			children = append(children, childResult{name: entry.Name(), kind: "file", description: desc})
		}
	}

	sort.Slice(children, func(i, j int) bool { return children[i].name < children[j].name })

	treeHash, err := hashutil.TreeHash(dirPath, w.DB)
	if err != nil {
		return "", "", err
	}

	needs, err := hashutil.NeedsSummarization(dirPath, treeHash, w.DB, nil)
	if err != nil {
		return "", "", err
	}
	if !needs && !opts.Force {
		stats.DirsSkipped++
		existing, found, err := w.DB.GetSummary(dirPath)
		if err != nil {
			return "", "", err
		}
		if found {
			return treeHash, existing.Description, nil
		}
		return treeHash, "", nil
	}
	if opts.DryRun {
		stats.DirsSummarized++
		return treeHash, "", nil
	}

	existing, _, err := w.DB.GetSummary(dirPath)
	if err != nil {
		return "", "", err
	}

	promptChildren := make([]ChildSummary, len(children))
	for i, c := range children {
		promptChildren[i] = ChildSummary{Name: c.name, Kind: c.kind, Description: c.description}
	}
	isRoot := filepath.Clean(dirPath) == filepath.Clean(w.ProjectRoot)
	prompt := w.templates().DirectorySummaryPrompt(dirPath, promptChildren, existing.Description, isRoot)

	model := opts.Model
	if model == "" {
		model = w.Config.DefaultModel
	}

	result, genErr := w.Model.Generate(ctx, model, prompt, nil)

	summary := store.Summary{
		Path:          dirPath,
		Kind:          store.KindDirectory,
		Hash:          treeHash,
		PromptVersion: PromptVersion,
		ContextLevel:  0,
		GeneratedAt:   existing.GeneratedAt,
		UpdatedAt:     time.Now(),
	}
	if summary.GeneratedAt.IsZero() {
		summary.GeneratedAt = summary.UpdatedAt
	}

	if genErr != nil {
		writeOverflowOrFail(&summary, genErr)
	} else {
		summary.Description = result.Text
		summary.Model = model
		summary.ModelVersion = result.ModelVersion
		summary.TokensUsed = result.TokensUsed
		summary.GenerationTimeMs = result.GenerationTimeMs
	}

	if err := w.DB.UpsertSummary(summary); err != nil {
		return "", "", err
	}
	stats.DirsSummarized++
	return treeHash, summary.Description, nil
}

func (w *Walker) summarizeFile(ctx context.Context, path string, opts Options, stats *Stats) (hash, description string, err error) {
	relPath, ok := ignorematch.RelativeTo(w.ProjectRoot, path)
	if ok && w.Matcher != nil && w.Matcher.Match(relPath, false) {
		stats.FilesSkipped++
		return "", "", nil
	}

	contentHash, err := hashutil.ContentHash(path)
	if err != nil {
		return "", "", err
	}

	contextLevel := opts.ContextLevel
	if contextLevel > 1 {
		// context-level 2 (with-RAG) is reserved; treat as level 1 until
		// retrieval-augmented prompts are implemented (§4.E step 4).
		contextLevel = 1
	}

	var invalidator hashutil.SmartInvalidator
	var currentImportsHash string
	if contextLevel >= 1 {
		imports, err := w.DB.ImportsOf(path)
		if err != nil {
			return "", "", err
		}
		currentImportsHash = ImportsHash(imports)
		invalidator = newSmartInvalidator(w.DB, w.Config.Invalidation, currentImportsHash)
	}

	needs, err := hashutil.NeedsSummarization(path, contentHash, w.DB, invalidator)
	if err != nil {
		return "", "", err
	}
	if !needs && !opts.Force {
		stats.FilesSkipped++
		existing, found, err := w.DB.GetSummary(path)
		if err != nil {
			return "", "", err
		}
		if found {
			return contentHash, existing.Description, nil
		}
		return contentHash, "", nil
	}
	if opts.DryRun {
		stats.FilesSummarized++
		return contentHash, "", nil
	}

	existing, _, err := w.DB.GetSummary(path)
	if err != nil {
		return "", "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", pcerrors.Wrap(pcerrors.IoError, "read file for summarization", err)
	}

	var graphContext string
	if contextLevel >= 1 {
		graphContext, err = BuildGraphContextForFile(w.DB, path)
		if err != nil {
			return "", "", err
		}
	}

	language := detectLanguage(path)
	prompt := w.templates().FileSummaryPrompt(path, language, string(content), existing.Description, graphContext)

	model := opts.Model
	if model == "" {
		model = w.Config.DefaultModel
	}

	result, genErr := w.Model.Generate(ctx, model, prompt, nil)
	summary := store.Summary{
		Path:          path,
		Kind:          store.KindFile,
		Hash:          contentHash,
		Extension:     filepath.Ext(path),
		Language:      language,
		PromptVersion: PromptVersion,
		GeneratedAt:   existing.GeneratedAt,
		UpdatedAt:     time.Now(),
	}
	if summary.GeneratedAt.IsZero() {
		summary.GeneratedAt = summary.UpdatedAt
	}
	if graphContext != "" {
		summary.ContextLevel = 1
	}

	if genErr != nil {
		writeOverflowOrFail(&summary, genErr)
	} else {
		summary.Description = result.Text
		summary.Model = model
		summary.ModelVersion = result.ModelVersion
		summary.TokensUsed = result.TokensUsed
		summary.GenerationTimeMs = result.GenerationTimeMs
	}

	if err := w.DB.UpsertSummary(summary); err != nil {
		return "", "", err
	}

	if genErr == nil && summary.ContextLevel >= 1 {
		if err := w.recordContextSnapshot(path, currentImportsHash); err != nil {
			return "", "", err
		}
		if err := w.updateDocQuality(path); err != nil {
			return "", "", err
		}
	}

	stats.FilesSummarized++
	return contentHash, summary.Description, nil
}

// writeOverflowOrFail mirrors the original implementation's behavior on a
// generation error (ContextOverflow or any other): the summary is still
// written, with the error recorded and a placeholder description, rather
// than aborting the walk.
func writeOverflowOrFail(summary *store.Summary, genErr error) {
	summary.Error = genErr.Error()
	summary.Description = fmt.Sprintf("Summary not available: %v", genErr)
}

func (w *Walker) recordContextSnapshot(path, importsHash string) error {
	entities, err := w.DB.EntitiesForFile(path)
	if err != nil {
		return err
	}
	var callersCount, calleesCount int
	for _, ent := range entities {
		callers, err := w.DB.CallersOf(ent.ID)
		if err != nil {
			return err
		}
		callees, err := w.DB.CalleesOf(ent.ID)
		if err != nil {
			return err
		}
		callersCount += len(callers)
		calleesCount += len(callees)
	}
	return w.DB.SetSummaryContext(store.SummaryContext{
		Path:           path,
		ImportsHash:    importsHash,
		CallersCount:   callersCount,
		CalleesCount:   calleesCount,
		ContextVersion: SummaryContextVersion,
	})
}

func (w *Walker) updateDocQuality(path string) error {
	entities, err := w.DB.EntitiesForFile(path)
	if err != nil {
		return err
	}
	for _, ent := range entities {
		callers, err := w.DB.CallersOf(ent.ID)
		if err != nil {
			return err
		}
		if err := w.DB.SetDocQuality(ComputeDocQuality(ent, len(callers))); err != nil {
			return err
		}
	}
	return nil
}
