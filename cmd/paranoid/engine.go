package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/bradylowe/paranoid-coder/internal/config"
	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/graphapi"
	"github.com/bradylowe/paranoid-coder/internal/ignorematch"
	"github.com/bradylowe/paranoid-coder/internal/logging"
	"github.com/bradylowe/paranoid-coder/internal/modelhost"
	"github.com/bradylowe/paranoid-coder/internal/project"
	"github.com/bradylowe/paranoid-coder/internal/store"
)

// engine bundles the per-command dependencies every subcommand except init
// needs: the resolved project root, merged config, an open store, a model
// host client, and the ignore matcher. Built fresh per invocation rather
// than cached across commands, since the CLI process is short-lived.
type engine struct {
	Root    string
	Config  *config.Config
	DB      *store.DB
	Model   *modelhost.Client
	Matcher *ignorematch.Matcher
	Logger  *logging.Logger
}

func newEngine(logger *logging.Logger) (*engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "get current directory", err)
	}

	root, err := project.Require(cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(root, project.DirName, project.SummariesDB)
	db, err := store.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}

	matcher, err := buildMatcher(root, cfg.Ignore)
	if err != nil {
		db.Close()
		return nil, err
	}

	model := modelhost.New(cfg.OllamaHost, time.Duration(cfg.ModelTimeoutSeconds)*time.Second)

	return &engine{
		Root:    root,
		Config:  cfg,
		DB:      db,
		Model:   model,
		Matcher: matcher,
		Logger:  logger,
	}, nil
}

func (e *engine) Close() {
	if e.DB != nil {
		e.DB.Close()
	}
}

// buildMatcher assembles the ignore matcher from built-in patterns,
// additional patterns, and .gitignore (when enabled) — the provenance
// tiers named in §3's IgnorePattern model.
func buildMatcher(root string, cfg config.IgnoreConfig) (*ignorematch.Matcher, error) {
	var patterns []ignorematch.Pattern
	for _, p := range cfg.BuiltinPatterns {
		patterns = append(patterns, ignorematch.Pattern{Raw: p, Source: ignorematch.SourceBuiltin})
	}
	for _, p := range cfg.AdditionalPatterns {
		patterns = append(patterns, ignorematch.Pattern{Raw: p, Source: ignorematch.SourceAdditional})
	}
	if cfg.UseGitignore {
		lines, err := ignorematch.ReadIgnoreFile(filepath.Join(root, ".gitignore"))
		if err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "read .gitignore", err)
		}
		for _, l := range lines {
			patterns = append(patterns, ignorematch.Pattern{Raw: l, Source: ignorematch.SourceFile})
		}
	}
	return ignorematch.New(patterns), nil
}

// listProjectFiles walks root and returns every non-ignored regular file,
// project-root-relative patterns resolved the same way the summarizer's
// walk applies them (internal/summarizer/walk.go's walkDir).
func listProjectFiles(root string, matcher *ignorematch.Matcher) ([]string, error) {
	var files []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return pcerrors.Wrap(pcerrors.IoError, "read directory", err)
		}
		for _, entry := range entries {
			childPath := filepath.Join(dir, entry.Name())
			relPath, ok := ignorematch.RelativeTo(root, childPath)
			if ok && matcher != nil && matcher.Match(relPath, entry.IsDir()) {
				continue
			}
			if entry.IsDir() {
				if err := walk(childPath); err != nil {
					return err
				}
				continue
			}
			files = append(files, childPath)
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return files, nil
}

func newGraphAPI(db *store.DB) *graphapi.API {
	return &graphapi.API{DB: db}
}

func cmdContext() context.Context {
	return context.Background()
}
