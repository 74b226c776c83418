package ignorematch

import (
	"path/filepath"
)

// ParanoidIgnoreFile and GitignoreFile are the two ignore files consulted at
// the project root (§6).
const (
	ParanoidIgnoreFile = ".paranoidignore"
	GitignoreFile      = ".gitignore"
)

// LoadOptions configures pattern loading (mirrors config.IgnoreConfig).
type LoadOptions struct {
	UseGitignore       bool
	BuiltinPatterns    []string
	AdditionalPatterns []string
}

// Load builds the combined, ordered pattern list for a project root:
// built-ins, then .paranoidignore, then (if enabled) .gitignore, then
// configured additional patterns. Order matters for "last rule wins"
// negation semantics, matching gitignore's own layering.
func Load(projectRoot string, opts LoadOptions) ([]Pattern, error) {
	var patterns []Pattern

	for _, p := range opts.BuiltinPatterns {
		patterns = append(patterns, Pattern{Raw: p, Source: SourceBuiltin})
	}

	fileLines, err := ReadIgnoreFile(filepath.Join(projectRoot, ParanoidIgnoreFile))
	if err != nil {
		return nil, err
	}
	for _, l := range fileLines {
		patterns = append(patterns, Pattern{Raw: l, Source: SourceFile})
	}

	if opts.UseGitignore {
		gitLines, err := ReadIgnoreFile(filepath.Join(projectRoot, GitignoreFile))
		if err != nil {
			return nil, err
		}
		for _, l := range gitLines {
			patterns = append(patterns, Pattern{Raw: l, Source: SourceFile})
		}
	}

	for _, p := range opts.AdditionalPatterns {
		patterns = append(patterns, Pattern{Raw: p, Source: SourceAdditional})
	}

	return patterns, nil
}

// IsIgnored is a convenience wrapper: load the combined patterns for
// projectRoot, compile a Matcher, and test path (which must be under root).
func IsIgnored(projectRoot, path string, isDir bool, opts LoadOptions) (bool, error) {
	patterns, err := Load(projectRoot, opts)
	if err != nil {
		return false, err
	}
	rel, ok := RelativeTo(projectRoot, path)
	if !ok {
		return false, nil
	}
	return New(patterns).Match(rel, isDir), nil
}
