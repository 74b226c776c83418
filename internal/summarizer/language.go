package summarizer

import (
	"path/filepath"
	"strings"

	"github.com/bradylowe/paranoid-coder/internal/graphextract"
)

// extensionLanguages maps file extensions to a human-readable language tag
// stored on the Summary row. Unlike graphextract.LanguageForPath (which only
// recognizes languages the code-graph extractor actually parses), every
// summarizable file gets a language tag — summarization works on any text
// file, analysis does not.
var extensionLanguages = map[string]string{
	".py":   "python",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".go":   "go",
	".rs":   "rust",
	".java": "java",
	".rb":   "ruby",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".hpp":  "cpp",
	".md":   "markdown",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".sh":   "shell",
}

// detectLanguage tags path with a language for the Summary row. Prefers
// graphextract's registry (the languages analysis actually understands) and
// falls back to the broader extension map for everything else.
func detectLanguage(path string) string {
	if lang := graphextract.LanguageForPath(path); lang != "" {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(path))
	return extensionLanguages[ext]
}
