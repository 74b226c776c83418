package graphextract

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// LanguageSpec registers what the extractor needs to know about one source
// language: its tree-sitter grammar, which node types represent
// functions/methods/classes/imports/calls, and the walker that extracts
// entities, relationships and docstrings from a parsed file (§4.D,
// "registry keyed by language tag"). Import module paths are resolved
// separately, by ResolveModulePath.
type LanguageSpec struct {
	Name               string
	Extensions         []string
	Grammar            *sitter.Language
	FunctionNodeTypes  []string
	MethodNodeTypes    []string
	ClassNodeTypes     []string
	ImportNodeTypes    []string
	CallNodeTypes      []string
	walkFile           func(e *Extractor, path string, source []byte, root *sitter.Node) File
}

var registry = map[string]*LanguageSpec{}

func register(spec *LanguageSpec) {
	registry[spec.Name] = spec
	for _, ext := range spec.Extensions {
		extToLanguage[ext] = spec.Name
	}
}

var extToLanguage = map[string]string{}

func init() {
	register(&LanguageSpec{
		Name:              "python",
		Extensions:        []string{".py"},
		Grammar:           python.GetLanguage(),
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_definition"},
		ImportNodeTypes:   []string{"import_statement", "import_from_statement"},
		CallNodeTypes:     []string{"call"},
		walkFile:          walkPythonFile,
	})
	register(&LanguageSpec{
		Name:              "typescript",
		Extensions:        []string{".ts", ".tsx"},
		Grammar:           tsx.GetLanguage(),
		FunctionNodeTypes: []string{"function_declaration", "function", "arrow_function", "generator_function_declaration"},
		MethodNodeTypes:   []string{"method_definition"},
		ClassNodeTypes:    []string{"class_declaration"},
		ImportNodeTypes:   []string{"import_statement"},
		CallNodeTypes:     []string{"call_expression"},
		walkFile:          walkTypeScriptFile,
	})
}

// LanguageForPath returns the registered language name for a file
// extension, or "" if unsupported (§4.D: unsupported languages are skipped,
// not an error).
func LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return extToLanguage[ext]
}

// SupportedLanguages lists every language with a registered grammar.
func SupportedLanguages() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func specFor(language string) (*LanguageSpec, error) {
	spec, ok := registry[language]
	if !ok {
		return nil, pcerrors.New(pcerrors.UnsupportedLanguage, "no extractor registered for language "+language)
	}
	return spec, nil
}

// ResolveModulePath resolves an import's raw module reference into the path
// of an existing file, joined onto the importing file's directory (so it is
// absolute when fromFile is), per language convention:
//   - Python: dotted module name ("pkg.sub.mod") -> "pkg/sub/mod.py" or
//     "pkg/sub/mod/__init__.py", tried in the importing file's directory and
//     then in each ancestor directory up to the filesystem root (mirrors
//     Python's package-relative and absolute imports).
//   - TypeScript: relative specifier ("./x", "../x") -> path joined with the
//     importing file's directory, probing the bare path, then .ts/.tsx/.js,
//     then index.ts/index.tsx. Bare specifiers (package imports, e.g.
//     "react") are left unresolved.
func ResolveModulePath(language, fromFile, moduleRef string, fileExists func(string) bool) (string, bool) {
	switch language {
	case "python":
		return resolvePythonModule(fromFile, moduleRef, fileExists)
	case "typescript":
		return resolveTypeScriptModule(fromFile, moduleRef, fileExists)
	default:
		return "", false
	}
}
