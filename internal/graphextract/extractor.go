package graphextract

import (
	"context"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// Extractor parses source files into Entities and Relationships using a
// pooled tree-sitter parser, one grammar switch per call (§4.D step 1-2).
type Extractor struct {
	parser *sitter.Parser
}

// NewExtractor creates an Extractor. A single instance is safe to reuse
// across sequential files (not concurrently, mirroring the underlying
// tree-sitter parser's single-threaded contract).
func NewExtractor() *Extractor {
	return &Extractor{parser: sitter.NewParser()}
}

// ExtractFile parses the file at path and returns its entities and
// relationships. An unsupported extension yields a zero-value File with no
// error (§4.D: silently skip, don't fail the walk).
func (e *Extractor) ExtractFile(ctx context.Context, path string) (File, error) {
	language := LanguageForPath(path)
	if language == "" {
		return File{}, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return File{}, pcerrors.Wrap(pcerrors.IoError, "read file for extraction", err)
	}

	return e.ExtractSource(ctx, path, language, source)
}

// ExtractSource parses source bytes already known to be in language.
func (e *Extractor) ExtractSource(ctx context.Context, path, language string, source []byte) (File, error) {
	spec, err := specFor(language)
	if err != nil {
		return File{}, err
	}

	e.parser.SetLanguage(spec.Grammar)
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return File{}, pcerrors.Wrap(pcerrors.ParseError, "parse "+path, err)
	}
	root := tree.RootNode()
	if root == nil {
		return File{}, pcerrors.New(pcerrors.ParseError, "empty parse tree for "+path)
	}
	if root.HasError() {
		// A syntax error anywhere in the file aborts extraction rather than
		// walking tree-sitter's error-recovered partial tree.
		return File{}, nil
	}

	file := spec.walkFile(e, path, source, root)
	file.Path = path
	file.Language = language
	return file, nil
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(source)
}
