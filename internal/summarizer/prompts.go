package summarizer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/project"

	"gopkg.in/yaml.v3"
)

// PromptVersion is bumped whenever template wording or structure changes; it
// is stored with every generated Summary so stale prompts can be detected.
const PromptVersion = "v1"

const defaultTemplateKey = "default"

const defaultFileTemplate = `Generate a concise description ({length}) for this file.
File: {filename} ({extension})

Content:
{content}

Existing summary (improve if present, or write from scratch if None):
{existing}

Focus: purpose, main functions/classes, important logic, notable patterns.`

const defaultDirectoryTemplate = `Create or improve a concise directory description ({n_paragraphs} paragraphs).
Directory: {dir_path}

Direct children (name: summary):
{children}

Previous description (improve if present):
{existing}

Focus: overall purpose, how pieces work together, main responsibilities.`

var requiredFilePlaceholders = []string{"{filename}", "{content}", "{existing}", "{length}", "{extension}"}
var requiredDirectoryPlaceholders = []string{"{dir_path}", "{children}", "{existing}", "{n_paragraphs}"}

// TemplateSet holds file and directory templates keyed by language, with a
// "default" entry used when no language-specific override exists. Keys in
// an override file follow spec's "<language>:file" / "<language>:directory"
// convention; the language segment is normalized to "default" for the
// built-ins.
type TemplateSet struct {
	File      map[string]string
	Directory map[string]string
}

// DefaultTemplateSet returns the built-in templates, with no overrides
// applied.
func DefaultTemplateSet() *TemplateSet {
	return &TemplateSet{
		File:      map[string]string{defaultTemplateKey: defaultFileTemplate},
		Directory: map[string]string{defaultTemplateKey: defaultDirectoryTemplate},
	}
}

// LoadTemplateSet returns the built-in templates merged with the project's
// override file, if one exists. Overrides are read from
// .paranoid-coder/prompts.yaml when present (YAML's block scalars make
// multi-line templates far more pleasant to hand-edit than JSON's escaped
// newlines), falling back to prompts.json (§6) otherwise. A project with
// neither file gets the built-ins unchanged.
func LoadTemplateSet(root string) (*TemplateSet, error) {
	ts := DefaultTemplateSet()

	yamlPath := filepath.Join(root, project.DirName, "prompts.yaml")
	if raw, err := os.ReadFile(yamlPath); err == nil {
		overrides := map[string]string{}
		if err := yaml.Unmarshal(raw, &overrides); err != nil {
			return nil, pcerrors.Wrap(pcerrors.InvalidTemplate, "parse prompts.yaml", err)
		}
		if err := ts.applyOverrides(overrides); err != nil {
			return nil, err
		}
		return ts, nil
	}

	jsonPath := project.PromptsPath(root)
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ts, nil
		}
		return nil, pcerrors.Wrap(pcerrors.IoError, "read prompts.json", err)
	}
	overrides := map[string]string{}
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, pcerrors.Wrap(pcerrors.InvalidTemplate, "parse prompts.json", err)
	}
	if err := ts.applyOverrides(overrides); err != nil {
		return nil, err
	}
	return ts, nil
}

// applyOverrides validates and merges a "<language>:file"/"<language>:directory"
// keyed override map into ts, rejecting any template missing a required
// placeholder with InvalidTemplate (§7).
func (ts *TemplateSet) applyOverrides(overrides map[string]string) error {
	for key, template := range overrides {
		lang, kind, ok := splitTemplateKey(key)
		if !ok {
			return pcerrors.New(pcerrors.InvalidTemplate, "prompt override key must be \"<language>:file\" or \"<language>:directory\", got "+key)
		}
		switch kind {
		case "file":
			if missing := missingPlaceholders(template, requiredFilePlaceholders); len(missing) > 0 {
				return pcerrors.New(pcerrors.InvalidTemplate, "file template "+key+" missing placeholders: "+strings.Join(missing, ", ")).
					WithRemedy(pcerrors.Remedies[pcerrors.InvalidTemplate])
			}
			ts.File[lang] = template
		case "directory":
			if missing := missingPlaceholders(template, requiredDirectoryPlaceholders); len(missing) > 0 {
				return pcerrors.New(pcerrors.InvalidTemplate, "directory template "+key+" missing placeholders: "+strings.Join(missing, ", ")).
					WithRemedy(pcerrors.Remedies[pcerrors.InvalidTemplate])
			}
			ts.Directory[lang] = template
		}
	}
	return nil
}

func splitTemplateKey(key string) (lang, kind string, ok bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return "", "", false
	}
	lang, kind = key[:idx], key[idx+1:]
	if lang == "" || (kind != "file" && kind != "directory") {
		return "", "", false
	}
	return lang, kind, true
}

func missingPlaceholders(template string, required []string) []string {
	var missing []string
	for _, ph := range required {
		if !strings.Contains(template, ph) {
			missing = append(missing, ph)
		}
	}
	return missing
}

func (ts *TemplateSet) fileTemplate(language string) string {
	if t, ok := ts.File[language]; ok {
		return t
	}
	return ts.File[defaultTemplateKey]
}

func (ts *TemplateSet) directoryTemplate(language string) string {
	if t, ok := ts.Directory[language]; ok {
		return t
	}
	return ts.Directory[defaultTemplateKey]
}

// descriptionLengthForContent returns the target description-length hint
// used in the {length} placeholder, a monotonic bucket function of content
// size, ported from the model host's prompt templates.
func descriptionLengthForContent(content string) string {
	n := len(content)
	switch {
	case n < 5000:
		return "a few lines"
	case n < 15000:
		return "1-3 paragraphs"
	default:
		return "3-5 paragraphs"
	}
}

// FileSummaryPrompt renders ts's file template (language-specific if one is
// overridden, the default otherwise) for an isolated (context-level 0)
// summary. graphContext, if non-empty, is folded into {content} ahead of the
// file body — the "compact context block before {content}" a context-level-1
// summary adds (§4.E "with-graph").
func (ts *TemplateSet) FileSummaryPrompt(filePath, language, content, existingSummary, graphContext string) string {
	length := descriptionLengthForContent(content)
	existing := strings.TrimSpace(existingSummary)
	if existing == "" {
		existing = "None"
	}

	body := content
	if graphContext != "" {
		body = graphContext + "\n\n" + content
	}

	replacer := strings.NewReplacer(
		"{filename}", filePath,
		"{extension}", filepath.Ext(filePath),
		"{content}", body,
		"{existing}", existing,
		"{length}", length,
	)
	return replacer.Replace(ts.fileTemplate(language))
}

// ChildSummary is one entry in a directory summary's ordered children list.
type ChildSummary struct {
	Name        string
	Kind        string // "file" or "directory"
	Description string
}

// DirectorySummaryPrompt renders ts's directory template from its direct
// children's one-line descriptions. Directories never receive graph context
// (§4.E: "Directories receive no graph context"), and always use the
// default-language template since a directory has no single language.
func (ts *TemplateSet) DirectorySummaryPrompt(dirPath string, children []ChildSummary, existingSummary string, isRoot bool) string {
	nParagraphs := "1-5"
	if isRoot {
		nParagraphs = "5-10"
	}
	existing := strings.TrimSpace(existingSummary)
	if existing == "" {
		existing = "None"
	}

	childrenText := "(empty)"
	if len(children) > 0 {
		lines := make([]string, 0, len(children))
		for _, c := range children {
			lines = append(lines, c.Name+": "+c.Description)
		}
		childrenText = strings.Join(lines, "\n")
	}

	replacer := strings.NewReplacer(
		"{dir_path}", dirPath,
		"{children}", childrenText,
		"{existing}", existing,
		"{n_paragraphs}", nParagraphs,
	)
	return replacer.Replace(ts.directoryTemplate(defaultTemplateKey))
}
