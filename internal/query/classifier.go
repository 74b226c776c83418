package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Type is the query-router classification label (§4.G step 1).
type Type string

const (
	Usage       Type = "USAGE"
	Definition  Type = "DEFINITION"
	Explanation Type = "EXPLANATION"
	Generation  Type = "GENERATION"
)

// classifyPrompt is the classification prompt sent to the small classifier
// model, ported verbatim from original_source's CLASSIFY_PROMPT.
const classifyPrompt = `Classify this code query into ONE category:
- USAGE: asks where/how something is used (e.g., "where is X called?", "what uses Y?")
- DEFINITION: asks what/where something is (e.g., "where is class X?", "find function Y")
- EXPLANATION: asks how/why something works (e.g., "explain X", "how does Y work?")
- GENERATION: asks to create/write code (e.g., "write a function", "generate tests")

Query: "%s"

Category (one word):`

// entityPatterns extracts a candidate entity name from the question text.
// Order matters: first match wins. Ported from
// original_source/src/paranoid/llm/query_classifier.py's _ENTITY_PATTERNS.
var entityPatterns = compilePatterns([]string{
	`(?i)where\s+is\s+([\w.]+)\s+(?:used|called|defined)`,
	`(?i)where\s+are\s+([\w.]+)\s+(?:used|called|defined)`,
	`(?i)(?:who|what)\s+calls\s+([\w.]+)`,
	`(?i)find\s+(?:the\s+)?([\w.]+)`,
	`(?i)find\s+(?:all\s+)?usages?\s+of\s+([\w.]+)`,
	`(?i)references?\s+to\s+([\w.]+)`,
	`(?i)explain\s+how\s+([\w.]+)\s+[\w.]+\s+works?`,
	`(?i)explain\s+([\w.]+)`,
	`(?i)how\s+does\s+([\w.]+)\s+(?:work|function)`,
	`(?i)how\s+do\s+([\w.]+)\s+work`,
	`(?i)what\s+does\s+([\w.]+)\s+do`,
	`(?i)describe\s+([\w.]+)`,
	`(?i)tell\s+me\s+about\s+([\w.]+)`,
	`(?i)what\s+is\s+([\w.]+)\s*\??`,
	`(?i)where\s+is\s+([\w.]+)\s*\??`,
	`(?i)define\s+([\w.]+)`,
	`(?i)definition\s+of\s+([\w.]+)`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func extractEntity(question string) string {
	q := strings.TrimSpace(question)
	for _, re := range entityPatterns {
		if m := re.FindStringSubmatch(q); m != nil {
			return m[1]
		}
	}
	return ""
}

func parseCategory(raw string) Type {
	s := strings.ToUpper(strings.TrimSpace(raw))
	fields := strings.Fields(s)
	first := ""
	if len(fields) > 0 {
		first = fields[0]
	}
	switch first {
	case string(Usage), string(Definition), string(Explanation), string(Generation):
		return Type(first)
	}
	switch {
	case strings.Contains(s, string(Usage)):
		return Usage
	case strings.Contains(s, string(Definition)):
		return Definition
	case strings.Contains(s, string(Generation)):
		return Generation
	default:
		return Explanation
	}
}

// Classification is the result of classifying a question: the routing type
// plus an optional candidate entity name for graph-backed types.
type Classification struct {
	Type       Type
	EntityName string
}

// Classifier is the subset of modelhost.Client the query router needs for
// classification.
type Classifier interface {
	GenerateSimple(ctx context.Context, model, prompt string) (string, error)
}

// Classify asks the classifier model to label question, falling back to
// EXPLANATION on a connection error, timeout, or malformed output (§4.G
// step 1). The entity regex runs over the raw question text whenever the
// result is USAGE, DEFINITION or EXPLANATION (including the fallback),
// independent of the model call's outcome; GENERATION gets no entity.
func Classify(ctx context.Context, classifier Classifier, model, question string) Classification {
	q := strings.TrimSpace(question)
	if q == "" {
		return Classification{Type: Explanation}
	}

	response, err := classifier.GenerateSimple(ctx, model, fmt.Sprintf(classifyPrompt, q))
	if err != nil {
		return Classification{Type: Explanation, EntityName: extractEntity(q)}
	}

	queryType := parseCategory(response)
	var entity string
	if queryType == Usage || queryType == Definition || queryType == Explanation {
		entity = extractEntity(q)
	}
	return Classification{Type: queryType, EntityName: entity}
}
