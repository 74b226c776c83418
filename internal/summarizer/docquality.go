package summarizer

import (
	"strings"

	"github.com/bradylowe/paranoid-coder/internal/store"
)

// entityKindWeight ranks how much a missing docstring on this kind of
// entity should matter for prioritization: public API surface (classes)
// outweighs an implementation-detail method.
var entityKindWeight = map[store.EntityKind]int{
	store.EntityClass:    3,
	store.EntityFunction: 2,
	store.EntityMethod:   1,
}

// ComputeDocQuality derives doc-quality heuristics for ent, using
// callersCount as a churn proxy for prioritization.
func ComputeDocQuality(ent store.Entity, callersCount int) store.DocQuality {
	doc := strings.ToLower(ent.Docstring)
	hasDocstring := strings.TrimSpace(ent.Docstring) != ""
	hasExamples := hasDocstring && (strings.Contains(doc, "example") ||
		strings.Contains(doc, "e.g.") ||
		strings.Contains(ent.Docstring, "    ") ||
		strings.Contains(ent.Docstring, "```"))
	hasTypeHints := strings.Contains(ent.Signature, ":")

	missing := 0
	if !hasDocstring {
		missing++
	}
	if !hasExamples {
		missing++
	}
	if !hasTypeHints {
		missing++
	}

	priority := float64(entityKindWeight[ent.Kind]*10+missing*5) + float64(callersCount)

	return store.DocQuality{
		EntityID:      ent.ID,
		HasDocstring:  hasDocstring,
		HasExamples:   hasExamples,
		HasTypeHints:  hasTypeHints,
		PriorityScore: priority,
	}
}
