package graphextract

// ResolvedEntity is the minimal shape the resolver needs back from a store
// lookup — just enough to disambiguate and to reclassify calls-to-classes
// as instantiations (§4.D step 4).
type ResolvedEntity struct {
	ID   int64
	Kind EntityKind
}

// Store is the narrow persistence contract graphextract depends on,
// defined here (rather than importing package store directly) so this
// package's parsing/resolution logic stays decoupled from the concrete
// storage engine, matching the separation hashutil's ChildHashLister/
// SummaryLookup interfaces establish elsewhere in this module.
type Store interface {
	EntitiesByQualifiedName(qualifiedName string) ([]ResolvedEntity, error)
	EntitiesByName(name string) ([]ResolvedEntity, error)
}

// ResolvedRelationship pairs a Relationship with the entity id resolution
// found for its ToNameHint, if any.
type ResolvedRelationship struct {
	Relationship
	ToEntityID int64
	Resolved   bool
}

// Resolve runs the best-effort symbol resolution pass (§4.D step 4):
// qualified-name match first, falling back to a simple-name match when the
// qualified lookup finds nothing. A call whose resolved target is a class
// is reclassified as an instantiation, since "Foo()" in both Python and
// TypeScript can equally mean "call the function Foo" or "construct an
// instance of the class Foo" and only resolution can tell them apart.
func Resolve(store Store, relationships []Relationship) ([]ResolvedRelationship, error) {
	out := make([]ResolvedRelationship, 0, len(relationships))
	for _, rel := range relationships {
		resolved := ResolvedRelationship{Relationship: rel}
		if rel.Kind == RelImports || rel.ToNameHint == "" {
			out = append(out, resolved)
			continue
		}

		entity, found, err := resolveName(store, rel.ToNameHint)
		if err != nil {
			return nil, err
		}
		if found {
			resolved.ToEntityID = entity.ID
			resolved.Resolved = true
			if rel.Kind == RelCalls && entity.Kind == EntityClass {
				resolved.Kind = RelInstantiates
			}
		}
		out = append(out, resolved)
	}
	return out, nil
}

func resolveName(store Store, hint string) (ResolvedEntity, bool, error) {
	matches, err := store.EntitiesByQualifiedName(hint)
	if err != nil {
		return ResolvedEntity{}, false, err
	}
	if len(matches) == 0 {
		simple := hint
		if idx := lastDot(hint); idx >= 0 {
			simple = hint[idx+1:]
		}
		matches, err = store.EntitiesByName(simple)
		if err != nil {
			return ResolvedEntity{}, false, err
		}
	}
	if len(matches) != 1 {
		// No match, or an ambiguous one: left unresolved rather than guessed.
		return ResolvedEntity{}, false, nil
	}
	return matches[0], true, nil
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
