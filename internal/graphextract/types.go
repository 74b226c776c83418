// Package graphextract implements the multi-language static code-graph
// extractor (§4.D): tree-sitter parsing per registered language, entity and
// relationship emission, and a best-effort resolution pass from textual
// references to concrete entity ids.
package graphextract

// EntityKind mirrors store.EntityKind without importing store, keeping this
// package's parsing concern independent of persistence.
type EntityKind string

const (
	EntityClass    EntityKind = "class"
	EntityFunction EntityKind = "function"
	EntityMethod   EntityKind = "method"
)

// RelationshipKind mirrors store.RelationshipKind.
type RelationshipKind string

const (
	RelCalls        RelationshipKind = "calls"
	RelImports      RelationshipKind = "imports"
	RelInherits     RelationshipKind = "inherits"
	RelInstantiates RelationshipKind = "instantiates"
)

// Entity is a class, function, or method extracted from a single file,
// before it has been assigned a store-level id.
type Entity struct {
	Kind          EntityKind
	Name          string
	QualifiedName string
	ParentName    string // qualified name of the enclosing class, if a method
	StartLine     int
	EndLine       int
	Signature     string
	Docstring     string
	Language      string
}

// Relationship is a directed edge discovered in a single file. ToNameHint
// carries the unresolved textual target (module path for imports, simple or
// qualified name for calls/inherits/instantiates) the resolution pass later
// matches against extracted entities or other files.
type Relationship struct {
	Kind                    RelationshipKind
	FromQualifiedName       string // qualified name of the entity this edge originates from, "" for file-level imports
	ToNameHint              string
	Location                string
}

// File is the result of parsing a single source file.
type File struct {
	Path          string
	Language      string
	Entities      []Entity
	Relationships []Relationship
}
