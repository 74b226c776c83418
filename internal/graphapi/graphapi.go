// Package graphapi implements the high-level typed graph query API (§4.H):
// callers, callees, imports, importers, inheritance trees, and name-based
// definition lookup over entities and relationships already persisted by
// the graph extractor.
package graphapi

import "github.com/bradylowe/paranoid-coder/internal/store"

// DB is the persistence surface graphapi depends on. *store.DB satisfies it
// directly.
type DB interface {
	CallersWithLocation(entityID int64) ([]store.RelatedEntity, error)
	CalleesWithLocation(entityID int64) ([]store.RelatedEntity, error)
	ImportsOf(filePath string) ([]string, error)
	ImportersOf(filePath string) ([]string, error)
	ChildrenOf(entityID int64) ([]store.Entity, error)
	ParentsOf(entityID int64) ([]store.Entity, error)
	GetEntity(id int64) (store.Entity, bool, error)
	EntitiesByQualifiedName(qualifiedName string) ([]store.Entity, error)
	EntitiesByName(name string) ([]store.Entity, error)
}

// CallerInfo describes one caller of an entity.
type CallerInfo struct {
	QualifiedName string
	FilePath      string
	Location      string
}

// CalleeInfo describes one callee of an entity.
type CalleeInfo struct {
	QualifiedName string
	FilePath      string
	Location      string
}

// InheritanceNode is one node of an inheritance tree: the class itself plus
// its subclasses, recursively.
type InheritanceNode struct {
	Entity   store.Entity
	Children []InheritanceNode
}

// API implements the graph query operations of §4.H over a DB.
type API struct {
	DB DB
}

// GetCallers returns who calls entityID (§4.H get_callers).
func (a *API) GetCallers(entityID int64) ([]CallerInfo, error) {
	related, err := a.DB.CallersWithLocation(entityID)
	if err != nil {
		return nil, err
	}
	out := make([]CallerInfo, len(related))
	for i, r := range related {
		out[i] = CallerInfo{QualifiedName: r.Entity.QualifiedName, FilePath: r.Entity.FilePath, Location: r.Location}
	}
	return out, nil
}

// GetCallees returns what entityID calls (§4.H get_callees).
func (a *API) GetCallees(entityID int64) ([]CalleeInfo, error) {
	related, err := a.DB.CalleesWithLocation(entityID)
	if err != nil {
		return nil, err
	}
	out := make([]CalleeInfo, len(related))
	for i, r := range related {
		out[i] = CalleeInfo{QualifiedName: r.Entity.QualifiedName, FilePath: r.Entity.FilePath, Location: r.Location}
	}
	return out, nil
}

// GetImports returns what filePath imports (§4.H get_imports).
func (a *API) GetImports(filePath string) ([]string, error) {
	return a.DB.ImportsOf(filePath)
}

// GetImporters returns what files import filePath. The module-path
// resolution §4.H describes for this operation already happened when the
// graph extractor wrote each "imports" edge's to_file as a resolved project
// file path (see internal/graphextract/modulepath.go), so this is a direct
// lookup rather than re-resolving module names here.
func (a *API) GetImporters(filePath string) ([]string, error) {
	return a.DB.ImportersOf(filePath)
}

// GetInheritanceTree returns the inheritance tree rooted at classEntityID:
// itself plus its subclasses, recursively (§4.H get_inheritance_tree,
// downward/children direction — the direction queried when asking "what
// extends this class").
func (a *API) GetInheritanceTree(classEntityID int64) (*InheritanceNode, error) {
	entity, found, err := a.DB.GetEntity(classEntityID)
	if err != nil {
		return nil, err
	}
	if !found || entity.Kind != store.EntityClass {
		return nil, nil
	}
	return a.buildInheritanceNode(entity)
}

func (a *API) buildInheritanceNode(entity store.Entity) (*InheritanceNode, error) {
	children, err := a.DB.ChildrenOf(entity.ID)
	if err != nil {
		return nil, err
	}
	node := &InheritanceNode{Entity: entity}
	for _, child := range children {
		childNode, err := a.buildInheritanceNode(child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, *childNode)
	}
	return node, nil
}

// GetAncestors returns classEntityID's direct superclasses (§4.H
// get_inheritance_tree, upward/parents direction). Only one level is
// returned; superclasses of those superclasses are not included.
func (a *API) GetAncestors(classEntityID int64) ([]store.Entity, error) {
	return a.DB.ParentsOf(classEntityID)
}

// FindDefinition resolves name to its matching entities: qualified-name
// match first, falling back to a simple-name match on no hits (§4.H
// find_definition), mirroring graphextract.Resolve's own resolution order.
func (a *API) FindDefinition(name string) ([]store.Entity, error) {
	matches, err := a.DB.EntitiesByQualifiedName(name)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return matches, nil
	}
	return a.DB.EntitiesByName(name)
}
