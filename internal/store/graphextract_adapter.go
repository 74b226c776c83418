package store

import (
	"database/sql"

	"github.com/bradylowe/paranoid-coder/internal/graphextract"
)

// GraphExtractAdapter adapts *DB to graphextract.AnalysisStore, converting
// between the extractor's parsing-only types and the store's persisted row
// types. Kept separate from DB's own Entity/Relationship-typed API so
// store's primary surface doesn't have to speak graphextract's vocabulary.
type GraphExtractAdapter struct {
	DB *DB
}

// NewGraphExtractAdapter wraps db for use as a graphextract.AnalysisStore.
func NewGraphExtractAdapter(db *DB) *GraphExtractAdapter {
	return &GraphExtractAdapter{DB: db}
}

func (a *GraphExtractAdapter) EntitiesByQualifiedName(qualifiedName string) ([]graphextract.ResolvedEntity, error) {
	entities, err := a.DB.EntitiesByQualifiedName(qualifiedName)
	if err != nil {
		return nil, err
	}
	return toResolvedEntities(entities), nil
}

func (a *GraphExtractAdapter) EntitiesByName(name string) ([]graphextract.ResolvedEntity, error) {
	entities, err := a.DB.EntitiesByName(name)
	if err != nil {
		return nil, err
	}
	return toResolvedEntities(entities), nil
}

func (a *GraphExtractAdapter) GetAnalysisFileHash(path string) (string, bool, error) {
	return a.DB.GetAnalysisFileHash(path)
}

func (a *GraphExtractAdapter) SetAnalysisFileHash(path, hash string) error {
	return a.DB.SetAnalysisFileHash(path, hash)
}

func (a *GraphExtractAdapter) DeleteEntitiesForFile(path string) error {
	return a.DB.DeleteEntitiesForFile(path)
}

func (a *GraphExtractAdapter) InsertEntity(e graphextract.EntityInsert) (int64, error) {
	var parentID sql.NullInt64
	if e.HasParent {
		parentID = nullInt64(e.ParentEntityID)
	}
	return a.DB.InsertEntity(Entity{
		FilePath:       e.FilePath,
		Kind:           EntityKind(e.Kind),
		Name:           e.Name,
		QualifiedName:  e.QualifiedName,
		ParentEntityID: parentID,
		StartLine:      e.StartLine,
		EndLine:        e.EndLine,
		Signature:      e.Signature,
		Docstring:      e.Docstring,
		Language:       e.Language,
	})
}

func (a *GraphExtractAdapter) InsertRelationship(r graphextract.RelationshipInsert) (int64, error) {
	rel := Relationship{
		FromFile:   r.FromFile,
		ToFile:     r.ToFile,
		Kind:       RelationshipKind(r.Kind),
		ToNameHint: r.ToNameHint,
		Location:   r.Location,
	}
	if r.HasFromEntity {
		rel.FromEntityID = nullInt64(r.FromEntityID)
	}
	if r.HasToEntity {
		rel.ToEntityID = nullInt64(r.ToEntityID)
	}
	return a.DB.InsertRelationship(rel)
}

func toResolvedEntities(entities []Entity) []graphextract.ResolvedEntity {
	out := make([]graphextract.ResolvedEntity, 0, len(entities))
	for _, e := range entities {
		out = append(out, graphextract.ResolvedEntity{ID: e.ID, Kind: graphextract.EntityKind(e.Kind)})
	}
	return out
}
