package graphextract

import (
	"context"
	"os"

	"github.com/bradylowe/paranoid-coder/internal/hashutil"
)

// EntityInsert is the shape AnalysisStore.InsertEntity accepts — Entity plus
// the file path and resolved parent id, once one is known.
type EntityInsert struct {
	Entity
	FilePath       string
	ParentEntityID int64
	HasParent      bool
}

// RelationshipInsert is the shape AnalysisStore.InsertRelationship accepts —
// Relationship plus resolved endpoints, once known.
type RelationshipInsert struct {
	Relationship
	FromEntityID  int64
	HasFromEntity bool
	ToEntityID    int64
	HasToEntity   bool
	FromFile      string
	ToFile        string
}

// AnalysisStore is the persistence contract AnalyzeProject depends on.
// Defined here rather than importing package store, for the same reason
// hashutil and this package's Store interface are decoupled from it:
// store satisfies this structurally without graphextract depending on its
// concrete types.
type AnalysisStore interface {
	Store
	GetAnalysisFileHash(path string) (hash string, found bool, err error)
	SetAnalysisFileHash(path, hash string) error
	DeleteEntitiesForFile(path string) error
	InsertEntity(e EntityInsert) (int64, error)
	InsertRelationship(r RelationshipInsert) (int64, error)
}

// Stats summarizes one AnalyzeProject run.
type Stats struct {
	FilesAnalyzed          int
	FilesSkipped           int
	EntitiesExtracted      int
	RelationshipsExtracted int
	Errors                 []FileError
}

// FileError records a single file's extraction failure without aborting
// the whole run (§4.D: parse errors are per-file, not fatal).
type FileError struct {
	Path string
	Err  error
}

type parsedFile struct {
	file     File
	localIDs map[string]int64 // qualified name -> entity id, scoped to this file
}

// AnalyzeProject extracts entities and relationships for files, skipping
// any whose content hash matches the last recorded analysis unless force
// is set, then resolves relationship targets across the whole batch once
// every changed file's entities have been (re)inserted.
func AnalyzeProject(ctx context.Context, extractor *Extractor, st AnalysisStore, files []string, force bool) (*Stats, error) {
	stats := &Stats{}
	var parsed []parsedFile

	for _, path := range files {
		hash, err := hashutil.ContentHash(path)
		if err != nil {
			stats.Errors = append(stats.Errors, FileError{Path: path, Err: err})
			continue
		}

		if !force {
			prevHash, found, err := st.GetAnalysisFileHash(path)
			if err != nil {
				return stats, err
			}
			if found && prevHash == hash {
				stats.FilesSkipped++
				continue
			}
		}

		file, err := extractor.ExtractFile(ctx, path)
		if err != nil {
			stats.Errors = append(stats.Errors, FileError{Path: path, Err: err})
			continue
		}
		if file.Language == "" {
			// Unsupported extension: nothing to extract, but still record the
			// hash so future walks don't keep re-examining it.
			if err := st.SetAnalysisFileHash(path, hash); err != nil {
				return stats, err
			}
			continue
		}

		if err := st.DeleteEntitiesForFile(path); err != nil {
			return stats, err
		}

		localIDs := make(map[string]int64, len(file.Entities))
		for _, ent := range file.Entities {
			parentID, hasParent := int64(0), false
			if ent.ParentName != "" {
				if id, ok := localIDs[ent.ParentName]; ok {
					parentID, hasParent = id, true
				}
			}
			id, err := st.InsertEntity(EntityInsert{
				Entity:         ent,
				FilePath:       path,
				ParentEntityID: parentID,
				HasParent:      hasParent,
			})
			if err != nil {
				return stats, err
			}
			localIDs[ent.QualifiedName] = id
			stats.EntitiesExtracted++
		}

		parsed = append(parsed, parsedFile{file: file, localIDs: localIDs})
		stats.FilesAnalyzed++

		if err := st.SetAnalysisFileHash(path, hash); err != nil {
			return stats, err
		}
	}

	for _, pf := range parsed {
		resolved, err := Resolve(st, pf.file.Relationships)
		if err != nil {
			return stats, err
		}
		for _, rel := range resolved {
			ins := RelationshipInsert{Relationship: rel.Relationship}

			if rel.FromQualifiedName != "" {
				if id, ok := pf.localIDs[rel.FromQualifiedName]; ok {
					ins.FromEntityID, ins.HasFromEntity = id, true
				}
			} else {
				ins.FromFile = pf.file.Path
			}

			if rel.Kind == RelImports {
				if target, ok := ResolveModulePath(pf.file.Language, pf.file.Path, rel.ToNameHint, fileExists); ok {
					ins.ToFile = target
				}
			} else if rel.Resolved {
				ins.ToEntityID, ins.HasToEntity = rel.ToEntityID, true
			}

			if _, err := st.InsertRelationship(ins); err != nil {
				return stats, err
			}
			stats.RelationshipsExtracted++
		}
	}

	return stats, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
