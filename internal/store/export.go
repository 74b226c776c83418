package store

import (
	"io"

	"github.com/klauspost/compress/gzip"
	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// ExportSCIP serializes the current entity graph as a SCIP protobuf index
// (sourcegraph/scip), one Document per file with a SymbolInformation per
// entity, so external tools (sourcegraph, editors with SCIP support) can
// consume the graph this project extracted. This is additive: paranoid-coder
// never reads SCIP itself, it only ever produces it.
func (db *DB) ExportSCIP(w io.Writer, projectRoot string) error {
	rows, err := db.conn.Query(`SELECT DISTINCT file_path FROM entities ORDER BY file_path`)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "list files for SCIP export", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return pcerrors.Wrap(pcerrors.IoError, "scan file path", err)
		}
		paths = append(paths, p)
	}
	rows.Close()

	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			Version:     scippb.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo:    &scippb.ToolInfo{Name: "paranoid-coder", Version: "0.1.0"},
			ProjectRoot: projectRoot,
		},
	}

	for _, path := range paths {
		entities, err := db.EntitiesForFile(path)
		if err != nil {
			return err
		}
		doc := &scippb.Document{
			RelativePath: path,
			Language:     languageOf(entities),
		}
		for _, e := range entities {
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:        "paranoid-coder . . " + e.QualifiedName + ".",
				Documentation: docLines(e.Docstring),
				Kind:          scipKindOf(e.Kind),
			})
		}
		index.Documents = append(index.Documents, doc)
	}

	data, err := proto.Marshal(index)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "marshal SCIP index", err)
	}
	if _, err := w.Write(data); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "write SCIP index", err)
	}
	return nil
}

func languageOf(entities []Entity) string {
	for _, e := range entities {
		if e.Language != "" {
			return e.Language
		}
	}
	return ""
}

func docLines(docstring string) []string {
	if docstring == "" {
		return nil
	}
	return []string{docstring}
}

func scipKindOf(kind EntityKind) scippb.SymbolInformation_Kind {
	switch kind {
	case EntityClass:
		return scippb.SymbolInformation_Class
	case EntityMethod:
		return scippb.SymbolInformation_Method
	default:
		return scippb.SymbolInformation_Function
	}
}

// Snapshot writes a gzip-compressed copy of the live database file to w,
// for `paranoid export --snapshot` style backups (klauspost/compress).
func (db *DB) Snapshot(w io.Writer) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "create gzip writer", err)
	}
	defer gz.Close()

	rows, err := db.conn.Query(`PRAGMA integrity_check`)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "integrity check before snapshot", err)
	}
	rows.Close()

	f, err := db.openFileForRead()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(gz, f); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "write snapshot", err)
	}
	return nil
}
