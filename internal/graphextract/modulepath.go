package graphextract

import (
	"path/filepath"
	"strings"
)

// resolvePythonModule converts a dotted module reference ("pkg.sub.mod")
// into the path of an existing module file (or package __init__.py) by
// trying it relative to the importing file's directory and each ancestor
// up to the filesystem root, the way Python's package-relative and absolute
// import resolution behaves.
func resolvePythonModule(fromFile, moduleRef string, fileExists func(string) bool) (string, bool) {
	if moduleRef == "" {
		return "", false
	}
	relPath := strings.ReplaceAll(moduleRef, ".", string(filepath.Separator)) + ".py"

	dir := filepath.Dir(fromFile)
	for {
		candidate := filepath.Join(dir, relPath)
		if fileExists(candidate) {
			return candidate, true
		}
		packageInit := filepath.Join(dir, strings.ReplaceAll(moduleRef, ".", string(filepath.Separator)), "__init__.py")
		if fileExists(packageInit) {
			return packageInit, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// resolveTypeScriptModule resolves a relative import specifier ("./x",
// "../x") against the importing file's directory, probing common
// extensions and an index-file fallback. Bare specifiers (package imports)
// are left unresolved — they refer to node_modules, outside this project's
// graph.
func resolveTypeScriptModule(fromFile, moduleRef string, fileExists func(string) bool) (string, bool) {
	if !strings.HasPrefix(moduleRef, ".") {
		return "", false
	}
	base := filepath.Join(filepath.Dir(fromFile), moduleRef)

	candidates := []string{
		base,
		base + ".ts",
		base + ".tsx",
		base + ".js",
		filepath.Join(base, "index.ts"),
		filepath.Join(base, "index.tsx"),
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c, true
		}
	}
	return "", false
}
