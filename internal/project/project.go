// Package project handles project-root discovery and initialization of the
// per-project .paranoid-coder directory.
package project

import (
	"os"
	"path/filepath"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// DirName is the per-project subdirectory created by Init.
const DirName = ".paranoid-coder"

// SummariesDB is the sqlite file name inside DirName.
const SummariesDB = "summaries.db"

// ConfigFilename is the project-local config override file name.
const ConfigFilename = "config.json"

// PromptsFilename is the project-local prompt-override file name.
const PromptsFilename = "prompts.json"

// Root resolves path to an absolute, cleaned directory: if path is a file,
// its parent directory is used.
func Root(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", pcerrors.Wrap(pcerrors.IoError, "resolve path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return abs, nil
	}
	if !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

// Find walks upward from path looking for a directory containing DirName.
// Returns "" if none is found.
func Find(path string) (string, error) {
	current, err := Root(path)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(current, DirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// Require finds the project root for path or returns a NoProjectFound error.
func Require(path string) (string, error) {
	root, err := Find(path)
	if err != nil {
		return "", err
	}
	if root == "" {
		return "", pcerrors.New(pcerrors.NoProjectFound, "no paranoid-coder project found").
			WithRemedy(pcerrors.Remedies[pcerrors.NoProjectFound]).
			WithNextSteps("paranoid init")
	}
	return root, nil
}

// IsInitialized reports whether root already has a .paranoid-coder directory.
func IsInitialized(root string) bool {
	info, err := os.Stat(filepath.Join(root, DirName))
	return err == nil && info.IsDir()
}

// Init creates the .paranoid-coder directory at root. Re-initializing an
// already-initialized root is idempotent (AlreadyInitialized is informational,
// not an error).
func Init(root string) (created bool, err error) {
	abs, err := Root(root)
	if err != nil {
		return false, err
	}
	if IsInitialized(abs) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Join(abs, DirName), 0o755); err != nil {
		return false, pcerrors.Wrap(pcerrors.IoError, "create project directory", err)
	}
	return true, nil
}

// DBPath returns the path to the project's summaries database.
func DBPath(root string) string {
	return filepath.Join(root, DirName, SummariesDB)
}

// ConfigPath returns the path to the project's local config override file.
func ConfigPath(root string) string {
	return filepath.Join(root, DirName, ConfigFilename)
}

// PromptsPath returns the path to the project's prompt-override file.
func PromptsPath(root string) string {
	return filepath.Join(root, DirName, PromptsFilename)
}
