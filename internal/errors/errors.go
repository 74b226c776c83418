// Package errors defines the typed error taxonomy surfaced by the core engine.
package errors

import "fmt"

// Kind is a stable, machine-readable error category.
type Kind string

const (
	// NoProjectFound means no .paranoid-coder directory was found above the given path.
	NoProjectFound Kind = "NO_PROJECT_FOUND"
	// AlreadyInitialized means init was run against a root that already has a project.
	AlreadyInitialized Kind = "ALREADY_INITIALIZED"
	// UnsupportedLanguage means the extractor has no registry entry for a file's extension.
	UnsupportedLanguage Kind = "UNSUPPORTED_LANGUAGE"
	// ParseError means a source file failed to parse.
	ParseError Kind = "PARSE_ERROR"
	// IoError means a file read/write failed.
	IoError Kind = "IO_ERROR"
	// ModelHostUnreachable means the configured model host could not be reached.
	ModelHostUnreachable Kind = "MODEL_HOST_UNREACHABLE"
	// ModelNotFound means the model host does not know the requested model.
	ModelNotFound Kind = "MODEL_NOT_FOUND"
	// ModelError means the model host returned an error for the request.
	ModelError Kind = "MODEL_ERROR"
	// IndexEmpty means a RAG query was attempted with no vectors in the store.
	IndexEmpty Kind = "INDEX_EMPTY"
	// SchemaIncompatible means the store's schema_version is newer than the code knows.
	SchemaIncompatible Kind = "SCHEMA_INCOMPATIBLE"
	// InvalidTemplate means a prompt override is missing a required placeholder.
	InvalidTemplate Kind = "INVALID_TEMPLATE"
	// ContextOverflow means a prompt exceeds the model's maximum context window.
	ContextOverflow Kind = "CONTEXT_OVERFLOW"
)

// Error is the core engine's structured error type: a stable Kind, a
// human message, an optional remedy, optional next-step commands, and an
// optional wrapped cause.
type Error struct {
	Kind      Kind     `json:"kind"`
	Message   string   `json:"message"`
	Remedy    string   `json:"remedy,omitempty"`
	NextSteps []string `json:"nextSteps,omitempty"`
	cause     error
}

// New creates an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithRemedy sets the remedy text and returns the error for chaining.
func (e *Error) WithRemedy(remedy string) *Error {
	e.Remedy = remedy
	return e
}

// WithNextSteps sets suggested next commands and returns the error for chaining.
func (e *Error) WithNextSteps(steps ...string) *Error {
	e.NextSteps = steps
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target has the same Kind, so errors.Is(err, errors.New(Kind, "")) works.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind from err, returning ok=false if err is not (or
// does not wrap) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// As is a small re-export point so callers don't need a second import for
// errors.As when they already imported this package under the name "errors".
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Remedies maps known kinds to their default remedy text, mirroring spec §7.
var Remedies = map[Kind]string{
	NoProjectFound:     "run `paranoid init` in the project directory",
	AlreadyInitialized: "", // idempotent: re-running init on the same root is not an error
	SchemaIncompatible: "upgrade paranoid-coder to a version that understands this schema",
	InvalidTemplate:    "add the required placeholders to the prompt override template",
	IndexEmpty:         "run `paranoid index` before asking explanation/generation questions",
}
