package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType categorizes the failures produced by the configurator core.
type ErrorType string

const (
	ErrorTypeGrammar          ErrorType = "grammar"           // Malformed tree or solutions document
	ErrorTypeIO               ErrorType = "io"                // Open, read or write failure
	ErrorTypeNotFound         ErrorType = "not_found"         // Unknown node id or name
	ErrorTypeDuplicateName    ErrorType = "duplicate_name"    // Name collides within its sibling set
	ErrorTypeInvalidSelection ErrorType = "invalid_selection" // Selection or index does not resolve
	ErrorTypeInvalidName      ErrorType = "invalid_name"      // Empty or otherwise unusable name
)

// Sentinels for errors.Is. They match any *Error of the same Type.
var (
	ErrGrammar          = &Error{Type: ErrorTypeGrammar}
	ErrIO               = &Error{Type: ErrorTypeIO}
	ErrNotFound         = &Error{Type: ErrorTypeNotFound}
	ErrDuplicateName    = &Error{Type: ErrorTypeDuplicateName}
	ErrInvalidSelection = &Error{Type: ErrorTypeInvalidSelection}
	ErrInvalidName      = &Error{Type: ErrorTypeInvalidName}
)

// Location is a position inside a document.
type Location struct {
	File   string // Path to the document, empty for in-memory data
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns "file:line:column", omitting the parts that are unknown.
func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<memory>"
	}
	switch {
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%s:%d", file, l.Line)
	default:
		return file
	}
}

// IsValid returns true if the location points at a line.
func (l Location) IsValid() bool {
	return l.Line > 0
}

// Error is the single error type of the configurator core.
// The Type field decides which taxonomy bucket it belongs to.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Error message, surfaced verbatim
	Location   Location  // Source location for grammar errors, path for io errors
	Context    string    // Surrounding document lines
	Suggestion string    // Suggested fix (optional)
	Cause      error     // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if e.Location.IsValid() || e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("\n  |\n")
		sb.WriteString(strings.TrimSuffix(e.Context, "\n"))
		sb.WriteString("\n  |")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Line returns the line the error points at, or 0.
func (e *Error) Line() int {
	return e.Location.Line
}

// NewGrammarError creates a grammar violation at the given line.
func NewGrammarError(file string, line, column int, message string) *Error {
	return &Error{
		Type:     ErrorTypeGrammar,
		Message:  message,
		Location: Location{File: file, Line: line, Column: column},
	}
}

// NewIOError wraps a filesystem failure for path.
func NewIOError(path, message string, cause error) *Error {
	return &Error{
		Type:     ErrorTypeIO,
		Message:  message,
		Location: Location{File: path},
		Cause:    cause,
	}
}

// NewNotFound reports a missing node. When candidates are given the
// closest one is offered as a suggestion.
func NewNotFound(what, name string, candidates []string) *Error {
	return &Error{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s %q not found", what, name),
		Suggestion: SuggestName(name, candidates),
	}
}

// NewDuplicateName reports a name that already exists in its sibling set.
func NewDuplicateName(what, name string) *Error {
	return &Error{
		Type:    ErrorTypeDuplicateName,
		Message: fmt.Sprintf("%s %q already exists", what, name),
	}
}

// NewInvalidSelection reports a selection, price or index that cannot be used.
func NewInvalidSelection(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInvalidSelection,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidName reports an unusable node name.
func NewInvalidName(what string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidName,
		Message: fmt.Sprintf("%s name must not be empty", what),
	}
}

// NewInvalidText creates an InvalidName error for a name holding
// characters an XML document cannot carry.
func NewInvalidText(what, name string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidName,
		Message: fmt.Sprintf("%s name %q contains characters XML cannot hold", what, name),
	}
}

// TypeOf returns the ErrorType of err, or "" if err is not an *Error.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}
