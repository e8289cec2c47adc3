// Package errors provides the error taxonomy of the vehicle configurator core.
//
// Every failure is an *Error whose Type places it in one bucket:
//
// ErrorTypeGrammar: malformed tree or solutions document, with file and line
//
// ErrorTypeIO: open, read or write failure, with the path and the cause
//
// ErrorTypeNotFound, ErrorTypeDuplicateName, ErrorTypeInvalidName: edit-time misuse
//
// ErrorTypeInvalidSelection: solve-time misuse (unknown path, bad index, bad price)
//
// Staleness of a saved solution is not an error; see the engine package.
//
// # Matching
//
// Sentinels match any error of their type:
//
//	if errors.Is(err, vehErrors.ErrDuplicateName) {
//	    // tree left unchanged, ask for another name
//	}
//
// # Error Format
//
//	[grammar] mark node must have at least one child
//	  --> data.xml:7:5
//	  |
//	   5 |     <node type="mark" name="Color">
//	->  7 |     <node type="mark" name="Trim"/>
//	  |
package errors
