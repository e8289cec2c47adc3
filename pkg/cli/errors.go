package cli

import (
	"errors"
	"fmt"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
)

// Exit codes of the vehicle command.
const (
	ExitOK        = 0
	ExitFailure   = 1 // Unclassified failure, bad flags or configuration
	ExitInvalid   = 2 // A document failed to parse or validate
	ExitIO        = 3 // A file could not be read or written
	ExitSelection = 4 // A selection, name or index did not resolve
	ExitStale     = 5 // A check found stale solutions
)

// ErrStale is returned by checks that found stale solutions.
var ErrStale = errors.New("stale solutions found")

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, ErrStale) {
		return ExitStale
	}
	switch vehErrors.TypeOf(err) {
	case vehErrors.ErrorTypeGrammar:
		return ExitInvalid
	case vehErrors.ErrorTypeIO:
		return ExitIO
	case vehErrors.ErrorTypeNotFound, vehErrors.ErrorTypeInvalidSelection,
		vehErrors.ErrorTypeDuplicateName, vehErrors.ErrorTypeInvalidName:
		return ExitSelection
	}
	return ExitFailure
}
