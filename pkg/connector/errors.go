package connector

import (
	"errors"
	"fmt"
)

// CommandError encapsulates detailed information about a command execution failure.
type CommandError struct {
	Cmd        string
	ExitCode   int
	Stdout     string
	Stderr     string
	Underlying error
}

// Error returns a string representation of the CommandError.
func (e *CommandError) Error() string {
	errMsg := fmt.Sprintf("command '%s' failed with exit code %d", e.Cmd, e.ExitCode)
	if e.Stderr != "" {
		errMsg = fmt.Sprintf("%s: %s", errMsg, e.Stderr)
	}
	if e.Underlying != nil {
		errMsg = fmt.Sprintf("%s (underlying error: %v)", errMsg, e.Underlying)
	}
	return errMsg
}

// Unwrap returns the underlying error for errors.Is and errors.As support.
func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// ExitCodeOf returns the exit status carried by a *CommandError in err's
// chain. It returns 0 for nil and -1 when no exit status is known.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}
