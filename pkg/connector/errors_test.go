package connector

import (
	"errors"
	"fmt"
	"testing"
)

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying issue")
	cmdErr := &CommandError{
		Cmd:        "ls -l",
		ExitCode:   1,
		Stdout:     "some output",
		Stderr:     "permission denied",
		Underlying: underlyingErr,
	}

	expectedMsg := "command 'ls -l' failed with exit code 1: permission denied (underlying error: underlying issue)"
	if cmdErr.Error() != expectedMsg {
		t.Errorf("CommandError.Error() got %q, want %q", cmdErr.Error(), expectedMsg)
	}

	if !errors.Is(cmdErr, underlyingErr) {
		t.Errorf("errors.Is(cmdErr, underlyingErr) was false, expected true")
	}

	// Test without underlying error and without stderr
	cmdErrNoDetails := &CommandError{
		Cmd:      "echo hello",
		ExitCode: 0,
	}
	expectedMsgNoDetails := "command 'echo hello' failed with exit code 0"
	if cmdErrNoDetails.Error() != expectedMsgNoDetails {
		t.Errorf("CommandError.Error() without details got %q, want %q", cmdErrNoDetails.Error(), expectedMsgNoDetails)
	}
	if cmdErrNoDetails.Unwrap() != nil {
		t.Errorf("CommandError.Unwrap() without underlying error got %v, want nil", cmdErrNoDetails.Unwrap())
	}

	// Test with underlying error but no stderr
	cmdErrNoStderr := &CommandError{
		Cmd:        "cat file",
		ExitCode:   2,
		Underlying: underlyingErr,
	}
	expectedMsgNoStderr := "command 'cat file' failed with exit code 2 (underlying error: underlying issue)"
	if cmdErrNoStderr.Error() != expectedMsgNoStderr {
		t.Errorf("CommandError.Error() with underlying but no stderr got %q, want %q", cmdErrNoStderr.Error(), expectedMsgNoStderr)
	}

	// Test with stderr but no underlying error
	cmdErrNoUnderlying := &CommandError{
		Cmd:      "rm /nonexistent",
		ExitCode: 1,
		Stderr:   "No such file or directory",
	}
	expectedMsgNoUnderlying := "command 'rm /nonexistent' failed with exit code 1: No such file or directory"
	if cmdErrNoUnderlying.Error() != expectedMsgNoUnderlying {
		t.Errorf("CommandError.Error() with stderr but no underlying got %q, want %q", cmdErrNoUnderlying.Error(), expectedMsgNoUnderlying)
	}
}

func TestExitCodeOf(t *testing.T) {
	cmdErr := &CommandError{Cmd: "apt-get update", ExitCode: 100}
	wrapped := fmt.Errorf("refresh repositories: %w", cmdErr)

	if got := ExitCodeOf(nil); got != 0 {
		t.Errorf("ExitCodeOf(nil) got %d, want 0", got)
	}
	if got := ExitCodeOf(wrapped); got != 100 {
		t.Errorf("ExitCodeOf(wrapped) got %d, want 100", got)
	}
	if got := ExitCodeOf(errors.New("plain")); got != -1 {
		t.Errorf("ExitCodeOf(plain) got %d, want -1", got)
	}
}
