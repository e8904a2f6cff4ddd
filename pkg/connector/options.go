package connector

import (
	"io"
	"time"
)

// ExecOptions tunes a single Exec call.
type ExecOptions struct {
	// Sudo runs the command through "sudo -E --" unless the process is already root.
	Sudo bool
	// Timeout bounds each attempt. Zero means no limit beyond the context.
	Timeout time.Duration
	// Env entries ("KEY=value") are appended to the inherited environment.
	Env []string
	// Retries is the number of extra attempts after a failure, RetryDelay apart.
	Retries    int
	RetryDelay time.Duration
	// Hidden keeps the command line out of debug logs.
	Hidden bool
	// Stream, when set, additionally receives stdout and stderr as they are produced.
	Stream io.Writer
}
