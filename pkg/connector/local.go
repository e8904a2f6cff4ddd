package connector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/mensylisir/stackpkg/pkg/logger"
)

// LocalConnector runs commands on the machine stackpkg itself runs on.
type LocalConnector struct {
	log  *logger.Logger
	root bool
}

// NewLocalConnector returns a connector for the local host.
func NewLocalConnector(log *logger.Logger) *LocalConnector {
	if log == nil {
		log = logger.Get()
	}
	return &LocalConnector{log: log.With("component", "connector"), root: os.Geteuid() == 0}
}

func (l *LocalConnector) Exec(ctx context.Context, cmd string, options *ExecOptions) (stdout, stderr []byte, err error) {
	effectiveOptions := ExecOptions{}
	if options != nil {
		effectiveOptions = *options
	}

	fullCmdString := cmd
	if effectiveOptions.Sudo && !l.root {
		fullCmdString = "sudo -E -- " + cmd
	}
	if !effectiveOptions.Hidden {
		l.log.Debugf("exec: %s", fullCmdString)
	}

	runOnce := func(runCtx context.Context) ([]byte, []byte, error) {
		actualCmd := exec.CommandContext(runCtx, "/bin/sh", "-c", fullCmdString)
		// Children that inherit the pipes must not hold Run open past a kill.
		actualCmd.WaitDelay = time.Second
		if len(effectiveOptions.Env) > 0 {
			actualCmd.Env = append(os.Environ(), effectiveOptions.Env...)
		}

		var stdoutBuf, stderrBuf bytes.Buffer
		if effectiveOptions.Stream != nil {
			actualCmd.Stdout = io.MultiWriter(&stdoutBuf, effectiveOptions.Stream)
			actualCmd.Stderr = io.MultiWriter(&stderrBuf, effectiveOptions.Stream)
		} else {
			actualCmd.Stdout = &stdoutBuf
			actualCmd.Stderr = &stderrBuf
		}

		runErr := actualCmd.Run()
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), runErr
	}

	var finalErr error
	for i := 0; i <= effectiveOptions.Retries; i++ {
		attemptCtx := ctx
		var attemptCancel context.CancelFunc
		if effectiveOptions.Timeout > 0 {
			attemptCtx, attemptCancel = context.WithTimeout(ctx, effectiveOptions.Timeout)
		}

		stdout, stderr, err = runOnce(attemptCtx)
		if attemptCancel != nil {
			attemptCancel()
		}
		if err == nil {
			return stdout, stderr, nil
		}

		finalErr = err
		if ctx.Err() != nil || i == effectiveOptions.Retries {
			break
		}
		if effectiveOptions.RetryDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(effectiveOptions.RetryDelay):
			}
		}
	}

	if ctx.Err() != nil {
		return stdout, stderr, &CommandError{Cmd: cmd, ExitCode: -1, Stdout: string(stdout), Stderr: string(stderr), Underlying: ctx.Err()}
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(finalErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return stdout, stderr, &CommandError{Cmd: cmd, ExitCode: exitCode, Stdout: string(stdout), Stderr: string(stderr), Underlying: finalErr}
}

func (l *LocalConnector) LookPath(ctx context.Context, file string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := exec.LookPath(file)
	if err != nil {
		return "", fmt.Errorf("executable %s not found in PATH: %w", file, err)
	}
	return path, nil
}

func (l *LocalConnector) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return content, nil
}

var _ Connector = (*LocalConnector)(nil)
