package connector

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mensylisir/stackpkg/pkg/logger"
)

func newTestConnector(t *testing.T) *LocalConnector {
	t.Helper()
	opts := logger.DefaultOptions()
	opts.ConsoleOutput = false
	log, err := logger.NewLogger(opts)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return NewLocalConnector(log)
}

func TestLocalConnector_Exec(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnector(t)

	t.Run("Simple Command", func(t *testing.T) {
		stdout, _, err := conn.Exec(ctx, "echo 'hello world'", nil)
		if err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
		if got := strings.TrimSpace(string(stdout)); got != "hello world" {
			t.Errorf("Expected 'hello world', got '%s'", got)
		}
	})

	t.Run("Environment Variables", func(t *testing.T) {
		stdout, _, err := conn.Exec(ctx, "echo $DEBIAN_FRONTEND", &ExecOptions{Env: []string{"DEBIAN_FRONTEND=noninteractive"}})
		if err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
		if got := strings.TrimSpace(string(stdout)); got != "noninteractive" {
			t.Errorf("Expected 'noninteractive', got '%s'", got)
		}
	})

	t.Run("Stream", func(t *testing.T) {
		var stream bytes.Buffer
		stdout, stderr, err := conn.Exec(ctx, "echo out; echo err >&2", &ExecOptions{Stream: &stream})
		if err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
		if strings.TrimSpace(string(stdout)) != "out" || strings.TrimSpace(string(stderr)) != "err" {
			t.Errorf("unexpected captured output: stdout=%q stderr=%q", stdout, stderr)
		}
		if !strings.Contains(stream.String(), "out") || !strings.Contains(stream.String(), "err") {
			t.Errorf("stream should see both outputs, got %q", stream.String())
		}
	})

	t.Run("Exit Code", func(t *testing.T) {
		_, _, err := conn.Exec(ctx, "echo oops >&2; exit 3", nil)
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("expected *CommandError, got %T: %v", err, err)
		}
		if cmdErr.ExitCode != 3 {
			t.Errorf("ExitCode got %d, want 3", cmdErr.ExitCode)
		}
		if strings.TrimSpace(cmdErr.Stderr) != "oops" {
			t.Errorf("Stderr got %q, want 'oops'", cmdErr.Stderr)
		}
	})

	t.Run("Retries", func(t *testing.T) {
		marker := filepath.Join(t.TempDir(), "attempts")
		cmd := "echo x >> " + marker + "; exit 1"
		_, _, err := conn.Exec(ctx, cmd, &ExecOptions{Retries: 2, RetryDelay: time.Millisecond})
		if err == nil {
			t.Fatal("expected failure")
		}
		data, readErr := os.ReadFile(marker)
		if readErr != nil {
			t.Fatalf("ReadFile failed: %v", readErr)
		}
		if n := strings.Count(string(data), "x"); n != 3 {
			t.Errorf("expected 3 attempts, got %d", n)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		start := time.Now()
		_, _, err := conn.Exec(ctx, "sleep 5", &ExecOptions{Timeout: 100 * time.Millisecond})
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if time.Since(start) > 3*time.Second {
			t.Errorf("timeout was not enforced")
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := conn.Exec(cctx, "echo never", nil)
		if ExitCodeOf(err) != -1 || !errors.Is(err, context.Canceled) {
			t.Errorf("expected cancellation error with exit code -1, got %v", err)
		}
	})
}

func TestLocalConnector_Files(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnector(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "os-release")
	if err := os.WriteFile(path, []byte("ID=ubuntu\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	content, err := conn.ReadFile(ctx, path)
	if err != nil || string(content) != "ID=ubuntu\n" {
		t.Errorf("ReadFile got %q, %v", content, err)
	}
	if _, err := conn.ReadFile(ctx, filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile on missing file should wrap os.ErrNotExist, got %v", err)
	}
}

func TestLocalConnector_LookPath(t *testing.T) {
	ctx := context.Background()
	conn := newTestConnector(t)

	if p, err := conn.LookPath(ctx, "sh"); err != nil || p == "" {
		t.Errorf("LookPath(sh) got %q, %v", p, err)
	}
	if _, err := conn.LookPath(ctx, "definitely-not-a-real-binary-xyz"); err == nil {
		t.Errorf("LookPath should fail for a missing binary")
	}
}

func TestMockConnector_Defaults(t *testing.T) {
	ctx := context.Background()
	m := NewMockConnector()
	m.Files["/etc/os-release"] = []byte("ID=fedora\n")

	if _, _, err := m.Exec(ctx, "true", nil); err != nil {
		t.Errorf("default Exec should succeed, got %v", err)
	}
	if got := m.History(); len(got) != 1 || got[0] != "true" {
		t.Errorf("History got %v", got)
	}
	if p, _ := m.LookPath(ctx, "dnf"); p != "/usr/bin/dnf" {
		t.Errorf("LookPath got %q", p)
	}
	if c, err := m.ReadFile(ctx, "/etc/os-release"); err != nil || string(c) != "ID=fedora\n" {
		t.Errorf("ReadFile got %q, %v", c, err)
	}
	if _, err := m.ReadFile(ctx, "/nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(/nope) should wrap os.ErrNotExist, got %v", err)
	}
}
