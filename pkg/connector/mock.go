package connector

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// MockConnector is a scriptable Connector for tests. Unset function fields
// fall back to benign defaults: commands succeed with empty output, every
// executable is found under /usr/bin and files come from Files.
type MockConnector struct {
	ExecFunc     func(ctx context.Context, cmd string, options *ExecOptions) (stdout, stderr []byte, err error)
	LookPathFunc func(ctx context.Context, file string) (string, error)
	ReadFileFunc func(ctx context.Context, path string) ([]byte, error)

	// Files backs the default ReadFile implementation.
	Files map[string][]byte

	mu              sync.Mutex
	LastExecCmd     string
	LastExecOptions *ExecOptions
	ExecHistory     []string
}

// NewMockConnector creates a MockConnector with default behaviors.
func NewMockConnector() *MockConnector {
	return &MockConnector{Files: make(map[string][]byte)}
}

func (m *MockConnector) Exec(ctx context.Context, cmd string, options *ExecOptions) ([]byte, []byte, error) {
	m.mu.Lock()
	m.LastExecCmd = cmd
	m.LastExecOptions = options
	m.ExecHistory = append(m.ExecHistory, cmd)
	fn := m.ExecFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, cmd, options)
	}
	return nil, nil, nil
}

// History returns a copy of every command passed to Exec, in order.
func (m *MockConnector) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ExecHistory))
	copy(out, m.ExecHistory)
	return out
}

func (m *MockConnector) LookPath(ctx context.Context, file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(ctx, file)
	}
	return "/usr/bin/" + file, nil
}

func (m *MockConnector) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(ctx, path)
	}
	content, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("failed to read file %s: %w", path, os.ErrNotExist)
	}
	return content, nil
}

var _ Connector = (*MockConnector)(nil)
