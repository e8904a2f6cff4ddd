package connector

import (
	"context"
)

// Connector is the seam between stackpkg and the host it manages. All shell
// commands and file reads issued by the detector and installer go through it,
// so tests substitute a MockConnector.
type Connector interface {
	Exec(ctx context.Context, cmd string, opts *ExecOptions) (stdout, stderr []byte, err error)
	LookPath(ctx context.Context, file string) (string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
}
