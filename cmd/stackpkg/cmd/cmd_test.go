package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/stackpkg/pkg/config"
	"github.com/mensylisir/stackpkg/pkg/distro"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/resolver"
)

var xenial = &distro.Info{
	Vendor:    "Ubuntu",
	Release:   "16.04",
	Family:    distro.FamilyDeb,
	Codename:  "xenial",
	DistroTag: "xenial",
	Source:    distro.SourceLSBRelease,
}

func TestPrintInfo(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, printInfo(&buf, xenial, &detectOptions{Output: "json"}))
	assert.JSONEq(t, `{"vendor":"Ubuntu","release":"16.04","package_family":"deb","codename":"xenial","distro_tag":"xenial","source":"lsb_release"}`, buf.String())

	buf.Reset()
	require.NoError(t, printInfo(&buf, xenial, &detectOptions{Output: "yaml"}))
	assert.Contains(t, buf.String(), "distro_tag: xenial\n")
	assert.Contains(t, buf.String(), "package_family: deb\n")

	buf.Reset()
	require.NoError(t, printInfo(&buf, &distro.Info{Vendor: "SUSE LINUX", Release: "12.1", Family: distro.FamilyRPM, Codename: "n/a", DistroTag: "sle12"}, &detectOptions{Output: "env"}))
	assert.Equal(t, "os_VENDOR='SUSE LINUX'\nos_RELEASE=12.1\nos_CODENAME=n/a\nos_PACKAGE=rpm\nDISTRO=sle12\n", buf.String())

	buf.Reset()
	require.NoError(t, printInfo(&buf, xenial, &detectOptions{Output: "table"}))
	assert.Contains(t, buf.String(), "VENDOR")
	assert.Contains(t, buf.String(), "xenial")

	buf.Reset()
	require.NoError(t, printInfo(&buf, xenial, &detectOptions{Output: "table", NoHeaders: true}))
	assert.NotContains(t, buf.String(), "VENDOR")

	err := printInfo(&buf, xenial, &detectOptions{Output: "xml"})
	assert.Equal(t, serrors.KindInvalidArgument, serrors.KindOf(err))
}

func TestApplyFlags_OnlyExplicitFlagsOverride(t *testing.T) {
	c := &cobra.Command{Use: "test"}
	c.Flags().AddFlagSet(rootCmd.PersistentFlags())

	cfg := config.Default()
	cfg.FilesDir = "/opt/stack/devstack/files"
	cfg.Offline = true

	require.NoError(t, c.Flags().Parse([]string{"--log-dir", "/opt/stack/logs", "--strict-family"}))
	applyFlags(c, cfg)

	assert.Equal(t, "/opt/stack/devstack/files", cfg.FilesDir, "unset flags keep file and env values")
	assert.True(t, cfg.Offline)
	assert.Equal(t, "/opt/stack/logs", cfg.LogDir)
	assert.True(t, cfg.StrictFamily)
	assert.Equal(t, "/opt/stack/logs/error.log", cfg.ErrorLogPath())
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"get-packages", "install", "uninstall", "is-installed", "update-repos", "detect", "version", "completion"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func newTestResolver(t *testing.T) (*resolver.Resolver, string) {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, resolver.DebsDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "general"), []byte("git\n# tools\ncurl\n"), 0644))
	return resolver.New(base, distro.NewStaticClassifier(xenial), nil), base
}

func TestRunGetPackages(t *testing.T) {
	res, base := newTestResolver(t)
	ctx := context.Background()
	var buf bytes.Buffer

	require.NoError(t, runGetPackages(ctx, &buf, res, &getPackagesOptions{}, []string{"general"}))
	assert.Equal(t, "git\ncurl\n", buf.String())

	buf.Reset()
	require.NoError(t, runGetPackages(ctx, &buf, res, &getPackagesOptions{Sources: true}, []string{"general"}))
	manifest := filepath.Join(base, resolver.DebsDir, "general")
	assert.Equal(t, "git\t"+manifest+":1\ncurl\t"+manifest+":3\n", buf.String())

	buf.Reset()
	require.NoError(t, runGetPackages(ctx, &buf, res, &getPackagesOptions{Files: true}, []string{"general"}))
	assert.Equal(t, manifest+"\n", buf.String())
}

func TestRunGetPackages_ArgumentCount(t *testing.T) {
	res, _ := newTestResolver(t)
	ctx := context.Background()
	var buf bytes.Buffer

	for _, args := range [][]string{nil, {"general", "n-cpu"}} {
		for _, opts := range []*getPackagesOptions{{}, {Files: true}, {Sources: true}, {Plugins: []string{"/opt/stack/ironic"}}} {
			err := runGetPackages(ctx, &buf, res, opts, args)
			assert.Equal(t, serrors.KindInvalidArgument, serrors.KindOf(err), "%+v %v", opts, args)
			assert.Equal(t, 1, serrors.ExitCode(err))
		}
	}
	assert.Empty(t, buf.String())

	c, _, err := rootCmd.Find([]string{"get-packages"})
	require.NoError(t, err)
	assert.NoError(t, c.ValidateArgs(nil), "argument count is checked by the resolver")
}
