package distro

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/stackpkg/pkg/connector"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
)

var errNotFound = errors.New("executable file not found in $PATH")

func lsbMock(vendor, release, codename string) *connector.MockConnector {
	m := connector.NewMockConnector()
	m.ExecFunc = func(ctx context.Context, cmd string, opts *connector.ExecOptions) ([]byte, []byte, error) {
		if strings.HasPrefix(cmd, "lsb_release ") && (opts == nil || !opts.Hidden) {
			return nil, nil, errors.New("lsb_release queries must not be logged: " + cmd)
		}
		switch cmd {
		case "lsb_release -i -s":
			return []byte(vendor + "\n"), nil, nil
		case "lsb_release -r -s":
			return []byte(release + "\n"), nil, nil
		case "lsb_release -c -s":
			return []byte(codename + "\n"), nil, nil
		}
		return nil, nil, errors.New("unexpected command " + cmd)
	}
	return m
}

func TestHostDetector_LSBRelease(t *testing.T) {
	d := NewHostDetector(lsbMock("Ubuntu", "14.04", "trusty"), nil)

	info, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Info{
		Vendor:    "Ubuntu",
		Release:   "14.04",
		Family:    FamilyDeb,
		Codename:  "trusty",
		DistroTag: "trusty",
		Source:    SourceLSBRelease,
	}, info)
}

func TestHostDetector_InstallsLSBRelease(t *testing.T) {
	var installed atomic.Bool
	m := lsbMock("Fedora", "34", "n/a")
	query := m.ExecFunc
	m.ExecFunc = func(ctx context.Context, cmd string, opts *connector.ExecOptions) ([]byte, []byte, error) {
		if strings.Contains(cmd, "install") {
			require.NotNil(t, opts)
			assert.True(t, opts.Sudo, "installs must run with sudo")
			assert.Equal(t, lsbInstallRetries, opts.Retries)
			assert.Equal(t, lsbInstallRetryDelay, opts.RetryDelay)
			installed.Store(true)
			return nil, nil, nil
		}
		return query(ctx, cmd, opts)
	}
	m.LookPathFunc = func(ctx context.Context, file string) (string, error) {
		switch file {
		case "dnf", "yum":
			return "/usr/bin/" + file, nil
		case "lsb_release":
			if installed.Load() {
				return "/usr/bin/lsb_release", nil
			}
		}
		return "", errNotFound
	}

	info, err := NewHostDetector(m, nil).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "f34", info.DistroTag)

	history := m.History()
	require.NotEmpty(t, history)
	assert.Equal(t, "dnf install -y redhat-lsb-core", history[0], "first available manager is dnf")
	assert.NotContains(t, strings.Join(history, "\n"), "yum install")
}

func TestHostDetector_OSReleaseFallback(t *testing.T) {
	m := connector.NewMockConnector()
	m.LookPathFunc = func(ctx context.Context, file string) (string, error) { return "", errNotFound }
	m.Files[DefaultOSReleasePath] = []byte(`NAME="openSUSE Leap"
VERSION="15.2"
ID="opensuse-leap"
ID_LIKE="suse opensuse"
VERSION_ID="15.2"
PRETTY_NAME="openSUSE Leap 15.2"
HOME_URL="https://www.opensuse.org/"
`)

	info, err := NewHostDetector(m, nil).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "openSUSE", info.Vendor)
	assert.Equal(t, "15.2", info.Release)
	assert.Equal(t, FamilyRPM, info.Family)
	assert.Equal(t, "opensuse-15.2", info.DistroTag)
	assert.Equal(t, SourceOSRelease, info.Source)
	assert.Empty(t, m.History(), "no package manager is present to install lsb_release")
}

func TestHostDetector_Unsupported(t *testing.T) {
	m := connector.NewMockConnector()
	m.LookPathFunc = func(ctx context.Context, file string) (string, error) { return "", errNotFound }

	_, err := NewHostDetector(m, nil).Detect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, serrors.ErrUnsupportedPlatform)
}

func TestHostDetector_UnknownVendor(t *testing.T) {
	newMock := func() *connector.MockConnector {
		m := connector.NewMockConnector()
		m.LookPathFunc = func(ctx context.Context, file string) (string, error) { return "", errNotFound }
		m.Files[DefaultOSReleasePath] = []byte("NAME=Gentoo\nID=gentoo\nVERSION_ID=2.14\n")
		return m
	}

	t.Run("open world", func(t *testing.T) {
		_, err := NewHostDetector(newMock(), nil).Detect(context.Background())
		assert.ErrorIs(t, err, serrors.ErrUnrecognizedDistro)
	})

	t.Run("strict", func(t *testing.T) {
		d := NewHostDetector(newMock(), nil)
		d.Strict = true
		_, err := d.Detect(context.Background())
		assert.ErrorIs(t, err, serrors.ErrUnsupportedPlatform)
	})
}

func TestParseOSRelease(t *testing.T) {
	info, err := ParseOSRelease([]byte(`PRETTY_NAME="Ubuntu 22.04.3 LTS"
NAME="Ubuntu"
VERSION_ID="22.04"
VERSION="22.04.3 LTS (Jammy Jellyfish)"
VERSION_CODENAME=jammy
ID=ubuntu
ID_LIKE=debian
UBUNTU_CODENAME=jammy
`))
	require.NoError(t, err)
	assert.Equal(t, "Ubuntu", info.Vendor)
	assert.Equal(t, "22.04", info.Release)
	assert.Equal(t, "jammy", info.Codename)

	_, err = ParseOSRelease([]byte("NAME=nothing\n"))
	assert.ErrorIs(t, err, serrors.ErrUnsupportedPlatform)
}
