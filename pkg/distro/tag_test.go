package distro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/mensylisir/stackpkg/pkg/errors"
)

func TestComputeDistroTag(t *testing.T) {
	testCases := []struct {
		vendor   string
		release  string
		codename string
		want     string
	}{
		{"Ubuntu", "14.04", "trusty", "trusty"},
		{"Debian", "12", "bookworm", "bookworm"},
		{"LinuxMint", "21.1", "vera", "vera"},
		{"Fedora", "34", "", "f34"},
		{"openSUSE", "15.2", "n/a", "opensuse-15.2"},
		{"openSUSE project", "42.3", "n/a", "opensuse-42.3"},
		{"SUSE LINUX", "12.1", "n/a", "sle12"},
		{"SUSE LINUX", "12", "n/a", "sle12"},
		{"RedHatEnterpriseServer", "8.4", "Ootpa", "rhel8"},
		{"Red Hat", "7.9", "Maipo", "rhel7"},
		{"CentOS", "7.9.2009", "Core", "rhel7"},
		{"OracleServer", "8.6", "n/a", "rhel8"},
		{"Virtuozzo", "7.0", "n/a", "rhel7"},
		{"XenServer", "7.0.0-125380c", "n/a", "xs7"},
		{"kvmibm", "1.1.3", "n/a", "kvmibm1"},
	}
	for _, tc := range testCases {
		t.Run(tc.vendor+"/"+tc.release, func(t *testing.T) {
			got, err := ComputeDistroTag(tc.vendor, tc.release, tc.codename)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeDistroTag_Unrecognized(t *testing.T) {
	_, err := ComputeDistroTag("Gentoo", "2.14", "n/a")
	require.Error(t, err)
	assert.ErrorIs(t, err, serrors.ErrUnrecognizedDistro)
	assert.Equal(t, 1, serrors.ExitCode(err))
}

func TestMajorVersion(t *testing.T) {
	assert.Equal(t, "12", majorVersion("12.1"))
	assert.Equal(t, "7", majorVersion("7"))
	assert.Equal(t, "abc", majorVersion("abc.def"))
	assert.Equal(t, "", majorVersion(""))
}
