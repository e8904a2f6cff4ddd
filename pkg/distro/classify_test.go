package distro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/mensylisir/stackpkg/pkg/errors"
)

func TestClassifyFamily(t *testing.T) {
	assert.Equal(t, FamilyDeb, ClassifyFamily("Ubuntu"))
	assert.Equal(t, FamilyDeb, ClassifyFamily("Debian"))
	assert.Equal(t, FamilyDeb, ClassifyFamily("LinuxMint"))
	assert.Equal(t, FamilyRPM, ClassifyFamily("Fedora"))
	assert.Equal(t, FamilyRPM, ClassifyFamily("openSUSE"))
	// Open-world default.
	assert.Equal(t, FamilyRPM, ClassifyFamily("Gentoo"))
}

func TestClassifyFamilyStrict(t *testing.T) {
	fam, err := ClassifyFamilyStrict("CentOS")
	require.NoError(t, err)
	assert.Equal(t, FamilyRPM, fam)

	fam, err = ClassifyFamilyStrict("Ubuntu")
	require.NoError(t, err)
	assert.Equal(t, FamilyDeb, fam)

	_, err = ClassifyFamilyStrict("Gentoo")
	assert.ErrorIs(t, err, serrors.ErrUnsupportedPlatform)
}

func TestPredicates(t *testing.T) {
	testCases := []struct {
		name                         string
		info                         *Info
		ubuntu, fedora, suse, oracle bool
	}{
		{"ubuntu", &Info{Vendor: "Ubuntu", Family: FamilyDeb}, true, false, false, false},
		{"debian counts as ubuntu", &Info{Vendor: "Debian", Family: FamilyDeb}, true, false, false, false},
		{"fedora", &Info{Vendor: "Fedora", Family: FamilyRPM}, false, true, false, false},
		{"rhel", &Info{Vendor: "RedHatEnterpriseServer", Family: FamilyRPM}, false, true, false, false},
		{"centos", &Info{Vendor: "CentOS", Family: FamilyRPM}, false, true, false, false},
		{"oracle", &Info{Vendor: "OracleServer", Family: FamilyRPM}, false, true, false, true},
		{"kvmibm", &Info{Vendor: "kvmibm", Family: FamilyRPM}, false, true, false, false},
		{"opensuse", &Info{Vendor: "openSUSE", Family: FamilyRPM}, false, false, true, false},
		{"sles", &Info{Vendor: "SUSE LINUX", Family: FamilyRPM}, false, false, true, false},
		{"xenserver", &Info{Vendor: "XenServer", Family: FamilyRPM}, false, false, false, false},
		{"nil", nil, false, false, false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ubuntu, IsUbuntu(tc.info), "IsUbuntu")
			assert.Equal(t, tc.fedora, IsFedora(tc.info), "IsFedora")
			assert.Equal(t, tc.suse, IsSUSE(tc.info), "IsSUSE")
			assert.Equal(t, tc.oracle, IsOracleLinux(tc.info), "IsOracleLinux")
		})
	}
}
