package distro

import (
	"regexp"

	serrors "github.com/mensylisir/stackpkg/pkg/errors"
)

var (
	debVendorRe = regexp.MustCompile(`Debian|Ubuntu|LinuxMint`)
	// Vendors known to ship rpm. Only consulted by strict classification.
	rpmVendorRe = regexp.MustCompile(`Fedora|Red.*Hat|CentOS|OracleServer|Virtuozzo|kvmibm|openSUSE|SUSE|XenServer`)

	fedoraVendorRe = regexp.MustCompile(`^(Fedora|Red.*Hat.*|CentOS|OracleServer|Virtuozzo|kvmibm)$`)
	suseVendorRe   = regexp.MustCompile(`openSUSE|SUSE LINUX`)
)

// ClassifyFamily maps a vendor string to its package family. Debian, Ubuntu
// and LinuxMint are deb; every other vendor is assumed to be rpm.
func ClassifyFamily(vendor string) Family {
	if debVendorRe.MatchString(vendor) {
		return FamilyDeb
	}
	return FamilyRPM
}

// ClassifyFamilyStrict is ClassifyFamily without the rpm fallback: a vendor
// that is not a known rpm distribution is rejected.
func ClassifyFamilyStrict(vendor string) (Family, error) {
	if debVendorRe.MatchString(vendor) {
		return FamilyDeb, nil
	}
	if rpmVendorRe.MatchString(vendor) {
		return FamilyRPM, nil
	}
	return "", serrors.UnsupportedPlatform("distro.ClassifyFamily", "vendor %q is not a known deb or rpm distribution", vendor)
}

// IsKnownVendor reports whether strict classification would accept vendor.
func IsKnownVendor(vendor string) bool {
	return debVendorRe.MatchString(vendor) || rpmVendorRe.MatchString(vendor)
}

// IsDebianFamily reports whether info describes a deb based host.
func IsDebianFamily(info *Info) bool {
	return info != nil && info.Family == FamilyDeb
}

// IsUbuntu is true for the whole deb family, not only Ubuntu proper.
func IsUbuntu(info *Info) bool {
	return IsDebianFamily(info)
}

// IsFedora is true for Fedora and the RHEL family (Red Hat, CentOS, Oracle,
// Virtuozzo, KVM for IBM z).
func IsFedora(info *Info) bool {
	return info != nil && fedoraVendorRe.MatchString(info.Vendor)
}

func IsSUSE(info *Info) bool {
	return info != nil && suseVendorRe.MatchString(info.Vendor)
}

func IsOracleLinux(info *Info) bool {
	return info != nil && info.Vendor == "OracleServer"
}
