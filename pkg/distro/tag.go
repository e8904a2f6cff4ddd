package distro

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	serrors "github.com/mensylisir/stackpkg/pkg/errors"
)

type tagRule struct {
	vendor *regexp.Regexp
	tag    func(vendor, release, codename string) string
}

// Evaluated in order; the first matching vendor pattern wins. openSUSE must
// precede SUSE LINUX.
var tagRules = []tagRule{
	{regexp.MustCompile(`Debian|Ubuntu|LinuxMint`), func(_, _, codename string) string { return codename }},
	{regexp.MustCompile(`Fedora`), func(_, release, _ string) string { return "f" + release }},
	{regexp.MustCompile(`openSUSE`), func(_, release, _ string) string { return "opensuse-" + release }},
	{regexp.MustCompile(`SUSE LINUX`), func(_, release, _ string) string { return "sle" + majorVersion(release) }},
	{regexp.MustCompile(`Red.*Hat|CentOS|OracleServer|Virtuozzo`), func(_, release, _ string) string { return "rhel" + firstChar(release) }},
	{regexp.MustCompile(`XenServer`), func(_, release, _ string) string { return "xs" + majorVersion(release) }},
	{regexp.MustCompile(`kvmibm`), func(vendor, release, _ string) string { return vendor + firstChar(release) }},
}

// ComputeDistroTag derives the short tag used by manifest dist: directives,
// for example "trusty", "f34", "rhel8" or "opensuse-15.2".
func ComputeDistroTag(vendor, release, codename string) (string, error) {
	for _, r := range tagRules {
		if r.vendor.MatchString(vendor) {
			return r.tag(vendor, release, codename), nil
		}
	}
	return "", serrors.UnrecognizedDistro("distro.ComputeDistroTag", "no distro tag rule for vendor %q release %q", vendor, release)
}

// majorVersion returns the leading numeric component of release.
func majorVersion(release string) string {
	if v, err := semver.NewVersion(release); err == nil {
		return strconv.FormatUint(v.Major(), 10)
	}
	if idx := strings.IndexByte(release, '.'); idx >= 0 {
		return release[:idx]
	}
	return release
}

func firstChar(s string) string {
	if s == "" {
		return ""
	}
	return s[:1]
}
