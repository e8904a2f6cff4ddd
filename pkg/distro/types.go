// Package distro identifies the host Linux distribution and derives the
// package family and the short distro tag used to filter package manifests.
package distro

// Family is the native packaging format of a distribution.
type Family string

const (
	FamilyDeb Family = "deb"
	FamilyRPM Family = "rpm"
)

// Where the identification strings came from.
const (
	SourceLSBRelease = "lsb_release"
	SourceOSRelease  = "os-release"
)

// Info is the identity of the host. It is computed once per run and never
// modified afterwards; callers receive copies.
type Info struct {
	Vendor    string `json:"vendor" yaml:"vendor"`
	Release   string `json:"release" yaml:"release"`
	Family    Family `json:"package_family" yaml:"package_family"`
	Codename  string `json:"codename" yaml:"codename"`
	DistroTag string `json:"distro_tag" yaml:"distro_tag"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Clone returns a copy of i, or nil for a nil receiver.
func (i *Info) Clone() *Info {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
