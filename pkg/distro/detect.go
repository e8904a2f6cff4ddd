package distro

import (
	"context"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"golang.org/x/sync/errgroup"

	"github.com/mensylisir/stackpkg/pkg/connector"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/logger"
)

const DefaultOSReleasePath = "/etc/os-release"

// A package manager holding its lock makes the lsb_release install fail
// transiently.
const (
	lsbInstallRetries    = 2
	lsbInstallRetryDelay = 5 * time.Second
)

// Detector produces the host identity.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// lsbInstallers lists, in order of preference, the package manager used to
// install the OS identification tool and the package that provides it.
var lsbInstallers = []struct {
	bin string
	cmd string
}{
	{"apt-get", "apt-get install -y lsb-release"},
	{"zypper", "zypper -n install lsb-release"},
	{"dnf", "dnf install -y redhat-lsb-core"},
	{"yum", "yum install -y redhat-lsb-core"},
}

// osReleaseVendors maps os-release ID values to the vendor names lsb_release
// reports, so that both sources feed the same tag rules.
var osReleaseVendors = map[string]string{
	"ubuntu":        "Ubuntu",
	"debian":        "Debian",
	"linuxmint":     "LinuxMint",
	"fedora":        "Fedora",
	"rhel":          "RedHatEnterpriseServer",
	"centos":        "CentOS",
	"ol":            "OracleServer",
	"virtuozzo":     "Virtuozzo",
	"opensuse":      "openSUSE",
	"opensuse-leap": "openSUSE",
	"sles":          "SUSE LINUX",
	"xenserver":     "XenServer",
	"kvmibm":        "kvmibm",
}

// HostDetector identifies the host through a Connector. It prefers
// lsb_release, installing it when missing, and falls back to os-release.
type HostDetector struct {
	conn          connector.Connector
	log           *logger.Logger
	Strict        bool
	OSReleasePath string
}

func NewHostDetector(conn connector.Connector, log *logger.Logger) *HostDetector {
	if log == nil {
		log = logger.Get()
	}
	return &HostDetector{
		conn:          conn,
		log:           log.With("component", "distro"),
		OSReleasePath: DefaultOSReleasePath,
	}
}

func (d *HostDetector) Detect(ctx context.Context) (*Info, error) {
	info, err := d.fromLSBRelease(ctx)
	if err != nil {
		d.log.Warnf("lsb_release unavailable (%v), falling back to %s", err, d.OSReleasePath)
		info, err = d.fromOSRelease(ctx)
		if err != nil {
			return nil, serrors.Wrap(serrors.KindUnsupportedPlatform, "distro.Detect", err, "cannot identify the operating system")
		}
	}
	return d.complete(info)
}

// complete derives family and tag from the raw identification strings.
func (d *HostDetector) complete(info *Info) (*Info, error) {
	if d.Strict {
		fam, err := ClassifyFamilyStrict(info.Vendor)
		if err != nil {
			return nil, err
		}
		info.Family = fam
	} else {
		info.Family = ClassifyFamily(info.Vendor)
		if info.Family == FamilyRPM && !IsKnownVendor(info.Vendor) {
			d.log.Warnf("unknown vendor %q assumed to be rpm based", info.Vendor)
		}
	}

	tag, err := ComputeDistroTag(info.Vendor, info.Release, info.Codename)
	if err != nil {
		return nil, err
	}
	info.DistroTag = tag
	d.log.Debugf("detected %s %s (%s) family=%s tag=%s via %s", info.Vendor, info.Release, info.Codename, info.Family, info.DistroTag, info.Source)
	return info, nil
}

func (d *HostDetector) ensureLSBRelease(ctx context.Context) error {
	if _, err := d.conn.LookPath(ctx, "lsb_release"); err == nil {
		return nil
	}
	for _, inst := range lsbInstallers {
		if _, err := d.conn.LookPath(ctx, inst.bin); err != nil {
			continue
		}
		d.log.Infof("lsb_release not found, installing it with %s", inst.bin)
		opts := &connector.ExecOptions{Sudo: true, Retries: lsbInstallRetries, RetryDelay: lsbInstallRetryDelay}
		if _, stderr, err := d.conn.Exec(ctx, inst.cmd, opts); err != nil {
			d.log.Warnf("installing lsb_release with %s failed: %s", inst.bin, strings.TrimSpace(string(stderr)))
		}
		break
	}
	if _, err := d.conn.LookPath(ctx, "lsb_release"); err != nil {
		return serrors.UnsupportedPlatform("distro.Detect", "lsb_release could not be found or installed")
	}
	return nil
}

func (d *HostDetector) fromLSBRelease(ctx context.Context) (*Info, error) {
	if err := d.ensureLSBRelease(ctx); err != nil {
		return nil, err
	}

	var vendor, release, codename string
	queries := []struct {
		flag string
		dst  *string
	}{
		{"-i", &vendor},
		{"-r", &release},
		{"-c", &codename},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range queries {
		p := p
		g.Go(func() error {
			out, _, err := d.conn.Exec(gctx, "lsb_release "+p.flag+" -s", &connector.ExecOptions{Hidden: true})
			if err != nil {
				return err
			}
			*p.dst = strings.TrimSpace(string(out))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, serrors.Wrap(serrors.KindUnsupportedPlatform, "distro.Detect", err, "lsb_release query failed")
	}
	if vendor == "" {
		return nil, serrors.UnsupportedPlatform("distro.Detect", "lsb_release reported an empty vendor")
	}
	return &Info{Vendor: vendor, Release: release, Codename: codename, Source: SourceLSBRelease}, nil
}

func (d *HostDetector) fromOSRelease(ctx context.Context) (*Info, error) {
	data, err := d.conn.ReadFile(ctx, d.OSReleasePath)
	if err != nil {
		return nil, err
	}
	return ParseOSRelease(data)
}

// ParseOSRelease converts os-release content into an Info with Vendor,
// Release, Codename and Source set.
func ParseOSRelease(data []byte) (*Info, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, serrors.Wrap(serrors.KindUnsupportedPlatform, "distro.ParseOSRelease", err, "malformed os-release")
	}
	sec := f.Section("")
	id := strings.ToLower(sec.Key("ID").String())
	if id == "" {
		return nil, serrors.UnsupportedPlatform("distro.ParseOSRelease", "os-release has no ID")
	}

	vendor, ok := osReleaseVendors[id]
	if !ok {
		vendor = sec.Key("NAME").MustString(id)
	}
	codename := sec.Key("VERSION_CODENAME").String()
	if codename == "" {
		codename = sec.Key("UBUNTU_CODENAME").String()
	}
	return &Info{
		Vendor:   vendor,
		Release:  sec.Key("VERSION_ID").String(),
		Codename: codename,
		Source:   SourceOSRelease,
	}, nil
}

var _ Detector = (*HostDetector)(nil)
