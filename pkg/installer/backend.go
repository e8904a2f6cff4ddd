package installer

import (
	"text/template"

	"github.com/mensylisir/stackpkg/pkg/config"
	"github.com/mensylisir/stackpkg/pkg/distro"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/util"
)

// Command lines for every backend. The proxy prefix keeps the variables
// across sudo even where the sudoers policy resets the environment.
var commandTemplates = util.MustParseTemplate("commands", `
{{- define "env" }}env http_proxy={{ shq .Proxy.HTTP }} https_proxy={{ shq .Proxy.HTTPS }} no_proxy={{ shq .Proxy.NoProxy }}{{ end }}
{{- define "apt" }}{{ template "env" . }} DEBIAN_FRONTEND=noninteractive apt-get --option Dpkg::Options::=--force-confold --assume-yes {{ .Verb }} {{ shjoin .Packages }}{{ end }}
{{- define "yum-install" }}{{ template "env" . }} {{ shq .Bin }} install -y {{ shjoin .Packages }}{{ end }}
{{- define "yum-remove" }}{{ template "env" . }} {{ shq .Bin }} remove -y {{ shjoin .Packages }}{{ end }}
{{- define "zypper-install" }}{{ template "env" . }} zypper --non-interactive install --auto-agree-with-licenses {{ shjoin .Packages }}{{ end }}
{{- define "zypper-remove" }}{{ template "env" . }} zypper remove -y {{ shjoin .Packages }}{{ end }}
{{- define "dpkg-query" }}dpkg -s {{ shjoin .Packages }}{{ end }}
{{- define "rpm-query" }}rpm --quiet -q {{ shjoin .Packages }}{{ end }}
`)

type commandData struct {
	Proxy    config.ProxyConfig
	Bin      string
	Verb     string
	Packages []string
}

func render(name string, data commandData) (string, error) {
	var tmpl *template.Template
	if tmpl = commandTemplates.Lookup(name); tmpl == nil {
		return "", serrors.New(serrors.KindUnknown, "installer.render", "no command template %q", name)
	}
	cmd, err := util.ExecuteTemplate(tmpl, data)
	if err != nil {
		return "", serrors.Wrap(serrors.KindUnknown, "installer.render", err, "failed to render command")
	}
	return cmd, nil
}

// backend is one native package manager.
type backend interface {
	Name() string
	InstallCmd(pkgs []string) (string, error)
	UninstallCmd(pkgs []string) (string, error)
	Classify(output string, runErr error) Classification
}

type aptBackend struct{ proxy config.ProxyConfig }

func (b aptBackend) Name() string { return "apt" }

func (b aptBackend) InstallCmd(pkgs []string) (string, error) {
	return render("apt", commandData{Proxy: b.proxy, Verb: "install", Packages: pkgs})
}

func (b aptBackend) UninstallCmd(pkgs []string) (string, error) {
	return render("apt", commandData{Proxy: b.proxy, Verb: "purge", Packages: pkgs})
}

func (b aptBackend) UpdateCmd() (string, error) {
	return render("apt", commandData{Proxy: b.proxy, Verb: "update"})
}

func (b aptBackend) Classify(_ string, runErr error) Classification {
	return ClassifyExit(runErr)
}

type yumBackend struct {
	proxy    config.ProxyConfig
	bin      string
	patterns OutputPatterns
}

func (b yumBackend) Name() string { return b.bin }

func (b yumBackend) InstallCmd(pkgs []string) (string, error) {
	return render("yum-install", commandData{Proxy: b.proxy, Bin: b.bin, Packages: pkgs})
}

func (b yumBackend) UninstallCmd(pkgs []string) (string, error) {
	return render("yum-remove", commandData{Proxy: b.proxy, Bin: b.bin, Packages: pkgs})
}

func (b yumBackend) Classify(output string, runErr error) Classification {
	return ClassifyOutput(b.patterns, output, runErr)
}

type zypperBackend struct{ proxy config.ProxyConfig }

func (b zypperBackend) Name() string { return "zypper" }

func (b zypperBackend) InstallCmd(pkgs []string) (string, error) {
	return render("zypper-install", commandData{Proxy: b.proxy, Packages: pkgs})
}

func (b zypperBackend) UninstallCmd(pkgs []string) (string, error) {
	return render("zypper-remove", commandData{Proxy: b.proxy, Packages: pkgs})
}

func (b zypperBackend) Classify(_ string, runErr error) Classification {
	return ClassifyExit(runErr)
}

// backendFor picks the package manager for a host.
func backendFor(info *distro.Info, cfg *config.Config) (backend, error) {
	switch {
	case distro.IsUbuntu(info):
		return aptBackend{proxy: cfg.Proxy}, nil
	case distro.IsFedora(info):
		return yumBackend{proxy: cfg.Proxy, bin: cfg.YumBinary, patterns: YumOutputPatterns}, nil
	case distro.IsSUSE(info):
		return zypperBackend{proxy: cfg.Proxy}, nil
	}
	return nil, serrors.UnsupportedPlatform("installer.backend", "no package manager for vendor %q (family %q)", info.Vendor, info.Family)
}

// queryCmd returns the installed-package query for a family.
func queryCmd(info *distro.Info, pkgs []string) (string, error) {
	switch info.Family {
	case distro.FamilyDeb:
		return render("dpkg-query", commandData{Packages: pkgs})
	case distro.FamilyRPM:
		return render("rpm-query", commandData{Packages: pkgs})
	}
	return "", serrors.UnsupportedPlatform("installer.IsInstalled", "unknown package family %q", info.Family)
}
