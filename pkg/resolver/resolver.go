// Package resolver turns a comma-separated list of services into the flat
// list of OS packages they need, by selecting manifest files and parsing them
// for the host's distro tag.
package resolver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mensylisir/stackpkg/pkg/distro"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/logger"
	"github.com/mensylisir/stackpkg/pkg/manifest"
)

// Package directory names under the files dir, one per packaging flavour.
const (
	DebsDir     = "debs"
	RPMsDir     = "rpms"
	RPMsSUSEDir = "rpms-suse"
)

// groupRule adds the manifest files of one or more component groups when a
// service token matches.
type groupRule struct {
	match  func(token string) bool
	groups []string
}

func exact(s string) func(string) bool {
	return func(token string) bool { return token == s }
}

func prefix(p string) func(string) bool {
	return func(token string) bool { return strings.HasPrefix(token, p) }
}

// Only the first matching rule applies to a token, so exact n-api must come
// before the n- prefix.
var groupRules = []groupRule{
	{exact("n-api"), []string{"nova", "glance"}},
	{prefix("c-"), []string{"cinder"}},
	{prefix("s-"), []string{"swift"}},
	{prefix("n-"), []string{"nova"}},
	{prefix("g-"), []string{"glance"}},
	{prefix("key"), []string{"keystone"}},
	{prefix("q-"), []string{"neutron"}},
	{prefix("ir-"), []string{"ironic"}},
}

// Groups returns the component groups a single service token pulls in.
func Groups(token string) []string {
	for _, r := range groupRules {
		if r.match(token) {
			return r.groups
		}
	}
	return nil
}

// Resolver selects and parses manifests. It is safe for concurrent use.
type Resolver struct {
	filesDir   string
	classifier *distro.Classifier
	log        *logger.Logger
}

func New(filesDir string, classifier *distro.Classifier, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Get()
	}
	return &Resolver{filesDir: filesDir, classifier: classifier, log: log.With("component", "resolver")}
}

// PackageDir returns the manifest directory under base for the host family.
func PackageDir(info *distro.Info, base string) (string, error) {
	if base == "" {
		return "", serrors.InvalidArgument("resolver.PackageDir", "files directory is not set")
	}
	switch {
	case distro.IsUbuntu(info):
		return filepath.Join(base, DebsDir), nil
	case distro.IsFedora(info):
		return filepath.Join(base, RPMsDir), nil
	case distro.IsSUSE(info):
		return filepath.Join(base, RPMsSUSEDir), nil
	}
	vendor := ""
	if info != nil {
		vendor = info.Vendor
	}
	return "", serrors.UnsupportedPlatform("resolver.PackageDir", "no package directory for vendor %q", vendor)
}

// Resolve returns the packages needed by a comma-separated service list.
// Exactly one argument must be given.
func (r *Resolver) Resolve(ctx context.Context, args ...string) ([]string, error) {
	entries, err := r.resolveEntries(ctx, args)
	if err != nil {
		return nil, err
	}
	return manifest.Names(entries), nil
}

// Entries is Resolve returning the full manifest entries.
func (r *Resolver) Entries(ctx context.Context, services string) ([]manifest.Entry, error) {
	return r.resolveEntries(ctx, []string{services})
}

// Files returns the manifest files Resolve would parse, in selection order.
func (r *Resolver) Files(ctx context.Context, services string) ([]string, error) {
	info, err := r.classifier.Info(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := PackageDir(info, r.filesDir)
	if err != nil {
		return nil, err
	}
	tokens, err := splitServices(services)
	if err != nil {
		return nil, err
	}
	return selectFiles(dir, tokens, nil), nil
}

func (r *Resolver) resolveEntries(ctx context.Context, args []string) ([]manifest.Entry, error) {
	if len(args) != 1 {
		return nil, serrors.InvalidArgument("resolver.Resolve", "expected exactly one comma-separated service list, got %d arguments", len(args))
	}
	tokens, err := splitServices(args[0])
	if err != nil {
		return nil, err
	}
	info, err := r.classifier.Info(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := PackageDir(info, r.filesDir)
	if err != nil {
		return nil, err
	}

	files := selectFiles(dir, tokens, nil)
	r.log.Debugf("parsing %d manifest files for tag %s: %s", len(files), info.DistroTag, strings.Join(files, " "))
	entries, err := manifest.ParseFiles(files, info.DistroTag)
	if err != nil {
		return nil, serrors.Wrap(serrors.KindUnknown, "resolver.Resolve", err, "failed to parse manifests")
	}
	return entries, nil
}

// ResolvePlugins resolves packages shipped by plugins. Each plugin directory
// contributes its own manifest, named after the plugin, plus the manifests
// the service list selects, all from <plugin>/devstack/files.
func (r *Resolver) ResolvePlugins(ctx context.Context, pluginDirs []string, services string) ([]string, error) {
	tokens, err := splitServices(services)
	if err != nil {
		return nil, err
	}
	info, err := r.classifier.Info(ctx)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, pluginDir := range pluginDirs {
		dir, err := PackageDir(info, filepath.Join(pluginDir, "devstack", "files"))
		if err != nil {
			return nil, err
		}
		own := []string{filepath.Join(dir, filepath.Base(filepath.Clean(pluginDir)))}
		files = append(files, selectFiles(dir, tokens, own)...)
	}

	entries, err := manifest.ParseFiles(files, info.DistroTag)
	if err != nil {
		return nil, serrors.Wrap(serrors.KindUnknown, "resolver.ResolvePlugins", err, "failed to parse plugin manifests")
	}
	return manifest.Names(entries), nil
}

// splitServices splits a comma-separated service list into trimmed, non-empty
// tokens. A token names a manifest file, so it may not leave the directory.
func splitServices(services string) ([]string, error) {
	var tokens []string
	for _, token := range strings.Split(services, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == "." || token == ".." || strings.ContainsAny(token, `/\`) {
			return nil, serrors.InvalidArgument("resolver.Resolve", "invalid service name %q", token)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// selectFiles applies the per-token rules under dir. seed files come first.
// Every file appears at most once.
func selectFiles(dir string, tokens, seed []string) []string {
	set := newOrderedSet()
	for _, f := range seed {
		set.add(f)
	}
	for _, token := range tokens {
		if own := filepath.Join(dir, token); fileExists(own) {
			set.add(own)
		}
		for _, g := range Groups(token) {
			set.add(filepath.Join(dir, g))
		}
	}
	return set.items
}
