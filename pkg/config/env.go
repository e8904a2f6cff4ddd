package config

import "strings"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Environment variable names understood by ApplyEnv.
const (
	EnvOffline       = "OFFLINE"
	EnvNoUpdateRepos = "NO_UPDATE_REPOS"
	EnvRetryUpdate   = "RETRY_UPDATE"
	EnvReposUpdated  = "REPOS_UPDATED"
	EnvHTTPProxy     = "http_proxy"
	EnvHTTPSProxy    = "https_proxy"
	EnvNoProxy       = "no_proxy"
	EnvYum           = "YUM"
	EnvFiles         = "FILES"
	EnvLogDir        = "LOGDIR"
	EnvStateFile     = "STACKPKG_STATE_FILE"
)

// IsTrue reports whether a boolean environment value is set. Only the exact
// string "True" counts, matching the shell scripts that export these flags.
func IsTrue(v string) bool {
	return v == "True"
}

// ApplyEnv overlays environment variables onto cfg. Variables that are unset
// leave the corresponding field untouched. Empty string variables are ignored
// for path and binary settings.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	if cfg == nil || lookup == nil {
		return
	}

	boolVars := []struct {
		key string
		dst *bool
	}{
		{EnvOffline, &cfg.Offline},
		{EnvNoUpdateRepos, &cfg.NoUpdateRepos},
		{EnvRetryUpdate, &cfg.RetryUpdate},
		{EnvReposUpdated, &cfg.ReposUpdated},
	}
	for _, b := range boolVars {
		if v, ok := lookup(b.key); ok {
			*b.dst = IsTrue(v)
		}
	}

	// Proxies are forwarded verbatim, so an explicitly empty value wins.
	if v, ok := lookup(EnvHTTPProxy); ok {
		cfg.Proxy.HTTP = v
	}
	if v, ok := lookup(EnvHTTPSProxy); ok {
		cfg.Proxy.HTTPS = v
	}
	if v, ok := lookup(EnvNoProxy); ok {
		cfg.Proxy.NoProxy = v
	}

	stringVars := []struct {
		key string
		dst *string
	}{
		{EnvYum, &cfg.YumBinary},
		{EnvFiles, &cfg.FilesDir},
		{EnvLogDir, &cfg.LogDir},
		{EnvStateFile, &cfg.StateFile},
	}
	for _, s := range stringVars {
		if v, ok := lookup(s.key); ok && strings.TrimSpace(v) != "" {
			*s.dst = v
		}
	}
}
