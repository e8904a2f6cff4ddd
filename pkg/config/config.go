// Package config holds the settings that steer stackpkg: offline and repo
// refresh switches, proxies, binary overrides and file locations.
//
// Precedence, lowest to highest: built-in defaults, the optional config file
// (YAML or TOML), environment variables, then explicit CLI flags.
package config

import (
	"fmt"
	"time"
)

const (
	DefaultYumBinary         = "yum"
	DefaultFilesDir          = "files"
	DefaultRepoUpdateTimeout = 300 * time.Second
	DefaultRepoUpdateBackoff = 30 * time.Second
	DefaultLogLevel          = "info"
	ErrorLogFileName         = "error.log"
)

// Config is the fully resolved configuration of one stackpkg invocation.
type Config struct {
	Offline       bool `json:"offline" yaml:"offline" toml:"offline"`
	NoUpdateRepos bool `json:"noUpdateRepos" yaml:"noUpdateRepos" toml:"noUpdateRepos"`
	RetryUpdate   bool `json:"retryUpdate" yaml:"retryUpdate" toml:"retryUpdate"`
	// ReposUpdated seeds the session flag, mirroring a caller that already refreshed.
	ReposUpdated bool `json:"reposUpdated" yaml:"reposUpdated" toml:"reposUpdated"`

	Proxy ProxyConfig `json:"proxy" yaml:"proxy" toml:"proxy"`

	YumBinary  string   `json:"yumBinary" yaml:"yumBinary" toml:"yumBinary"`
	FilesDir   string   `json:"filesDir" yaml:"filesDir" toml:"filesDir"`
	PluginDirs []string `json:"pluginDirs,omitempty" yaml:"pluginDirs,omitempty" toml:"pluginDirs,omitempty"`
	LogDir     string   `json:"logDir,omitempty" yaml:"logDir,omitempty" toml:"logDir,omitempty"`
	LogLevel   string   `json:"logLevel" yaml:"logLevel" toml:"logLevel"`
	StateFile  string   `json:"stateFile,omitempty" yaml:"stateFile,omitempty" toml:"stateFile,omitempty"`

	// StrictFamily rejects vendors that are neither known deb nor known rpm
	// distributions instead of assuming rpm.
	StrictFamily bool `json:"strictFamily" yaml:"strictFamily" toml:"strictFamily"`

	RepoUpdateTimeout Duration `json:"repoUpdateTimeout" yaml:"repoUpdateTimeout" toml:"repoUpdateTimeout"`
	RepoUpdateBackoff Duration `json:"repoUpdateBackoff" yaml:"repoUpdateBackoff" toml:"repoUpdateBackoff"`
}

// ProxyConfig values are forwarded verbatim to package manager invocations.
type ProxyConfig struct {
	HTTP    string `json:"http,omitempty" yaml:"http,omitempty" toml:"http,omitempty"`
	HTTPS   string `json:"https,omitempty" yaml:"https,omitempty" toml:"https,omitempty"`
	NoProxy string `json:"noProxy,omitempty" yaml:"noProxy,omitempty" toml:"noProxy,omitempty"`
}

// Env returns the proxy settings as environment assignments. All three are
// always present, possibly empty.
func (p ProxyConfig) Env() []string {
	return []string{
		"http_proxy=" + p.HTTP,
		"https_proxy=" + p.HTTPS,
		"no_proxy=" + p.NoProxy,
	}
}

// ErrorLogPath is the persistent error log under LogDir, or "" when no log
// directory is configured.
func (c *Config) ErrorLogPath() string {
	if c.LogDir == "" {
		return ""
	}
	return c.LogDir + "/" + ErrorLogFileName
}

// Duration is a time.Duration that reads and writes as a Go duration
// string such as "300s" in both YAML and TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}
