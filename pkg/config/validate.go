package config

import (
	"strings"

	"github.com/mensylisir/stackpkg/pkg/errors/validation"
	"github.com/mensylisir/stackpkg/pkg/logger"
)

// Validate checks a defaulted configuration and reports every problem at once.
func Validate(cfg *Config) error {
	v := &validation.ValidationErrors{}
	if cfg == nil {
		v.Add("configuration is nil")
		return v.Err()
	}

	v.RequireNonEmpty("yumBinary", cfg.YumBinary)
	if strings.ContainsAny(cfg.YumBinary, " \t;|&") {
		v.AddError("yumBinary", "must be a single executable name or path")
	}
	v.RequireNonEmpty("filesDir", cfg.FilesDir)

	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", err.Error())
	}

	if cfg.RepoUpdateTimeout.Duration <= 0 {
		v.AddError("repoUpdateTimeout", "must be positive")
	}
	if cfg.RepoUpdateBackoff.Duration <= 0 {
		v.AddError("repoUpdateBackoff", "must be positive")
	}
	if cfg.RepoUpdateBackoff.Duration > cfg.RepoUpdateTimeout.Duration {
		v.Add("repoUpdateBackoff %s exceeds repoUpdateTimeout %s", cfg.RepoUpdateBackoff, cfg.RepoUpdateTimeout)
	}

	for i, dir := range cfg.PluginDirs {
		if strings.TrimSpace(dir) == "" {
			v.Add("pluginDirs[%d]: must not be empty", i)
		}
	}
	return v.Err()
}
