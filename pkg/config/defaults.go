package config

// SetDefaults fills fields the file, environment and flags left unset.
// It modifies cfg in place.
func SetDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.YumBinary == "" {
		cfg.YumBinary = DefaultYumBinary
	}
	if cfg.FilesDir == "" {
		cfg.FilesDir = DefaultFilesDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.RepoUpdateTimeout.Duration == 0 {
		cfg.RepoUpdateTimeout.Duration = DefaultRepoUpdateTimeout
	}
	if cfg.RepoUpdateBackoff.Duration == 0 {
		cfg.RepoUpdateBackoff.Duration = DefaultRepoUpdateBackoff
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}
