package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	serrors "github.com/mensylisir/stackpkg/pkg/errors"
)

// Format selects the decoder used by LoadFromBytes.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks a Format from the file extension. Anything that is not
// .toml is treated as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads a configuration file, overlays the process environment, applies
// defaults and validates the result. An empty path yields a configuration
// built from the environment and defaults alone.
func Load(configPath string) (*Config, error) {
	return LoadWithEnv(configPath, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(configPath string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, serrors.Wrap(serrors.KindConfig, "config.Load", err, "failed to read config file '"+configPath+"'")
		}
		if err := decode(data, FormatForPath(configPath), cfg); err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg, lookup)
	return finish(cfg)
}

// LoadFromBytes decodes content in the given format, applies defaults and
// validates it. The environment is not consulted.
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	cfg := &Config{}
	if err := decode(data, format, cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func decode(data []byte, format Format, cfg *Config) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return serrors.Wrap(serrors.KindConfig, "config.Load", err, "failed to unmarshal "+string(format)+" config")
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	SetDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, serrors.Wrap(serrors.KindConfig, "config.Load", err, "configuration validation failed")
	}
	return cfg, nil
}
