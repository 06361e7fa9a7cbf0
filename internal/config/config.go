// Package config loads .mancheck.yml configuration files, or the
// [tool.mancheck] table of pyproject.toml, for rule overrides, severity
// thresholds and scan settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const maxConfigSize = 1 << 20

// RuleOverride allows per-rule severity or disable.
type RuleOverride struct {
	Severity string `yaml:"severity,omitempty" toml:"severity"`
	Disabled bool   `yaml:"disabled,omitempty" toml:"disabled"`
}

// Config represents a .mancheck.yml file or [tool.mancheck] table.
type Config struct {
	Paths         []string                `yaml:"paths,omitempty" toml:"paths"`
	Ignore        []string                `yaml:"ignore,omitempty" toml:"ignore"`
	Severity      string                  `yaml:"severity,omitempty" toml:"severity"`
	FailOn        string                  `yaml:"fail_on,omitempty" toml:"fail_on"`
	Format        string                  `yaml:"format,omitempty" toml:"format"`
	Workers       int                     `yaml:"workers,omitempty" toml:"workers"`
	Cache         *bool                   `yaml:"cache,omitempty" toml:"cache"`
	CachePath     string                  `yaml:"cache_path,omitempty" toml:"cache_path"`
	RuleOverrides map[string]RuleOverride `yaml:"rule_overrides,omitempty" toml:"rule_overrides"`

	// Source is the file the configuration was read from, empty when no
	// file was found.
	Source string `yaml:"-" toml:"-"`
}

// CacheEnabled reports whether the findings cache should be used. It
// defaults to true.
func (c Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// Load reads configuration from dir. If dir is a file, its parent
// directory is used. .mancheck.yml and .mancheck.yaml take precedence over
// pyproject.toml. If no config is found, it returns a zero Config (not an
// error).
func Load(dir string) (Config, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for _, name := range []string{".mancheck.yml", ".mancheck.yaml"} {
		path := filepath.Join(dir, name)
		data, ok, err := readLimited(path)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			continue
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.Source = path
		return cfg, nil
	}
	return loadPyproject(filepath.Join(dir, "pyproject.toml"))
}

type pyproject struct {
	Tool struct {
		Mancheck *Config `toml:"mancheck"`
	} `toml:"tool"`
}

func loadPyproject(path string) (Config, error) {
	data, ok, err := readLimited(path)
	if err != nil || !ok {
		return Config{}, err
	}
	var doc pyproject
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Tool.Mancheck == nil {
		return Config{}, nil
	}
	cfg := *doc.Tool.Mancheck
	cfg.Source = path
	return cfg, nil
}

// readLimited returns ok=false when path does not exist.
func readLimited(path string) ([]byte, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.Size() > maxConfigSize {
		return nil, false, fmt.Errorf("config file too large: %s (%d bytes, max 1 MB)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, true, nil
}
