package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the findex tool.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndexConfig holds build-time settings.
type IndexConfig struct {
	MemMB    uint64 `yaml:"mem_mb"`
	ReportMB uint64 `yaml:"report_mb"`
}

// SearchConfig holds query-time settings.
type SearchConfig struct {
	Limit  uint32      `yaml:"limit"`
	Offset uint32      `yaml:"offset"`
	Cache  CacheConfig `yaml:"cache"`
}

// CacheConfig controls the persistent query cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: <index>/cache.db
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MemMB:    512,
			ReportMB: 200,
		},
		Search: SearchConfig{
			Limit:  50,
			Offset: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for findex.yaml in dir and loads it, else defaults.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "findex.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// CachePath resolves the query-cache location for an index directory.
func (c *Config) CachePath(indexDir string) string {
	if c.Search.Cache.Path != "" {
		return c.Search.Cache.Path
	}
	return filepath.Join(indexDir, "cache.db")
}
