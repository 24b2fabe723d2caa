package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the instruction counter.
type Config struct {
	Count   CountConfig   `yaml:"count"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// CountConfig holds the line markers used by the classifier.
type CountConfig struct {
	CommentPrefix    string   `yaml:"comment_prefix"`
	DefinePrefix     string   `yaml:"define_prefix"`
	CloseBrace       string   `yaml:"close_brace"`
	LabelSuffix      string   `yaml:"label_suffix"`
	MetadataPrefix   string   `yaml:"metadata_prefix"`
	AttributePrefix  string   `yaml:"attribute_prefix"`
	DeclarePrefix    string   `yaml:"declare_prefix"`
	ExcludeFunctions []string `yaml:"exclude_functions"` // doublestar patterns on function names
}

// CacheConfig holds result cache configuration.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // empty means the working directory
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Count: CountConfig{
			CommentPrefix:   ";",
			DefinePrefix:    "define ",
			CloseBrace:      "}",
			LabelSuffix:     ":",
			MetadataPrefix:  "!",
			AttributePrefix: "attributes",
			DeclarePrefix:   "declare",
		},
		Cache: CacheConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ircount.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ircount.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ircount", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the path to the result cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".ircount", "cache.db")
}

// EnsureDir ensures the .ircount directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".ircount"), 0755)
}
